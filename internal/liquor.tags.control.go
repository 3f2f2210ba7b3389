package internal

import (
	"io"

	"go.uber.org/zap"
)

// ifTag renders the first branch whose condition holds:
// {% if a %}...{% elsif b %}...{% else %}...{% endif %}
type ifTag struct{}

func (t *ifTag) Spec() TagSpec {
	return TagSpec{Name: TagNameIf, End: TagNameEndIf, Branches: []string{TagNameElsif, TagNameElse}}
}

func (t *ifTag) Parse(node *TagNode) error { return parseConditionalBranches(node) }

func (t *ifTag) Render(state *RenderState, node *TagNode, sink io.StringWriter) error {
	return renderConditional(state, node, sink, false)
}

// unlessTag is if with the first condition negated
type unlessTag struct{}

func (t *unlessTag) Spec() TagSpec {
	return TagSpec{Name: TagNameUnless, End: TagNameEndUnless, Branches: []string{TagNameElsif, TagNameElse}}
}

func (t *unlessTag) Parse(node *TagNode) error { return parseConditionalBranches(node) }

func (t *unlessTag) Render(state *RenderState, node *TagNode, sink io.StringWriter) error {
	return renderConditional(state, node, sink, true)
}

// parseConditionalBranches parses the condition of every branch except else
// into branch.Args
func parseConditionalBranches(node *TagNode) error {
	for i, branch := range node.Branches {
		if branch.Name == TagNameElse {
			if i != len(node.Branches)-1 {
				return branchError(i, branch, NewExprParseError(ErrMsgElseNotLast, 0, ""))
			}
			continue
		}
		if branch.Markup == "" {
			return branchError(i, branch, NewExprParseError(ErrMsgConditionEmpty, 0, ""))
		}
		cond, err := ParseCondition(branch.Markup)
		if err != nil {
			return branchError(i, branch, err)
		}
		branch.Args = cond
	}
	return nil
}

func renderConditional(state *RenderState, node *TagNode, sink io.StringWriter, negateFirst bool) error {
	for i, branch := range node.Branches {
		take := true
		if branch.Name != TagNameElse {
			ok, err := state.EvaluateTruthy(branch.Args.(ExprNode))
			if err != nil {
				return err
			}
			take = ok != (i == 0 && negateFirst)
		}
		if take {
			state.Logger().Debug(LogMsgBranchSelected, zap.String(LogFieldTag, node.Name), zap.String(LogFieldBranch, branch.Name))
			return state.RenderBody(branch.Children, sink)
		}
	}
	return nil
}

// caseTag compares one value against when branches:
// {% case x %}{% when 1, 2 %}...{% when 3 or 4 %}...{% else %}...{% endcase %}
// Only the first matching when renders; else renders when none matched.
// Content between case and the first when is ignored.
type caseTag struct{}

func (t *caseTag) Spec() TagSpec {
	return TagSpec{Name: TagNameCase, End: TagNameEndCase, Branches: []string{TagNameWhen, TagNameElse}}
}

func (t *caseTag) Parse(node *TagNode) error {
	subject, err := ParseExpression(node.Markup)
	if err != nil {
		return err
	}
	node.Args = subject

	for i, branch := range node.Branches[1:] {
		i++
		if branch.Name == TagNameElse {
			if i != len(node.Branches)-1 {
				return branchError(i, branch, NewExprParseError(ErrMsgElseNotLast, 0, ""))
			}
			continue
		}
		values, err := parseWhenValues(branch.Markup)
		if err != nil {
			return branchError(i, branch, err)
		}
		branch.Args = values
	}
	return nil
}

// parseWhenValues parses values separated by commas or "or"
func parseWhenValues(markup string) ([]ExprNode, error) {
	p, err := NewExprParserFromString(markup)
	if err != nil {
		return nil, err
	}
	if p.AtEnd() {
		return nil, NewExprParseError(ErrMsgWhenValue, 0, "")
	}

	var values []ExprNode
	for {
		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if !p.Match(ExprTokenTypeComma) && !p.MatchWord(KeywordOr) {
			break
		}
	}
	if err := p.ExpectEnd(); err != nil {
		return nil, err
	}
	return values, nil
}

func (t *caseTag) Render(state *RenderState, node *TagNode, sink io.StringWriter) error {
	subject, err := state.Evaluate(node.Args.(ExprNode))
	if err != nil {
		return err
	}

	for _, branch := range node.Branches[1:] {
		if branch.Name == TagNameElse {
			return state.RenderBody(branch.Children, sink)
		}
		for _, expr := range branch.Args.([]ExprNode) {
			v, err := state.Evaluate(expr)
			if err != nil {
				return err
			}
			if Equal(subject, v) {
				state.Logger().Debug(LogMsgBranchSelected, zap.String(LogFieldTag, node.Name), zap.String(LogFieldBranch, branch.Name))
				return state.RenderBody(branch.Children, sink)
			}
		}
	}
	return nil
}

// branchError attaches the branch position to errors in intermediate tags
func branchError(index int, branch *Branch, err error) error {
	if index == 0 {
		return err
	}
	return &MarkupError{Pos: branch.Pos, Cause: err}
}
