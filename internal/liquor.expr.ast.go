package internal

import (
	"fmt"
	"strings"
)

// ExprNodeType identifies the type of expression AST node
type ExprNodeType int

// Expression node type constants
const (
	ExprNodeTypeLiteral ExprNodeType = iota
	ExprNodeTypeVariable
	ExprNodeTypeRange
	ExprNodeTypeFilter
	ExprNodeTypeCondition
)

// Expression node type names for debugging
const (
	ExprNodeTypeNameLiteral   = "LITERAL"
	ExprNodeTypeNameVariable  = "VARIABLE"
	ExprNodeTypeNameRange     = "RANGE"
	ExprNodeTypeNameFilter    = "FILTER"
	ExprNodeTypeNameCondition = "CONDITION"
)

// String returns the string representation of the node type
func (t ExprNodeType) String() string {
	switch t {
	case ExprNodeTypeVariable:
		return ExprNodeTypeNameVariable
	case ExprNodeTypeRange:
		return ExprNodeTypeNameRange
	case ExprNodeTypeFilter:
		return ExprNodeTypeNameFilter
	case ExprNodeTypeCondition:
		return ExprNodeTypeNameCondition
	default:
		return ExprNodeTypeNameLiteral
	}
}

// ExprNode is the interface for all expression AST nodes.
// Expression trees are immutable once parsed.
type ExprNode interface {
	// Type returns the node type
	Type() ExprNodeType
	// String returns a string representation for debugging
	String() string
	// exprNode is a marker method to ensure type safety
	exprNode()
}

// LiteralNode represents a literal value: string, int, float64, bool, nil,
// or one of the empty/blank sentinels.
type LiteralNode struct {
	Value any
}

func (n *LiteralNode) Type() ExprNodeType { return ExprNodeTypeLiteral }
func (n *LiteralNode) exprNode()          {}

func (n *LiteralNode) String() string {
	switch v := n.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return KeywordNil
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PathSegment is one accessor of a variable path. Either Name is set
// (".name" or a quoted ["name"]) or Index holds a dynamic accessor expression.
type PathSegment struct {
	Name  string
	Index ExprNode
}

// String returns the segment in source-like form
func (s PathSegment) String() string {
	if s.Index != nil {
		return "[" + s.Index.String() + "]"
	}
	return "." + s.Name
}

// VariableNode represents a variable path such as user.tags[0].name.
// Segments[0] is the root lookup.
type VariableNode struct {
	Segments []PathSegment
}

func (n *VariableNode) Type() ExprNodeType { return ExprNodeTypeVariable }
func (n *VariableNode) exprNode()          {}

func (n *VariableNode) String() string {
	var sb strings.Builder
	for i, seg := range n.Segments {
		if i == 0 && seg.Index == nil {
			sb.WriteString(seg.Name)
			continue
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// RangeNode represents an inclusive integer range (start..end)
type RangeNode struct {
	Start ExprNode
	End   ExprNode
}

func (n *RangeNode) Type() ExprNodeType { return ExprNodeTypeRange }
func (n *RangeNode) exprNode()          {}

func (n *RangeNode) String() string {
	return fmt.Sprintf("(%s..%s)", n.Start, n.End)
}

// FilterArg is one filter argument. Name is empty for positional arguments.
type FilterArg struct {
	Name  string
	Value ExprNode
}

// FilterStage is one "| name: args" step of a pipeline
type FilterStage struct {
	Name string
	Args []FilterArg
	Pos  int
}

// FilterNode represents a filter pipeline. Stages apply left to right,
// each stage's output feeding the next.
type FilterNode struct {
	Base   ExprNode
	Stages []FilterStage
}

func (n *FilterNode) Type() ExprNodeType { return ExprNodeTypeFilter }
func (n *FilterNode) exprNode()          {}

func (n *FilterNode) String() string {
	var sb strings.Builder
	sb.WriteString(n.Base.String())
	for _, stage := range n.Stages {
		sb.WriteString(" | ")
		sb.WriteString(stage.Name)
		for i, arg := range stage.Args {
			if i == 0 {
				sb.WriteString(": ")
			} else {
				sb.WriteString(", ")
			}
			if arg.Name != "" {
				sb.WriteString(arg.Name)
				sb.WriteString(": ")
			}
			sb.WriteString(arg.Value.String())
		}
	}
	return sb.String()
}

// ConditionNode represents a comparison (==, <, contains, ...) or a logical
// combination (and, or) of two operands.
type ConditionNode struct {
	Op    string
	Left  ExprNode
	Right ExprNode
}

func (n *ConditionNode) Type() ExprNodeType { return ExprNodeTypeCondition }
func (n *ConditionNode) exprNode()          {}

func (n *ConditionNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}
