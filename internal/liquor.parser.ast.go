package internal

import (
	"fmt"
	"strings"
)

// Display limits for node String output
const (
	MaxStringDisplayLength = 50
	TruncatedStringLength  = 47
	TruncationSuffix       = "..."
)

// Node is the interface all AST nodes implement. A compiled tree is never
// mutated after parsing, so it can be rendered concurrently.
type Node interface {
	// Type returns the node type identifier
	Type() NodeType
	// Pos returns the source position of this node
	Pos() Position
	// String returns a human-readable representation
	String() string
}

// RootNode is the top-level container for an AST
type RootNode struct {
	Children []Node
}

// Type returns NodeTypeRoot
func (n *RootNode) Type() NodeType {
	return NodeTypeRoot
}

// Pos returns the start of the template
func (n *RootNode) Pos() Position {
	return Position{Offset: 0, Line: 1, Column: 1}
}

// String returns a string representation of the root node
func (n *RootNode) String() string {
	var sb strings.Builder
	sb.WriteString("RootNode{\n")
	for i, child := range n.Children {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i, child.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

// TextNode represents literal text content
type TextNode struct {
	pos     Position
	Content string
}

// NewTextNode creates a new text node
func NewTextNode(content string, pos Position) *TextNode {
	return &TextNode{pos: pos, Content: content}
}

// Type returns NodeTypeText
func (n *TextNode) Type() NodeType { return NodeTypeText }

// Pos returns the source position
func (n *TextNode) Pos() Position { return n.pos }

// String returns a string representation
func (n *TextNode) String() string {
	content := n.Content
	if len(content) > MaxStringDisplayLength {
		content = content[:TruncatedStringLength] + TruncationSuffix
	}
	return fmt.Sprintf("TextNode{%q @ %s}", content, n.pos)
}

// OutputNode represents a {{ expression }}
type OutputNode struct {
	pos  Position
	Expr ExprNode
}

// NewOutputNode creates a new output node
func NewOutputNode(expr ExprNode, pos Position) *OutputNode {
	return &OutputNode{pos: pos, Expr: expr}
}

// Type returns NodeTypeOutput
func (n *OutputNode) Type() NodeType { return NodeTypeOutput }

// Pos returns the source position
func (n *OutputNode) Pos() Position { return n.pos }

// String returns a string representation
func (n *OutputNode) String() string {
	return fmt.Sprintf("OutputNode{%s @ %s}", n.Expr, n.pos)
}

// Branch is one section of a block tag body. The first branch belongs to
// the opening tag; later ones start at intermediate tags such as elsif,
// else or when.
type Branch struct {
	Name     string   // Tag that opened the branch
	Markup   string   // Its arguments as written
	Args     any      // Its arguments as parsed by the tag handler
	Children []Node   // Nodes of the branch in source order
	Pos      Position // Position of the tag that opened the branch
}

// TagNode represents a leaf tag or a block tag with its body
type TagNode struct {
	pos      Position
	Name     string    // Tag name, e.g. "for"
	Markup   string    // Arguments as written after the name
	Args     any       // Arguments as parsed by the tag handler
	Branches []*Branch // Body sections; empty for leaf tags
	RawBody  string    // Unparsed body of raw-mode tags
}

// NewTagNode creates a new tag node
func NewTagNode(name, markup string, pos Position) *TagNode {
	return &TagNode{pos: pos, Name: name, Markup: markup}
}

// Type returns NodeTypeTag
func (n *TagNode) Type() NodeType { return NodeTypeTag }

// Pos returns the source position
func (n *TagNode) Pos() Position { return n.pos }

// Body returns the children of the first branch
func (n *TagNode) Body() []Node {
	if len(n.Branches) == 0 {
		return nil
	}
	return n.Branches[0].Children
}

// String returns a string representation
func (n *TagNode) String() string {
	if len(n.Branches) == 0 {
		return fmt.Sprintf("TagNode{%s %q @ %s}", n.Name, n.Markup, n.pos)
	}
	return fmt.Sprintf("TagNode{%s %q, branches=%d @ %s}", n.Name, n.Markup, len(n.Branches), n.pos)
}

// CountNodes returns the number of nodes in the subtree, root excluded
func CountNodes(nodes []Node) int {
	count := 0
	for _, node := range nodes {
		count++
		if tag, ok := node.(*TagNode); ok {
			for _, branch := range tag.Branches {
				count += CountNodes(branch.Children)
			}
		}
	}
	return count
}
