package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type NodeType int

const (
	NodeTypeError       = 0
	NodeTypeTerminal    = 1
	NodeTypeNonTerminal = 2
)

// Node is a node of a concrete syntax tree. Terminal nodes carry every
// token of the source text, including hidden ones, so concatenating the
// leaves of a tree in order reproduces the source exactly. Error nodes hold
// the tokens consumed while the parser recovered from a syntax error, which
// keeps the reproduction exact even for broken input.
type Node struct {
	Type     NodeType
	KindName string
	Text     string
	Row      int
	Col      int
	Hidden   bool
	Children []*Node
}

func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeTypeError:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Children []*Node  `json:"children"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Children: n.Children,
		})
	case NodeTypeTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Text     string   `json:"text"`
			Row      int      `json:"row"`
			Col      int      `json:"col"`
			Hidden   bool     `json:"hidden,omitempty"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Text:     n.Text,
			Row:      n.Row,
			Col:      n.Col,
			Hidden:   n.Hidden,
		})
	case NodeTypeNonTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Children []*Node  `json:"children"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Children: n.Children,
		})
	default:
		return nil, fmt.Errorf("invalid node type: %v", n.Type)
	}
}

// treeBuilder builds a concrete syntax tree while the parser descends
// through productions. open pushes a non-terminal node, close pops it and
// attaches it to its parent.
type treeBuilder struct {
	stack []*Node
	root  *Node
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{}
}

func (b *treeBuilder) open(kindName string) {
	b.push(&Node{
		Type:     NodeTypeNonTerminal,
		KindName: kindName,
	})
}

func (b *treeBuilder) openError() {
	b.push(&Node{
		Type:     NodeTypeError,
		KindName: "error",
	})
}

func (b *treeBuilder) push(n *Node) {
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, n)
	}
	b.stack = append(b.stack, n)
}

func (b *treeBuilder) close() {
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if len(b.stack) == 0 {
		b.root = n
	}
}

func (b *treeBuilder) leaf(kindName string, text string, row, col int, hidden bool) {
	parent := b.stack[len(b.stack)-1]
	parent.Children = append(parent.Children, &Node{
		Type:     NodeTypeTerminal,
		KindName: kindName,
		Text:     text,
		Row:      row,
		Col:      col,
		Hidden:   hidden,
	})
}

// Tree returns the finished tree. It is nil until the root node is closed.
func (b *treeBuilder) Tree() *Node {
	return b.root
}

// PrintTree prints a syntax tree whose root is `node`.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	switch node.Type {
	case NodeTypeTerminal:
		fmt.Fprintf(w, "%v%v %v\n", ruledLine, node.KindName, strconv.Quote(node.Text))
	case NodeTypeError, NodeTypeNonTerminal:
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)

		num := len(node.Children)
		for i, child := range node.Children {
			var line string
			if num > 1 && i < num-1 {
				line = "├─ "
			} else {
				line = "└─ "
			}

			var prefix string
			if i >= num-1 {
				prefix = "   "
			} else {
				prefix = "│  "
			}

			printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
		}
	}
}
