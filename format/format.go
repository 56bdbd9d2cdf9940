package format

import (
	"strings"

	"github.com/knotlang/knot/driver/parser"
)

// Source reconstructs the source text a concrete syntax tree was parsed
// from by concatenating its leaves in order. The reconstruction is exact
// only because hidden tokens are kept in the tree; a tree built from a
// skipping lexer would have lost every byte of layout and comment text.
func Source(root *parser.Node) string {
	var b strings.Builder
	writeLeaves(&b, root)
	return b.String()
}

func writeLeaves(b *strings.Builder, n *parser.Node) {
	if n == nil {
		return
	}
	if n.Type == parser.NodeTypeTerminal {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		writeLeaves(b, c)
	}
}

// Canonical renders a concrete syntax tree in the canonical layout: one
// statement and one style property per line, four-space indentation per
// block level, a single space between tokens, colons and separators glued
// to the left, and no semicolons. Comments survive formatting; layout
// tokens are replaced wholesale. Formatting a canonical text again
// reproduces it unchanged.
func Canonical(root *parser.Node) string {
	p := &printer{lastRow: -1}
	p.walk(root)
	p.newline()
	return p.b.String()
}

type printer struct {
	b       strings.Builder
	indent  int
	line    bool // a line is open and holds at least one token
	lastRow int  // source row of the last emitted token
}

func (p *printer) walk(n *parser.Node) {
	if n == nil {
		return
	}
	if n.Type == parser.NodeTypeTerminal {
		p.terminal(n)
		return
	}

	children := n.Children
	if startsLine(n.KindName) {
		// Emit the leading comments first: a comment written on the same
		// line as the previous statement must stay there, not follow the
		// line break this statement is about to force.
		i := 0
		for i < len(children) && children[i].Type == parser.NodeTypeTerminal && children[i].Hidden {
			p.terminal(children[i])
			i++
		}
		children = children[i:]
		p.newline()
	}
	for _, c := range children {
		p.walk(c)
	}
}

// startsLine reports whether a production begins on a fresh line in the
// canonical layout.
func startsLine(kindName string) bool {
	switch kindName {
	case "element", "link", "style", "property":
		return true
	}
	return false
}

func (p *printer) terminal(n *parser.Node) {
	if n.Hidden {
		if !isLayout(n.Text) {
			p.comment(n)
		}
		return
	}

	switch n.Text {
	case "{":
		p.token(n.Text)
		p.indent++
		p.newline()
	case "}":
		p.indent--
		p.newline()
		p.token(n.Text)
		p.newline()
	case ";":
		p.newline()
	case ",", "]", ":":
		p.join(n.Text)
	default:
		if p.afterOpeningBracket() {
			p.join(n.Text)
		} else {
			p.token(n.Text)
		}
	}
	p.lastRow = n.Row
}

// comment keeps a comment on the line of the token it followed in the
// source; any other comment gets a line of its own.
func (p *printer) comment(n *parser.Node) {
	if n.Row != p.lastRow {
		p.newline()
	}
	p.token(strings.TrimRight(n.Text, " \t"))
	p.newline()
	p.lastRow = n.Row
}

func (p *printer) token(text string) {
	if p.line {
		p.b.WriteByte(' ')
	} else {
		p.b.WriteString(strings.Repeat("    ", p.indent))
	}
	p.b.WriteString(text)
	p.line = true
}

// join writes text without a preceding space, gluing it to the previous
// token.
func (p *printer) join(text string) {
	if !p.line {
		p.b.WriteString(strings.Repeat("    ", p.indent))
	}
	p.b.WriteString(text)
	p.line = true
}

func (p *printer) afterOpeningBracket() bool {
	return p.line && strings.HasSuffix(p.b.String(), "[")
}

func (p *printer) newline() {
	if !p.line {
		return
	}
	p.b.WriteByte('\n')
	p.line = false
}

func isLayout(text string) bool {
	return strings.TrimLeft(text, " \t\r\n") == ""
}
