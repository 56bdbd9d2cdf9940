package test

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Children []*Tree
	Lexeme   string
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalNode(kind string, lexeme string) *Tree {
	return &Tree{
		Kind:   kind,
		Lexeme: lexeme,
	}
}

func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("    ")
	}
	buf.WriteString("(")
	if t.Kind == "" {
		buf.WriteString("<anonymous>")
	} else {
		buf.WriteString(t.Kind)
	}
	if t.Lexeme != "" {
		fmt.Fprintf(buf, " %q", t.Lexeme)
	}
	if len(t.Children) > 0 {
		buf.WriteString("\n")
		for i, c := range t.Children {
			c.format(buf, depth+1)
			if i < len(t.Children)-1 {
				buf.WriteString("\n")
			}
		}
	}
	buf.WriteString(")")
}

// DiffTree compares actual against expected. The kind `_` in an expected
// tree matches any kind; an expected terminal with an empty lexeme matches
// any lexeme of the same kind.
func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	// _ matches any kind.
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Lexeme != "" && expected.Lexeme != actual.Lexeme {
		msg := fmt.Sprintf("unexpected lexeme: expected '%v' but got '%v'", expected.Lexeme, actual.Lexeme)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

type TestCase struct {
	Description string
	Source      []byte
	Output      *Tree
}

// ParseTestCase reads a test case consisting of three parts separated by
// `---` lines: a description, a source text, and the expected tree in the
// tree notation.
func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just three parts: %v parts found", len(parts))
	}

	tp := &treeParser{
		src:        parts[2].buf,
		lineOffset: parts[0].lineCount + parts[1].lineCount + 2,
	}
	tree, err := tp.parse()
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
		Output:      tree,
	}, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	_, err := buf.Write(line)
	if err != nil {
		return nil, 0, err
	}
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		_, err := buf.Write([]byte("\n"))
		if err != nil {
			return nil, 0, err
		}
		_, err = buf.Write(line)
		if err != nil {
			return nil, 0, err
		}
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}

// treeParser parses the tree notation: `(kind child ...)` where a child is
// either a nested tree or a quoted lexeme, as in `(element (id "a"))`.
type treeParser struct {
	src        []byte
	pos        int
	row        int
	lineOffset int
}

func (tp *treeParser) parse() (*Tree, error) {
	tp.skipSpace()
	t, err := tp.parseTree()
	if err != nil {
		return nil, err
	}
	tp.skipSpace()
	if tp.pos < len(tp.src) {
		return nil, tp.errorf("only one tree is allowed per test case")
	}
	return t.Fill(), nil
}

func (tp *treeParser) parseTree() (*Tree, error) {
	if !tp.eat('(') {
		return nil, tp.errorf("expected '('")
	}
	tp.skipSpace()
	kind := tp.readSymbol()
	if kind == "" {
		return nil, tp.errorf("expected a kind name")
	}
	t := &Tree{
		Kind: kind,
	}
	for {
		tp.skipSpace()
		switch {
		case tp.eat(')'):
			return t, nil
		case tp.peekByte() == '(':
			c, err := tp.parseTree()
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, c)
		case tp.peekByte() == '"':
			lexeme, err := tp.readString()
			if err != nil {
				return nil, err
			}
			t.Lexeme = lexeme
		case tp.pos >= len(tp.src):
			return nil, tp.errorf("unexpected end of the tree notation")
		default:
			return nil, tp.errorf("unexpected character %q", tp.src[tp.pos])
		}
	}
}

func (tp *treeParser) skipSpace() {
	for tp.pos < len(tp.src) {
		b := tp.src[tp.pos]
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			return
		}
		if b == '\n' {
			tp.row++
		}
		tp.pos++
	}
}

func (tp *treeParser) peekByte() byte {
	if tp.pos >= len(tp.src) {
		return 0
	}
	return tp.src[tp.pos]
}

func (tp *treeParser) eat(b byte) bool {
	if tp.peekByte() != b {
		return false
	}
	tp.pos++
	return true
}

func (tp *treeParser) readSymbol() string {
	start := tp.pos
	for tp.pos < len(tp.src) {
		b := tp.src[tp.pos]
		if b == '(' || b == ')' || b == '"' || b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			break
		}
		tp.pos++
	}
	return string(tp.src[start:tp.pos])
}

func (tp *treeParser) readString() (string, error) {
	tp.pos++ // opening quote
	var b strings.Builder
	for tp.pos < len(tp.src) {
		c := tp.src[tp.pos]
		switch c {
		case '"':
			tp.pos++
			return b.String(), nil
		case '\\':
			tp.pos++
			if tp.pos >= len(tp.src) {
				return "", tp.errorf("incomplete escape sequence")
			}
			switch tp.src[tp.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(tp.src[tp.pos])
			}
		case '\n':
			return "", tp.errorf("a lexeme must not contain a line break; escape it as \\n")
		default:
			b.WriteByte(c)
		}
		tp.pos++
	}
	return "", tp.errorf("unclosed lexeme")
}

func (tp *treeParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%v: %v", tp.lineOffset+tp.row+1, fmt.Sprintf(format, args...))
}
