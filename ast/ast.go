package ast

// Pos is a position in a source text. Row and Col are 0-based, and Col is
// counted in code points, not bytes.
type Pos struct {
	Row int
	Col int
}

// Kind discriminates the node variants of a model tree.
type Kind int

const (
	KindModel Kind = iota
	KindElement
	KindLink
	KindStyle
	KindAttribute
	KindProperty
)

var kindNames = map[Kind]string{
	KindModel:     "model",
	KindElement:   "element",
	KindLink:      "link",
	KindStyle:     "style",
	KindAttribute: "attribute",
	KindProperty:  "property",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Node is implemented by every variant of the model tree.
type Node interface {
	Kind() Kind
	Pos() Pos
}

// Model is the root of a parsed source text.
type Model struct {
	Statements []Node
	Start      Pos
}

func (n *Model) Kind() Kind { return KindModel }
func (n *Model) Pos() Pos   { return n.Start }

// ElementForm distinguishes plain nodes from graphs, which may contain
// child statements.
type ElementForm int

const (
	FormNode ElementForm = iota
	FormGraph
)

func (f ElementForm) String() string {
	if f == FormGraph {
		return "graph"
	}
	return "node"
}

// Element is a node or graph declaration. ID is empty for anonymous
// elements, which is a legitimate state, not an error.
type Element struct {
	Form     ElementForm
	ID       string
	Label    string // unquoted label text; empty when no label is given
	StyleRef *Reference
	Attrs    []*Attribute
	Children []Node // graph body statements; nil for the node form
	Start    Pos
}

func (n *Element) Kind() Kind { return KindElement }
func (n *Element) Pos() Pos   { return n.Start }

// Link is a single directed connection. Chained links in the source are
// expanded into one Link per arrow.
type Link struct {
	From     *Endpoint
	To       *Endpoint
	StyleRef *Reference
	Attrs    []*Attribute
	Start    Pos
}

func (n *Link) Kind() Kind { return KindLink }
func (n *Link) Pos() Pos   { return n.Start }

// Endpoint is one side of a link. Exactly one of Ref and Elem is set: Ref
// when the endpoint names an element by ID, Elem when the source declares an
// inline anonymous element.
type Endpoint struct {
	Ref  *Reference
	Elem *Element
}

// Pos returns the position of whichever variant is set.
func (e *Endpoint) Pos() Pos {
	if e.Ref != nil {
		return e.Ref.Start
	}
	return e.Elem.Start
}

// Reference is an occurrence of an element or style name to be resolved
// against a symbol table. The tree itself stays unresolved; bindings live
// outside it.
type Reference struct {
	Text  string
	Start Pos
}

// Style is a named style declaration.
type Style struct {
	ID         string
	Properties []*Property
	Start      Pos
}

func (n *Style) Kind() Kind { return KindStyle }
func (n *Style) Pos() Pos   { return n.Start }

// Attribute is a key: value entry from an attribute block on an element or
// link.
type Attribute struct {
	Key   string
	Value Value
	Start Pos
}

func (n *Attribute) Kind() Kind { return KindAttribute }
func (n *Attribute) Pos() Pos   { return n.Start }

// Property is a key: value entry in a style body.
type Property struct {
	Key   string
	Value Value
	Start Pos
}

func (n *Property) Kind() Kind { return KindProperty }
func (n *Property) Pos() Pos   { return n.Start }

// ValueKind discriminates the Value tagged union.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueColor
	ValueIdent
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueColor:
		return "color"
	case ValueIdent:
		return "ident"
	}
	return "unknown"
}

// Value is an attribute or property value. Kind determines which typed field
// is populated. Raw always holds the value as written, including quotes.
type Value struct {
	Kind  ValueKind
	Str   string  // populated when Kind == ValueString; escapes processed
	Num   float64 // populated when Kind == ValueNumber
	Color string  // populated when Kind == ValueColor; includes the '#'
	Ident string  // populated when Kind == ValueIdent
	Raw   string
}

func (v Value) String() string { return v.Raw }

// Walk traverses the tree rooted at n in source order, calling fn for each
// node. When fn returns false the node's children are skipped. Inline
// endpoint elements are visited as children of their link.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Model:
		for _, stmt := range n.Statements {
			Walk(stmt, fn)
		}
	case *Element:
		for _, a := range n.Attrs {
			Walk(a, fn)
		}
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *Link:
		if n.From.Elem != nil {
			Walk(n.From.Elem, fn)
		}
		if n.To.Elem != nil {
			Walk(n.To.Elem, fn)
		}
		for _, a := range n.Attrs {
			Walk(a, fn)
		}
	case *Style:
		for _, p := range n.Properties {
			Walk(p, fn)
		}
	}
}
