package scope

import (
	"fmt"
	"sort"

	"github.com/knotlang/knot/ast"
	"github.com/knotlang/knot/naming"
)

// Severity grades a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one finding of symbol-table construction or reference
// resolution.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      ast.Pos
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%v:%v: %v: %v", d.Pos.Row+1, d.Pos.Col+1, d.Severity, d.Message)
}

// SymbolKind distinguishes what a symbol declares.
type SymbolKind int

const (
	SymbolElement SymbolKind = iota
	SymbolStyle
)

func (k SymbolKind) String() string {
	if k == SymbolStyle {
		return "style"
	}
	return "element"
}

// Symbol is one named declaration entered into a table.
type Symbol struct {
	Name string
	Kind SymbolKind
	Node ast.Node
	Pos  ast.Pos
}

// Table is one scope's symbol table. Each graph body opens a child table;
// the document scope is the root. Lookups walk from a scope outward, so the
// innermost declaration of a name wins.
type Table struct {
	parent   *Table
	symbols  map[string]*Symbol
	children []*Table
	owner    *ast.Element // nil for the document scope
}

func newTable(parent *Table, owner *ast.Element) *Table {
	t := &Table{
		parent:  parent,
		symbols: map[string]*Symbol{},
		owner:   owner,
	}
	if parent != nil {
		parent.children = append(parent.children, t)
	}
	return t
}

// Lookup resolves name from this scope outward. It returns nil when no
// enclosing scope declares the name.
func (t *Table) Lookup(name string) *Symbol {
	for s := t; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// Local returns the symbol declared in this scope itself, or nil.
func (t *Table) Local(name string) *Symbol {
	return t.symbols[name]
}

// Symbols returns this scope's own symbols sorted by name.
func (t *Table) Symbols() []*Symbol {
	syms := make([]*Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Name < syms[j].Name
	})
	return syms
}

// Children returns the child scopes in declaration order.
func (t *Table) Children() []*Table {
	return t.children
}

// Owner returns the graph element that opened this scope, or nil for the
// document scope.
func (t *Table) Owner() *ast.Element {
	return t.owner
}

// Resolution holds the outcome of building and resolving a model: the
// document-scope table, a binding from each reference to its symbol, and
// the diagnostics. The model tree itself is never modified.
type Resolution struct {
	Root        *Table
	Bindings    map[*ast.Reference]*Symbol
	Diagnostics []*Diagnostic
}

// Errs reports whether any diagnostic is an error.
func (r *Resolution) Errs() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// DefinitionOf returns the declaration site of ref, or nil when the
// reference did not resolve. This is the lookup editor tooling uses for
// go-to-definition.
func (r *Resolution) DefinitionOf(ref *ast.Reference) ast.Node {
	if sym := r.Bindings[ref]; sym != nil {
		return sym.Node
	}
	return nil
}

// Build indexes the model's declarations using name and resolves every
// reference against the resulting tables. The name function decides which
// nodes are indexable at all; passing nil uses naming.Name.
func Build(model *ast.Model, name naming.Func) *Resolution {
	if name == nil {
		name = naming.Name
	}
	b := &builder{
		name: name,
		res: &Resolution{
			Bindings: map[*ast.Reference]*Symbol{},
		},
	}
	root := newTable(nil, nil)
	b.res.Root = root
	b.declare(root, model.Statements)
	b.resolve(root, model.Statements)
	b.reportUnusedStyles(root)
	return b.res
}

type builder struct {
	name naming.Func
	res  *Resolution
}

// declare enters every named declaration of stmts into t, descending into
// graph bodies with fresh child scopes. Styles always land in the document
// scope regardless of nesting.
func (b *builder) declare(t *Table, stmts []ast.Node) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.Element:
			b.declareSymbol(t, n, SymbolElement)
			if n.Children != nil {
				b.declare(newTable(t, n), n.Children)
			}
		case *ast.Style:
			// Styles live in the document scope no matter where they are
			// written, so a style declared inside a graph is visible
			// everywhere.
			root := t
			for root.parent != nil {
				root = root.parent
			}
			b.declareSymbol(root, n, SymbolStyle)
		}
	}
}

func (b *builder) declareSymbol(t *Table, n ast.Node, kind SymbolKind) {
	name, ok := b.name(n)
	if !ok {
		// Anonymous declarations are legitimate; they are simply not
		// indexable.
		return
	}
	if prev := t.Local(name); prev != nil {
		b.res.Diagnostics = append(b.res.Diagnostics, &Diagnostic{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%v %v is already declared at %v:%v", kind, name, prev.Pos.Row+1, prev.Pos.Col+1),
			Pos:      n.Pos(),
		})
		return
	}
	t.symbols[name] = &Symbol{
		Name: name,
		Kind: kind,
		Node: n,
		Pos:  n.Pos(),
	}
}

// resolve walks stmts binding link endpoints to element symbols and style
// references to style symbols. Scopes are revisited in the same order
// declare created them.
func (b *builder) resolve(t *Table, stmts []ast.Node) {
	child := 0
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.Element:
			if n.StyleRef != nil {
				b.bindStyle(t, n.StyleRef)
			}
			if n.Children != nil {
				b.resolve(t.children[child], n.Children)
				child++
			}
		case *ast.Link:
			b.bindEndpoint(t, n.From)
			b.bindEndpoint(t, n.To)
			if n.StyleRef != nil {
				b.bindStyle(t, n.StyleRef)
			}
		case *ast.Style:
		}
	}
}

func (b *builder) bindEndpoint(t *Table, ep *ast.Endpoint) {
	if ep == nil || ep.Ref == nil {
		return
	}
	sym := t.Lookup(ep.Ref.Text)
	if sym == nil {
		b.res.Diagnostics = append(b.res.Diagnostics, &Diagnostic{
			Severity: SeverityError,
			Message:  fmt.Sprintf("undefined element %v", ep.Ref.Text),
			Pos:      ep.Ref.Start,
		})
		return
	}
	if sym.Kind != SymbolElement {
		b.res.Diagnostics = append(b.res.Diagnostics, &Diagnostic{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%v is a %v, not an element", ep.Ref.Text, sym.Kind),
			Pos:      ep.Ref.Start,
		})
		return
	}
	b.res.Bindings[ep.Ref] = sym
}

func (b *builder) bindStyle(t *Table, ref *ast.Reference) {
	sym := t.Lookup(ref.Text)
	if sym == nil {
		b.res.Diagnostics = append(b.res.Diagnostics, &Diagnostic{
			Severity: SeverityError,
			Message:  fmt.Sprintf("undefined style %v", ref.Text),
			Pos:      ref.Start,
		})
		return
	}
	if sym.Kind != SymbolStyle {
		b.res.Diagnostics = append(b.res.Diagnostics, &Diagnostic{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%v is an %v, not a style", ref.Text, sym.Kind),
			Pos:      ref.Start,
		})
		return
	}
	b.res.Bindings[ref] = sym
}

// reportUnusedStyles warns about document-level styles nothing refers to.
func (b *builder) reportUnusedStyles(root *Table) {
	used := map[*Symbol]bool{}
	for _, sym := range b.res.Bindings {
		used[sym] = true
	}
	for _, sym := range root.Symbols() {
		if sym.Kind == SymbolStyle && !used[sym] {
			b.res.Diagnostics = append(b.res.Diagnostics, &Diagnostic{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("style %v is declared but never used", sym.Name),
				Pos:      sym.Pos,
			})
		}
	}
}
