package naming

import "github.com/knotlang/knot/ast"

// Func computes the symbol-table name of a node. The boolean reports whether
// the node has a name at all; nodes without one are simply not indexable.
type Func func(ast.Node) (string, bool)

// Name returns the name under which a node is indexed in symbol tables.
// Elements and styles are named by their ID when they have a non-empty one;
// every other node kind, and any element or style without an ID, has no name.
// Anonymous elements are a normal state of the tree, so an absent name is an
// answer, not an error. The function reads nothing but the node itself.
func Name(n ast.Node) (string, bool) {
	switch n := n.(type) {
	case *ast.Element:
		if n.ID != "" {
			return n.ID, true
		}
	case *ast.Style:
		if n.ID != "" {
			return n.ID, true
		}
	default:
	}
	return "", false
}
