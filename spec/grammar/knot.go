package grammar

// Terminal and keyword rule names of the knot grammar. The lexer and parser
// address token types by these names.
const (
	KindWS        = "ws"
	KindMLComment = "ml_comment"
	KindSLComment = "sl_comment"
	KindID        = "id"
	KindString    = "string"
	KindNumber    = "number"
	KindColor     = "color"
	KindKWGraph   = "kw_graph"
	KindKWNode    = "kw_node"
	KindKWStyle   = "kw_style"
	KindLBrace    = "l_brace"
	KindRBrace    = "r_brace"
	KindLBracket  = "l_bracket"
	KindRBracket  = "r_bracket"
	KindColon     = "colon"
	KindComma     = "comma"
	KindSemicolon = "semicolon"
	KindArrow     = "arrow"
)

var knotGrammar = &Grammar{
	Name: "knot",
	Terminals: []*TerminalRule{
		{Name: KindWS, Pattern: `[\t\r\n ]+`, Hidden: true},
		// The block comment pattern is written in the reference grammar's
		// dialect and uses a lookahead, so the token builder substitutes a
		// hand-written matcher for it.
		{Name: KindMLComment, Pattern: `/\*(?:(?!\*/)[\s\S])*\*/`, Hidden: true},
		{Name: KindSLComment, Pattern: `//[^\n\r]*`, Hidden: true},
		{Name: KindID, Pattern: `[A-Za-z_][0-9A-Za-z_]*`},
		{Name: KindString, Pattern: `"(?:[^"\\\n]|\\.)*"`},
		{Name: KindNumber, Pattern: `-?[0-9]+(?:\.[0-9]+)?`},
		{Name: KindColor, Pattern: `#[0-9A-Fa-f]{3,8}`},
	},
	Keywords: []*KeywordRule{
		{Name: KindKWGraph, Literal: "graph"},
		{Name: KindKWNode, Literal: "node"},
		{Name: KindKWStyle, Literal: "style"},
		{Name: KindLBrace, Literal: "{"},
		{Name: KindRBrace, Literal: "}"},
		{Name: KindLBracket, Literal: "["},
		{Name: KindRBracket, Literal: "]"},
		{Name: KindColon, Literal: ":"},
		{Name: KindComma, Literal: ","},
		{Name: KindSemicolon, Literal: ";"},
		{Name: KindArrow, Literal: "->"},
	},
	Productions: []*ProductionRule{
		{Name: "model", Form: "statement*"},
		{Name: "statement", Form: "element | link | style"},
		{Name: "element", Form: "('graph' | 'node') id? string? style_ref? attr_list? block?"},
		{Name: "block", Form: "'{' statement* '}'"},
		{Name: "link", Form: "endpoint ('->' endpoint)+ style_ref? attr_list?"},
		{Name: "endpoint", Form: "id | string"},
		{Name: "style_ref", Form: "':' id"},
		{Name: "attr_list", Form: "'[' attr (',' attr)* ']'"},
		{Name: "attr", Form: "id ':' value"},
		{Name: "style", Form: "'style' id '{' (property ';'?)* '}'"},
		{Name: "property", Form: "id ':' value"},
		{Name: "value", Form: "string | number | color | id"},
	},
}

// Knot returns the grammar of the knot language. All callers share the same
// instance and must not modify it.
func Knot() *Grammar {
	return knotGrammar
}
