package parser

import "github.com/knotlang/knot/driver/lexer"

// SyntaxError describes one syntax error. The parser recovers at statement
// boundaries and keeps going, so a single parse can report several of
// these.
type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             *lexer.Token
	ExpectedTerminals []string
}
