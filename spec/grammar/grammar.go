package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// TerminalRule describes one terminal of the lexical syntax. Pattern is a
// pattern source matched at the current scan position; how it is turned into
// a runnable matcher is the token builder's concern. Hidden marks terminals
// that are insignificant to the phrase structure, like layout and comments.
type TerminalRule struct {
	Name    string
	Pattern string
	Hidden  bool
}

// KeywordRule reserves an exact spelling. This covers reserved words and
// punctuation; keywords win over terminals when both match a lexeme of the
// same length.
type KeywordRule struct {
	Name    string
	Literal string
}

// ProductionRule documents one phrase-structure rule. Form is the
// human-readable right-hand side used by the describe output. The parser is
// written by hand against these shapes, so productions carry no machinery.
type ProductionRule struct {
	Name string
	Form string
}

// Grammar is the complete definition of a language's syntax. A Grammar value
// is immutable after construction and safe to share.
type Grammar struct {
	Name        string
	Terminals   []*TerminalRule
	Keywords    []*KeywordRule
	Productions []*ProductionRule
}

// Validate checks the grammar for definition mistakes: missing rules, empty
// patterns or literals, duplicate names, duplicate keyword spellings, and
// name spellings that collide once normalized.
func (g *Grammar) Validate() error {
	if len(g.Terminals) == 0 {
		return fmt.Errorf("a grammar must have at least one terminal rule")
	}

	names := map[string]struct{}{}
	for _, t := range g.Terminals {
		if t.Name == "" {
			return fmt.Errorf("a terminal rule must have a name")
		}
		if t.Pattern == "" {
			return fmt.Errorf("terminal %v: a terminal rule must have a pattern", t.Name)
		}
		if _, exist := names[t.Name]; exist {
			return fmt.Errorf("rule names `%v` are duplicates", t.Name)
		}
		names[t.Name] = struct{}{}
	}
	lits := map[string]string{}
	for _, k := range g.Keywords {
		if k.Name == "" {
			return fmt.Errorf("a keyword rule must have a name")
		}
		if k.Literal == "" {
			return fmt.Errorf("keyword %v: a keyword rule must have a literal", k.Name)
		}
		if _, exist := names[k.Name]; exist {
			return fmt.Errorf("rule names `%v` are duplicates", k.Name)
		}
		names[k.Name] = struct{}{}
		if prev, exist := lits[k.Literal]; exist {
			return fmt.Errorf("keywords %v and %v reserve the same spelling `%v`", prev, k.Name, k.Literal)
		}
		lits[k.Literal] = k.Name
	}
	for _, p := range g.Productions {
		if p.Name == "" {
			return fmt.Errorf("a production rule must have a name")
		}
		if _, exist := names[p.Name]; exist {
			return fmt.Errorf("rule names `%v` are duplicates", p.Name)
		}
		names[p.Name] = struct{}{}
	}

	all := make([]string, 0, len(names))
	for name := range names {
		all = append(all, name)
	}
	if dups := FindSpellingInconsistencies(all); len(dups) > 0 {
		var b strings.Builder
		for i, dup := range dups {
			if i > 0 {
				fmt.Fprintf(&b, "\n")
			}
			fmt.Fprintf(&b, "these identifiers are treated as the same. please use the same spelling: %v", strings.Join(dup, ", "))
		}
		return fmt.Errorf("%v", b.String())
	}

	return nil
}

// FindSpellingInconsistencies finds spelling inconsistencies in identifiers.
// Identifiers are considered the same if they are spelled the same when
// expressed in UpperCamelCase. For example, `ml_comment` and `MlComment` are
// spelled the same in UpperCamelCase, so they are a spelling inconsistency.
func FindSpellingInconsistencies(ids []string) [][]string {
	m := map[string][]string{}
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, exist := seen[id]; exist {
			continue
		}
		seen[id] = struct{}{}
		c := SnakeCaseToUpperCamelCase(id)
		m[c] = append(m[c], id)
	}

	var duplicated [][]string
	for _, ids := range m {
		if len(ids) == 1 {
			continue
		}
		sort.Strings(ids)
		duplicated = append(duplicated, ids)
	}
	sort.Slice(duplicated, func(i, j int) bool {
		return duplicated[i][0] < duplicated[j][0]
	})

	return duplicated
}

// SnakeCaseToUpperCamelCase converts an identifier like `ml_comment` to
// `MlComment`.
func SnakeCaseToUpperCamelCase(snake string) string {
	elems := strings.Split(snake, "_")
	for i, e := range elems {
		if len(e) == 0 {
			continue
		}
		elems[i] = strings.ToUpper(string(e[0])) + e[1:]
	}

	return strings.Join(elems, "")
}
