package grammar

// Terminal is the describable view of a terminal rule.
type Terminal struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Hidden  bool   `json:"hidden"`
}

// Keyword is the describable view of a keyword rule.
type Keyword struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Literal string `json:"literal"`
}

// Production is the describable view of a production rule.
type Production struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Form   string `json:"form"`
}

// Description is a report of a grammar's rules for human inspection. The
// describe command prints it as a table or as JSON.
type Description struct {
	Name        string        `json:"name"`
	Terminals   []*Terminal   `json:"terminals"`
	Keywords    []*Keyword    `json:"keywords"`
	Productions []*Production `json:"productions"`
}

// Describe builds a description of g. Rules are numbered in definition
// order.
func Describe(g *Grammar) *Description {
	d := &Description{
		Name: g.Name,
	}
	for i, t := range g.Terminals {
		d.Terminals = append(d.Terminals, &Terminal{
			Number:  i,
			Name:    t.Name,
			Pattern: t.Pattern,
			Hidden:  t.Hidden,
		})
	}
	for i, k := range g.Keywords {
		d.Keywords = append(d.Keywords, &Keyword{
			Number:  i,
			Name:    k.Name,
			Literal: k.Literal,
		})
	}
	for i, p := range g.Productions {
		d.Productions = append(d.Productions, &Production{
			Number: i,
			Name:   p.Name,
			Form:   p.Form,
		})
	}

	return d
}
