package parser

import "github.com/suderio/scenario-engine/internal/value"

// Line is one scenario line: a possibly empty sequence of terms.
type Line struct {
	Terms []*Term `parser:"@@*"`
}

// Term is a word, a quoted string or a parenthesised group.
type Term struct {
	Group  *Group  `parser:"  @@"`
	String *string `parser:"| @String"`
	Word   *string `parser:"| @Word"`
}

// Group is a nested event, e.g. "(VToken vZRX Mint 10)".
type Group struct {
	Open  string  `parser:"@\"(\""`
	Terms []*Term `parser:"@@* \")\""`
}

// Event converts the line into the token tree the engine consumes.
func (l *Line) Event() value.Event {
	return termsEvent(l.Terms)
}

func termsEvent(terms []*Term) value.Event {
	ev := make(value.Event, 0, len(terms))
	for _, t := range terms {
		switch {
		case t.Group != nil:
			ev = append(ev, value.Group(termsEvent(t.Group.Terms)))
		case t.String != nil:
			ev = append(ev, value.Word(*t.String))
		case t.Word != nil:
			ev = append(ev, value.Word(*t.Word))
		}
	}
	return ev
}
