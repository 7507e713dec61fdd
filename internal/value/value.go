// Package value implements the closed set of argument values produced when
// decoding scenario tokens, along with the token tree those values come from.
package value

import (
	"sort"
	"strconv"
	"strings"
)

// Kind tags a Value. It is fixed when the Value is constructed.
type Kind string

const (
	KindNumber  Kind = "number"
	KindAddress Kind = "address"
	KindString  Kind = "string"
	KindBool    Kind = "bool"
	KindEvent   Kind = "event"
	KindRecord  Kind = "record"
)

// Token is one element of an Event: either a leaf word or a nested Event.
type Token struct {
	text   string
	sub    Event
	nested bool
}

// Word builds a leaf token.
func Word(text string) Token {
	return Token{text: text}
}

// Group builds a token wrapping a nested event.
func Group(ev Event) Token {
	return Token{sub: ev, nested: true}
}

// IsNested reports whether the token wraps a nested Event.
func (t Token) IsNested() bool { return t.nested }

// Text returns the leaf text. Nested tokens return their rendered form.
func (t Token) Text() string {
	if t.nested {
		return "(" + t.sub.String() + ")"
	}
	return t.text
}

// Sub returns the nested event, or nil for a leaf.
func (t Token) Sub() Event {
	if !t.nested {
		return nil
	}
	return t.sub
}

// Event is an ordered sequence of raw tokens as written by the script author.
type Event []Token

// Words builds an Event made only of leaf tokens.
func Words(words ...string) Event {
	ev := make(Event, len(words))
	for i, w := range words {
		ev[i] = Word(w)
	}
	return ev
}

// String renders the event in script syntax.
func (e Event) String() string {
	parts := make([]string, len(e))
	for i, t := range e {
		if t.nested {
			parts[i] = t.Text()
			continue
		}
		parts[i] = quoteWord(t.text)
	}
	return strings.Join(parts, " ")
}

// Head returns the text of the first token, or "" for an empty event.
func (e Event) Head() string {
	if len(e) == 0 || e[0].nested {
		return ""
	}
	return e[0].text
}

func quoteWord(s string) string {
	if s == "" || strings.ContainsAny(s, " \t()\"") {
		return strconv.Quote(s)
	}
	return s
}

// Value is a decoded argument. The set of implementations is closed.
type Value interface {
	Kind() Kind
	Show() string
	isValue()
}

// AddressV is a normalised 20-byte hex address.
type AddressV struct {
	addr string
}

func (AddressV) Kind() Kind       { return KindAddress }
func (a AddressV) Show() string   { return a.addr }
func (a AddressV) String() string { return a.addr }
func (AddressV) isValue()         {}

// StringV is free text.
type StringV struct {
	s string
}

// NewString wraps s as a StringV.
func NewString(s string) StringV { return StringV{s: s} }

func (StringV) Kind() Kind       { return KindString }
func (s StringV) Show() string   { return s.s }
func (s StringV) String() string { return s.s }
func (StringV) isValue()         {}

// BoolV is a boolean.
type BoolV struct {
	b bool
}

// NewBool wraps b as a BoolV.
func NewBool(b bool) BoolV { return BoolV{b: b} }

func (BoolV) Kind() Kind { return KindBool }
func (b BoolV) Show() string {
	if b.b {
		return "True"
	}
	return "False"
}
func (b BoolV) Bool() bool { return b.b }
func (BoolV) isValue()     {}

// EventV carries a token list that has not been interpreted yet, e.g.
// deployment parameters handed through to a builder.
type EventV struct {
	ev Event
}

// NewEvent wraps ev as an EventV. The slice is copied.
func NewEvent(ev Event) EventV {
	return EventV{ev: append(Event(nil), ev...)}
}

func (EventV) Kind() Kind       { return KindEvent }
func (e EventV) Show() string   { return e.ev.String() }
func (e EventV) Event() Event   { return append(Event(nil), e.ev...) }
func (e EventV) Len() int       { return len(e.ev) }
func (EventV) isValue()         {}

// RecordV is a composite value with named fields.
type RecordV struct {
	fields map[string]Value
}

// NewRecord copies fields into a RecordV.
func NewRecord(fields map[string]Value) RecordV {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return RecordV{fields: cp}
}

func (RecordV) Kind() Kind { return KindRecord }

func (r RecordV) Show() string {
	keys := r.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + r.fields[k].Show()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Field returns the named field.
func (r RecordV) Field(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Keys returns the field names in sorted order.
func (r RecordV) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (RecordV) isValue() {}
