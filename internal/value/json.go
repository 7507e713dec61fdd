package value

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a leaf as a JSON string and a nested event as an array.
func (t Token) MarshalJSON() ([]byte, error) {
	if t.nested {
		sub := t.sub
		if sub == nil {
			sub = Event{}
		}
		return json.Marshal([]Token(sub))
	}
	return json.Marshal(t.text)
}

// UnmarshalJSON reverses MarshalJSON.
func (t *Token) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Word(s)
		return nil
	}
	var sub []Token
	if err := json.Unmarshal(data, &sub); err != nil {
		return fmt.Errorf("token must be a string or an array: %w", err)
	}
	*t = Group(Event(sub))
	return nil
}

type wireValue struct {
	Kind   Kind                       `json:"kind"`
	Text   string                     `json:"text,omitempty"`
	Bool   bool                       `json:"bool,omitempty"`
	Event  Event                      `json:"event,omitempty"`
	Fields map[string]json.RawMessage `json:"fields,omitempty"`
}

// MarshalValue encodes any Value with its kind tag.
func MarshalValue(v Value) ([]byte, error) {
	w := wireValue{Kind: v.Kind()}
	switch x := v.(type) {
	case NumberV:
		w.Text = x.decimal().String()
	case AddressV:
		w.Text = x.addr
	case StringV:
		w.Text = x.s
	case BoolV:
		w.Bool = x.b
	case EventV:
		w.Event = x.ev
	case RecordV:
		w.Fields = make(map[string]json.RawMessage, len(x.fields))
		for k, f := range x.fields {
			raw, err := MarshalValue(f)
			if err != nil {
				return nil, err
			}
			w.Fields[k] = raw
		}
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
	return json.Marshal(w)
}

// UnmarshalValue decodes the output of MarshalValue.
func UnmarshalValue(data []byte) (Value, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	switch w.Kind {
	case KindNumber:
		return DecodeNumber(Word(w.Text))
	case KindAddress:
		return DecodeAddress(Word(w.Text))
	case KindString:
		return StringV{s: w.Text}, nil
	case KindBool:
		return BoolV{b: w.Bool}, nil
	case KindEvent:
		return NewEvent(w.Event), nil
	case KindRecord:
		fields := make(map[string]Value, len(w.Fields))
		for k, raw := range w.Fields {
			f, err := UnmarshalValue(raw)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			fields[k] = f
		}
		return RecordV{fields: fields}, nil
	}
	return nil, fmt.Errorf("unknown value kind %q", w.Kind)
}
