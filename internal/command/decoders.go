package command

import (
	"fmt"

	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

func lift[T value.Value](fn func(value.Token) (T, error)) Decoder {
	return func(_ world.World, tok value.Token) (any, error) {
		v, err := fn(tok)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var (
	// Number decodes a plain number.
	Number = lift(value.DecodeNumber)
	// ExpNumber decodes a number of whole units scaled by 1e18.
	ExpNumber = lift(value.DecodeExpNumber)
	// Percent decodes "5%" as 5e16.
	Percent = lift(value.DecodePercent)
	// String decodes any leaf token.
	String = lift(value.DecodeString)
	// Bool decodes True/False and Yes/No.
	Bool = lift(value.DecodeBool)
	// EventArg passes a token through as an uninterpreted event.
	EventArg = lift(value.DecodeEvent)
)

// Address decodes a hex address or a configured account alias.
func Address(w world.World, tok value.Token) (any, error) {
	if !tok.IsNested() {
		if addr, ok := w.ResolveUser(tok.Text()); ok {
			a, err := value.ParseAddress(addr)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", tok.Text(), err)
			}
			return a, nil
		}
	}
	a, err := value.DecodeAddress(tok)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// EntityArg resolves a token to a registered entity of kind. Given the zero
// token, as for implicit arguments, it looks up the entity registered under the
// kind's own name.
func EntityArg(kind string, lookup world.Lookup) Decoder {
	if lookup == nil {
		lookup = world.DefaultLookup
	}
	return func(w world.World, tok value.Token) (any, error) {
		if tok.IsNested() {
			return nil, &value.DecodeError{Kind: value.Kind(kind), Raw: tok.Text()}
		}
		id := tok.Text()
		if id == "" {
			id = kind
		}
		e, err := world.LookupKind(lookup, w, id, kind)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}
