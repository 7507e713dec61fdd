package value

import (
	"fmt"
	"regexp"
	"strings"
)

// DecodeError reports a token that cannot be coerced to the requested kind.
type DecodeError struct {
	Kind Kind
	Raw  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %q as %s", e.Raw, e.Kind)
}

func decodeErr(kind Kind, tok Token) *DecodeError {
	return &DecodeError{Kind: kind, Raw: tok.Text()}
}

var addressPattern = regexp.MustCompile(`^0[xX][0-9a-fA-F]{40}$`)

// DecodeNumber accepts integer, decimal and exponent notation ("1e18", "1.5e18").
func DecodeNumber(tok Token) (NumberV, error) {
	if tok.IsNested() {
		return NumberV{}, decodeErr(KindNumber, tok)
	}
	d, err := parseDecimal(tok.Text())
	if err != nil {
		return NumberV{}, decodeErr(KindNumber, tok)
	}
	return NumberV{d: d}, nil
}

// DecodeExpNumber reads a token as a number of whole units and scales it by 1e18.
func DecodeExpNumber(tok Token) (NumberV, error) {
	n, err := DecodeNumber(tok)
	if err != nil {
		return NumberV{}, err
	}
	d, err := scale(n.d, expScale)
	if err != nil {
		return NumberV{}, decodeErr(KindNumber, tok)
	}
	return NumberV{d: d}, nil
}

// DecodePercent reads "5%" (or "5") as a mantissa scaled to 1e18 = 100%.
func DecodePercent(tok Token) (NumberV, error) {
	if tok.IsNested() {
		return NumberV{}, decodeErr(KindNumber, tok)
	}
	raw := strings.TrimSuffix(tok.Text(), "%")
	d, err := parseDecimal(raw)
	if err != nil {
		return NumberV{}, decodeErr(KindNumber, tok)
	}
	out, err := scale(d, percentScale)
	if err != nil {
		return NumberV{}, decodeErr(KindNumber, tok)
	}
	return NumberV{d: out}, nil
}

// DecodeAddress accepts a 0x-prefixed 40 digit hex string.
func DecodeAddress(tok Token) (AddressV, error) {
	if tok.IsNested() || !addressPattern.MatchString(tok.Text()) {
		return AddressV{}, decodeErr(KindAddress, tok)
	}
	return AddressV{addr: "0x" + strings.ToLower(tok.Text()[2:])}, nil
}

// DecodeBool accepts True/False, true/false and Yes/No.
func DecodeBool(tok Token) (BoolV, error) {
	if tok.IsNested() {
		return BoolV{}, decodeErr(KindBool, tok)
	}
	switch tok.Text() {
	case "True", "true", "Yes", "yes":
		return BoolV{b: true}, nil
	case "False", "false", "No", "no":
		return BoolV{b: false}, nil
	}
	return BoolV{}, decodeErr(KindBool, tok)
}

// DecodeString accepts any leaf token.
func DecodeString(tok Token) (StringV, error) {
	if tok.IsNested() {
		return StringV{}, decodeErr(KindString, tok)
	}
	return StringV{s: tok.Text()}, nil
}

// DecodeEvent wraps a nested token's event, or a leaf as a one-token event.
// The contents are not interpreted.
func DecodeEvent(tok Token) (EventV, error) {
	if tok.IsNested() {
		return NewEvent(tok.Sub()), nil
	}
	return NewEvent(Event{tok}), nil
}

// ParseAddress is DecodeAddress for a plain string.
func ParseAddress(s string) (AddressV, error) { return DecodeAddress(Word(s)) }

// ParseNumber is DecodeNumber for a plain string.
func ParseNumber(s string) (NumberV, error) { return DecodeNumber(Word(s)) }
