package value

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// precision covers uint256 values with room for fractional scaling.
const precision = 100

var (
	exactCtx = apd.BaseContext.WithPrecision(precision)
	floorCtx = func() *apd.Context {
		c := apd.BaseContext.WithPrecision(precision)
		c.Rounding = apd.RoundDown
		return c
	}()

	expScale     = apd.New(1, 18)
	percentScale = apd.New(1, 16)
)

// MaxUint256 is the sentinel amount contracts read as "everything".
var MaxUint256 = mustNumber("115792089237316195423570985008687907853269984665640564039457584007913129639935")

// NumberV is an arbitrary precision decimal. It is never mutated after
// construction.
type NumberV struct {
	d *apd.Decimal
}

// NewNumber builds a NumberV from an int64.
func NewNumber(n int64) NumberV {
	return NumberV{d: apd.New(n, 0)}
}

func mustNumber(s string) NumberV {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return NumberV{d: d}
}

func (NumberV) Kind() Kind { return KindNumber }
func (NumberV) isValue()   {}

func (n NumberV) decimal() *apd.Decimal {
	if n.d == nil {
		return apd.New(0, 0)
	}
	return n.d
}

// Show renders the number in plain decimal notation.
func (n NumberV) Show() string {
	var r apd.Decimal
	r.Reduce(n.decimal())
	return r.Text('f')
}

func (n NumberV) String() string { return n.Show() }

// Encode returns the integer string sent over the wire. Fractions are
// truncated toward zero.
func (n NumberV) Encode() string {
	var out apd.Decimal
	if _, err := floorCtx.Quantize(&out, n.decimal(), 0); err != nil {
		return n.decimal().Text('f')
	}
	return out.Text('f')
}

// Cmp compares two numbers like apd.Decimal.Cmp.
func (n NumberV) Cmp(o NumberV) int {
	return n.decimal().Cmp(o.decimal())
}

// Equal reports numeric equality regardless of representation.
func (n NumberV) Equal(o NumberV) bool { return n.Cmp(o) == 0 }

// IsMax reports whether n is the MaxUint256 sentinel.
func (n NumberV) IsMax() bool { return n.Equal(MaxUint256) }

// Float64 converts to a float for expression evaluation; precision may be lost.
func (n NumberV) Float64() float64 {
	f, err := n.decimal().Float64()
	if err != nil {
		return 0
	}
	return f
}

func parseDecimal(raw string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("not a finite number")
	}
	return d, nil
}

func scale(d, by *apd.Decimal) (*apd.Decimal, error) {
	var out apd.Decimal
	if _, err := exactCtx.Mul(&out, d, by); err != nil {
		return nil, err
	}
	return &out, nil
}

// Add returns n+o.
func (n NumberV) Add(o NumberV) NumberV {
	var out apd.Decimal
	if _, err := exactCtx.Add(&out, n.decimal(), o.decimal()); err != nil {
		return n
	}
	return NumberV{d: &out}
}

// Sub returns n-o.
func (n NumberV) Sub(o NumberV) NumberV {
	var out apd.Decimal
	if _, err := exactCtx.Sub(&out, n.decimal(), o.decimal()); err != nil {
		return n
	}
	return NumberV{d: &out}
}

// Sign returns -1, 0 or +1.
func (n NumberV) Sign() int { return n.decimal().Sign() }
