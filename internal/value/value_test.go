package value

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNumberNotations(t *testing.T) {
	cases := map[string]string{
		"1000000000000000000": "1000000000000000000",
		"1e18":                "1000000000000000000",
		"1.0e18":              "1000000000000000000",
		"1.5e18":              "1500000000000000000",
		"0":                   "0",
		"-42":                 "-42",
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			n, err := DecodeNumber(Word(raw))
			require.NoError(t, err)
			assert.Equal(t, want, n.Encode())
			assert.Equal(t, KindNumber, n.Kind())
		})
	}
}

func TestDecodeNumberRejectsText(t *testing.T) {
	_, err := DecodeNumber(Word("abc"))
	require.Error(t, err)

	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, KindNumber, decErr.Kind)
	assert.Equal(t, "abc", decErr.Raw)

	_, err = DecodeNumber(Word("Infinity"))
	assert.Error(t, err)

	_, err = DecodeNumber(Group(Words("1")))
	assert.Error(t, err)
}

func TestNumberEncodeRoundTrip(t *testing.T) {
	for _, raw := range []string{"1", "1e18", "123456789012345678901234567890", "115792089237316195423570985008687907853269984665640564039457584007913129639935"} {
		n, err := DecodeNumber(Word(raw))
		require.NoError(t, err)

		back, err := DecodeNumber(Word(n.Encode()))
		require.NoError(t, err)
		assert.True(t, n.Equal(back), "round trip of %s gave %s", raw, back.Show())
	}
}

func TestNumberEncodeTruncatesFractions(t *testing.T) {
	n, err := DecodeNumber(Word("12.9"))
	require.NoError(t, err)
	assert.Equal(t, "12", n.Encode())
	assert.Equal(t, "12.9", n.Show())
}

func TestDecodeExpNumberAndPercent(t *testing.T) {
	n, err := DecodeExpNumber(Word("2.5"))
	require.NoError(t, err)
	assert.Equal(t, "2500000000000000000", n.Encode())

	p, err := DecodePercent(Word("5%"))
	require.NoError(t, err)
	assert.Equal(t, "50000000000000000", p.Encode())

	_, err = DecodePercent(Word("five%"))
	assert.Error(t, err)
}

func TestDecodeAddress(t *testing.T) {
	a, err := DecodeAddress(Word("0xABCDEF0123456789abcdef0123456789ABCDEF01"))
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", a.Show())

	_, err = DecodeAddress(Word("0x1234"))
	assert.Error(t, err)
	_, err = DecodeAddress(Word("Geoff"))
	assert.Error(t, err)
}

func TestDecodeBool(t *testing.T) {
	for raw, want := range map[string]bool{"True": true, "false": false, "Yes": true, "No": false} {
		b, err := DecodeBool(Word(raw))
		require.NoError(t, err)
		assert.Equal(t, want, b.Bool())
	}
	_, err := DecodeBool(Word("maybe"))
	assert.Error(t, err)
}

func TestDecodeEventKeepsTokensUninterpreted(t *testing.T) {
	nested := Event{Word("Standard"), Group(Words("Name", "VAI"))}
	ev, err := DecodeEvent(Group(nested))
	require.NoError(t, err)
	assert.Equal(t, 2, ev.Len())
	assert.Equal(t, `Standard (Name VAI)`, ev.Show())

	leaf, err := DecodeEvent(Word("YesNo"))
	require.NoError(t, err)
	assert.Equal(t, "YesNo", leaf.Show())
}

func TestEventStringQuotesWhenNeeded(t *testing.T) {
	ev := Event{Word("Assert"), Word("Expr"), Word("size(actions) == 1")}
	assert.Equal(t, `Assert Expr "size(actions) == 1"`, ev.String())
	assert.Equal(t, "Assert", ev.Head())
	assert.Equal(t, "", Event{}.Head())
}

func TestMarshalValueRoundTrip(t *testing.T) {
	n, _ := DecodeNumber(Word("1e18"))
	a, _ := DecodeAddress(Word("0x0000000000000000000000000000000000000001"))
	rec := NewRecord(map[string]Value{
		"amount": n,
		"to":     a,
		"memo":   NewString("hi"),
		"ok":     NewBool(true),
		"params": NewEvent(Event{Word("A"), Group(Words("B", "C"))}),
	})

	data, err := MarshalValue(rec)
	require.NoError(t, err)

	back, err := UnmarshalValue(data)
	require.NoError(t, err)
	assert.Equal(t, rec.Show(), back.Show())

	amount, ok := back.(RecordV).Field("amount")
	require.True(t, ok)
	assert.True(t, n.Equal(amount.(NumberV)))
}
