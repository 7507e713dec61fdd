package reporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsDecodeVAIController(t *testing.T) {
	ts := Defaults()
	r, err := ts.Reporter("VAIController")
	require.NoError(t, err)
	assert.Equal(t, "VAIController", r.Subject())

	got := r.Decode(RejectionCode{Error: 1, Info: 0})
	assert.Equal(t, "UNAUTHORIZED", got.Error)
	assert.Equal(t, "SET_PENDING_ADMIN_OWNER_CHECK", got.Info)
	assert.Equal(t, "VAIController: UNAUTHORIZED SET_PENDING_ADMIN_OWNER_CHECK", got.String())
}

func TestDecodeUnknownCodes(t *testing.T) {
	tax := Defaults()["VToken"]
	require.NotNil(t, tax)

	got := tax.Decode(RejectionCode{Error: 999, Info: 1000, Detail: 7})
	assert.Equal(t, "UNKNOWN(999)", got.Error)
	assert.Equal(t, "UNKNOWN(1000)", got.Info)
	assert.Equal(t, uint64(7), got.Detail)
	assert.Contains(t, got.String(), "(detail 7)")
}

func TestDecodeRevertReason(t *testing.T) {
	tax := Defaults()["VAIController"]
	got := tax.Decode(RejectionCode{Reason: "only admin can"})
	assert.Equal(t, "REVERT", got.Error)
	assert.Empty(t, got.Info)
	assert.Equal(t, "only admin can", got.Reason)
}

func TestCodeLookup(t *testing.T) {
	tax := Defaults()["VAIController"]
	code, ok := tax.ErrorCode("MATH_ERROR")
	require.True(t, ok)
	assert.Equal(t, uint64(5), code)

	info, ok := tax.InfoCode("VAI_MINT_REJECTION")
	require.True(t, ok)
	assert.Equal(t, uint64(5), info)

	_, ok = tax.ErrorCode("NOPE")
	assert.False(t, ok)
}

func TestParseAndMergeTaxonomies(t *testing.T) {
	doc := `
Comptroller:
  errors: [NO_ERROR, UNAUTHORIZED]
  info: [SET_ORACLE_OWNER_CHECK]
`
	extra, err := ParseTaxonomies(strings.NewReader(doc))
	require.NoError(t, err)

	merged := Defaults().Merge(extra)
	assert.Equal(t, []string{"Comptroller", "VAIController", "VToken"}, merged.Subjects())
	assert.Equal(t, "Comptroller", merged["Comptroller"].Subject)

	_, err = merged.Reporter("Unitroller")
	assert.Error(t, err)
}

func TestParseTaxonomiesRejectsGarbage(t *testing.T) {
	_, err := ParseTaxonomies(strings.NewReader("- just\n- a list\n"))
	assert.Error(t, err)
}
