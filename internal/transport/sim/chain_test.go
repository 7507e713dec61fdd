package sim

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/scenario-engine/internal/invoke"
)

const geoff = "0x1111111111111111111111111111111111111111"

func deploy(t *testing.T, c *Chain, kind string) string {
	t.Helper()
	out, err := c.Send(context.Background(), invoke.Call{Deploy: true, Contract: kind, Method: "Standard"}, geoff)
	require.NoError(t, err)
	require.True(t, out.Success)
	return out.Address
}

func TestDeployAddressesAreDeterministic(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)
	b, err := New(Config{})
	require.NoError(t, err)

	first := deploy(t, a, "VAIController")
	assert.Equal(t, first, deploy(t, b, "VAIController"))
	assert.Len(t, first, 42)
	assert.NotEqual(t, first, deploy(t, a, "VAIController"))

	kind, ok := a.ContractKind(first)
	require.True(t, ok)
	assert.Equal(t, "VAIController", kind)
}

func TestRulesReject(t *testing.T) {
	c, err := New(Config{Rules: []Rule{
		{Method: "_setPendingAdmin", Contract: "VAIController", Error: "UNAUTHORIZED", Info: "SET_PENDING_ADMIN_OWNER_CHECK", Times: 1},
		{Method: "mint", Contract: "VToken", Error: "9", Info: "12", Detail: 4},
	}})
	require.NoError(t, err)
	ctrl := deploy(t, c, "VAIController")
	vtok := deploy(t, c, "VToken")
	ctx := context.Background()

	out, err := c.Send(ctx, invoke.Call{Target: ctrl, Method: "_setPendingAdmin"}, geoff)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, uint64(1), out.Rejection.Error)
	assert.Equal(t, uint64(0), out.Rejection.Info)

	// Times: 1 only fires once.
	out, err = c.Send(ctx, invoke.Call{Target: ctrl, Method: "_setPendingAdmin"}, geoff)
	require.NoError(t, err)
	assert.True(t, out.Success)

	out, err = c.Send(ctx, invoke.Call{Target: vtok, Method: "mint"}, geoff)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, uint64(9), out.Rejection.Error)
	assert.Equal(t, uint64(4), out.Rejection.Detail)

	assert.Len(t, c.History(), 5)
}

func TestUnknownTargetIsTransportFailure(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	_, err = c.Send(context.Background(), invoke.Call{Target: geoff, Method: "mintVAI"}, geoff)
	assert.ErrorIs(t, err, ErrUnknownContract)
}

func TestFailRule(t *testing.T) {
	c, err := New(Config{Rules: []Rule{{Method: "repayVAI", Fail: "connection reset"}}})
	require.NoError(t, err)
	ctrl := deploy(t, c, "VAIController")

	_, err = c.Send(context.Background(), invoke.Call{Target: ctrl, Method: "repayVAI"}, geoff)
	require.Error(t, err)
	assert.Equal(t, "connection reset", err.Error())
}

func TestLatencyHonoursDeadline(t *testing.T) {
	c, err := New(Config{Latency: time.Second})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err = c.Send(ctx, invoke.Call{Deploy: true, Contract: "VToken"}, geoff)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnknownRuleNames(t *testing.T) {
	_, err := New(Config{Rules: []Rule{{Method: "x", Contract: "VToken", Error: "NOT_A_CODE"}}})
	assert.Error(t, err)

	_, err = New(Config{Rules: []Rule{{Method: "x", Error: "UNAUTHORIZED"}}})
	assert.Error(t, err)
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - method: mintVAI
    contract: VAIController
    error: REJECTION
    info: VAI_MINT_REJECTION
    times: 2
`), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "mintVAI", rules[0].Method)
	assert.Equal(t, 2, rules[0].Times)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
