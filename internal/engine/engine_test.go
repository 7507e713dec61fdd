package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/scenario-engine/internal/assertion"
	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/config"
	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/world"
)

const (
	geoff  = "0x1111111111111111111111111111111111111111"
	torrey = "0x2222222222222222222222222222222222222222"
)

const mintScript = `-- minting VAI against a vZRX market
VAIController Deploy
VToken Deploy vZRX Standard ZRX
VAIController Mint 1e18
Assert Success
From Torrey (VAIController Mint 2e18)
Assert Failure REJECTION VAI_MINT_REJECTION
VToken vZRX Mint 5
Assert Expr "size(actions) == 5 && last.success"
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`
rules:
  - method: mintVAI
    contract: VAIController
    from: "`+torrey+`"
    error: REJECTION
    info: VAI_MINT_REJECTION
`), 0644))

	return config.Config{
		World: world.Config{
			Accounts:    map[string]string{"Geoff": geoff, "Torrey": torrey},
			DefaultFrom: "Geoff",
		},
		Transport:  config.TransportSim,
		Timeout:    time.Second,
		Assertions: string(assertion.ModeStrict),
		RulesFile:  rules,
		Audit:      config.AuditConfig{Kind: config.AuditJSONL, Dir: filepath.Join(dir, "runs")},
	}
}

func TestRunScriptAgainstSimChain(t *testing.T) {
	cfg := testConfig(t)
	e, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer e.Close()

	store, err := e.OpenStore("mint", "r1")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	s := e.NewSession(store, nil)
	n, err := s.RunScript(context.Background(), strings.NewReader(mintScript))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	w := s.World()
	require.Equal(t, 5, w.ActionCount())
	rejected := w.Actions()[3]
	assert.False(t, rejected.Invocation.Success)
	require.NotNil(t, rejected.Invocation.Error)
	assert.Equal(t, "REJECTION", rejected.Invocation.Error.Error)
	assert.Equal(t, "VAI_MINT_REJECTION", rejected.Invocation.Error.Info)

	vzrx, ok := w.Entity("vZRX")
	require.True(t, ok)
	assert.Equal(t, "VToken", vzrx.Kind)

	replayed, err := audit.Replay(store, cfg.World)
	require.NoError(t, err)
	assert.Equal(t, w.Entities(), replayed.Entities())
	assert.Equal(t, w.ActionCount(), replayed.ActionCount())
}

func TestStrictAssertionStopsScript(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit.Kind = config.AuditNone
	e, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	store, err := e.OpenStore("mint", "r1")
	require.NoError(t, err)
	assert.Nil(t, store)

	s := e.NewSession(nil, nil)
	n, err := s.RunScript(context.Background(), strings.NewReader("VAIController Deploy\nFrom Torrey (VAIController Mint 1)\nAssert Success\nVAIController Mint 1\n"))
	require.Error(t, err)
	assert.Equal(t, 2, n)
	var ae *assertion.Error
	assert.ErrorAs(t, err, &ae)
}

func TestLogOnlyAssertionContinues(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assertions = string(assertion.ModeLogOnly)
	e, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	s := e.NewSession(nil, nil)
	n, err := s.RunScript(context.Background(), strings.NewReader("VAIController Deploy\nFrom Torrey (VAIController Mint 1)\nAssert Success\nVAIController Mint 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 3, s.World().ActionCount())
}

func TestTransportFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	failing := invoke.TransportFunc(func(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
		return invoke.Outcome{}, assert.AnError
	})
	e, err := NewWithTransport(cfg, failing, nil)
	require.NoError(t, err)

	s := e.NewSession(nil, nil)
	_, err = s.RunScript(context.Background(), strings.NewReader("VAIController Deploy\n"))
	require.Error(t, err)
	assert.True(t, invoke.IsTransportError(err))
	assert.Equal(t, 0, s.World().ActionCount())
}

func TestSQLiteAudit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit = config.AuditConfig{Kind: config.AuditSQLite, Path: filepath.Join(t.TempDir(), "db", "audit.db")}
	e, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	store, err := e.OpenStore("mint", "r1")
	require.NoError(t, err)
	defer store.Close()

	s := e.NewSession(store, nil)
	_, err = s.RunScript(context.Background(), strings.NewReader(mintScript))
	require.NoError(t, err)

	deltas, err := store.Load()
	require.NoError(t, err)
	// two entities plus five actions
	assert.Len(t, deltas, 7)
}

func TestTaxonomyFileExtendsDefaults(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "tax.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Comptroller:\n  errors: [NO_ERROR, UNAUTHORIZED]\n"), 0644))
	cfg.TaxonomyFile = path

	ts, err := loadTaxonomies(cfg.TaxonomyFile)
	require.NoError(t, err)
	assert.Contains(t, ts.Subjects(), "Comptroller")
	assert.Contains(t, ts.Subjects(), "VAIController")

	cfg.TaxonomyFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestRegistryServesEverySubject(t *testing.T) {
	e, err := NewWithTransport(testConfig(t), invoke.TransportFunc(func(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
		return invoke.Outcome{Success: true}, nil
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Assert", "VAIController", "VToken"}, e.Registry().Subjects())
}
