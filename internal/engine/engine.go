// Package engine assembles a scenario runner from its configuration: the
// transport, the invocation executor, every subject's commands and the audit
// sink.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/suderio/scenario-engine/internal/assertion"
	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/config"
	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/parser"
	"github.com/suderio/scenario-engine/internal/protocol"
	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/session"
	"github.com/suderio/scenario-engine/internal/transport/sim"
	"github.com/suderio/scenario-engine/internal/transport/wsrpc"
	"github.com/suderio/scenario-engine/internal/world"
)

// Engine holds the long-lived parts shared by every session.
type Engine struct {
	cfg        config.Config
	logger     *log.Logger
	transport  invoke.Transport
	taxonomies reporter.Taxonomies
	registry   *command.Registry
	closers    []io.Closer
}

// New builds the engine for cfg, dialing the remote node when the transport
// is wsrpc. logger may be nil.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*Engine, error) {
	ts, err := loadTaxonomies(cfg.TaxonomyFile)
	if err != nil {
		return nil, err
	}

	var (
		transport invoke.Transport
		closers   []io.Closer
	)
	switch cfg.Transport {
	case config.TransportWSRPC:
		client, err := wsrpc.Dial(ctx, cfg.Endpoint, nil)
		if err != nil {
			return nil, err
		}
		transport = client
		closers = append(closers, client)
	default:
		chain, err := NewSimChain(cfg, ts)
		if err != nil {
			return nil, err
		}
		transport = chain
	}

	e, err := build(cfg, transport, ts, logger)
	if err != nil {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}
	e.closers = closers
	return e, nil
}

// NewWithTransport builds the engine over an existing transport.
func NewWithTransport(cfg config.Config, transport invoke.Transport, logger *log.Logger) (*Engine, error) {
	ts, err := loadTaxonomies(cfg.TaxonomyFile)
	if err != nil {
		return nil, err
	}
	return build(cfg, transport, ts, logger)
}

// NewSimChain creates the in-memory chain described by cfg.
func NewSimChain(cfg config.Config, ts reporter.Taxonomies) (*sim.Chain, error) {
	var rules []sim.Rule
	if cfg.RulesFile != "" {
		var err error
		if rules, err = sim.LoadRules(cfg.RulesFile); err != nil {
			return nil, err
		}
	}
	return sim.New(sim.Config{Rules: rules, Taxonomies: ts, Latency: cfg.Latency})
}

func loadTaxonomies(path string) (reporter.Taxonomies, error) {
	ts := reporter.Defaults()
	if path == "" {
		return ts, nil
	}
	extra, err := reporter.LoadTaxonomies(path)
	if err != nil {
		return nil, err
	}
	return ts.Merge(extra), nil
}

func build(cfg config.Config, transport invoke.Transport, ts reporter.Taxonomies, logger *log.Logger) (*Engine, error) {
	exec := invoke.NewExecutor(transport, invoke.Options{Logger: logger, Verbose: cfg.Verbose})
	subjects := protocol.New(exec, protocol.WithTaxonomies(ts)).Subjects()

	evaluator, err := assertion.NewEvaluator()
	if err != nil {
		return nil, err
	}
	subjects[assertion.Subject] = assertion.Commands(assertion.Assertions{Mode: cfg.AssertionMode(), Logger: logger}, evaluator)

	registry, err := command.NewRegistry(subjects)
	if err != nil {
		return nil, fmt.Errorf("failed to build command registry: %w", err)
	}
	return &Engine{
		cfg:        cfg,
		logger:     logger,
		transport:  transport,
		taxonomies: ts,
		registry:   registry,
	}, nil
}

// Registry returns the command registry of every subject.
func (e *Engine) Registry() *command.Registry { return e.registry }

// Transport returns the transport calls go through.
func (e *Engine) Transport() invoke.Transport { return e.transport }

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// InitialWorld returns the empty World a scenario starts from.
func (e *Engine) InitialWorld() world.World { return world.New(e.cfg.World) }

// NewSession starts a session from the initial World. store may be nil.
func (e *Engine) NewSession(store audit.Store, onEvent func(parser.ScriptLine, error)) *session.Session {
	return session.New(e.registry, e.InitialWorld(), session.Options{
		Store:   store,
		Logger:  e.logger,
		Verbose: e.cfg.Verbose,
		Timeout: e.cfg.Timeout,
		OnEvent: onEvent,
	})
}

// OpenStore opens the configured audit sink for a new run of scenario. It
// returns a nil store when auditing is off.
func (e *Engine) OpenStore(scenario, runID string) (audit.Store, error) {
	switch e.cfg.Audit.Kind {
	case config.AuditJSONL:
		path, err := audit.NewRunManager(e.cfg.Audit.Dir).Create(scenario, runID)
		if err != nil {
			return nil, err
		}
		store, err := audit.OpenJSONL(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.AuditSQLite:
		if err := os.MkdirAll(filepath.Dir(e.cfg.Audit.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", e.cfg.Audit.Path, err)
		}
		store, err := audit.OpenSQLite(e.cfg.Audit.Path, scenario+"/"+runID)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, nil
}

// Close releases the transport connection, if any.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
