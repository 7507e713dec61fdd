// Package protocol defines the scenario subjects of the VAI protocol: the
// commands each subject accepts and the calls they make.
package protocol

import (
	"context"
	"fmt"

	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/world"
)

// Subject names.
const (
	SubjectVAIController = "VAIController"
	SubjectVToken        = "VToken"
)

// Protocol binds subject commands to an executor.
type Protocol struct {
	exec       *invoke.Executor
	taxonomies reporter.Taxonomies
	lookup     world.Lookup
	builders   map[string]Builder
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithTaxonomies replaces the built-in rejection taxonomies.
func WithTaxonomies(ts reporter.Taxonomies) Option {
	return func(p *Protocol) { p.taxonomies = ts }
}

// WithLookup replaces world.DefaultLookup for entity arguments.
func WithLookup(l world.Lookup) Option {
	return func(p *Protocol) { p.lookup = l }
}

// WithBuilder sets the builder used by the Deploy command of subject.
func WithBuilder(subject string, b Builder) Option {
	return func(p *Protocol) { p.builders[subject] = b }
}

// New creates the protocol subjects over exec.
func New(exec *invoke.Executor, opts ...Option) *Protocol {
	p := &Protocol{
		exec:       exec,
		taxonomies: reporter.Defaults(),
		lookup:     world.DefaultLookup,
		builders:   make(map[string]Builder),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, subject := range []string{SubjectVAIController, SubjectVToken} {
		if _, ok := p.builders[subject]; !ok {
			p.builders[subject] = &DeployBuilder{Kind: subject, Exec: exec, Reporter: p.reporter(subject)}
		}
	}
	return p
}

// Subjects returns the command table of every subject.
func (p *Protocol) Subjects() map[string][]command.CommandSpec {
	return map[string][]command.CommandSpec{
		SubjectVAIController: p.vaiControllerCommands(),
		SubjectVToken:        p.vTokenCommands(),
	}
}

func (p *Protocol) reporter(subject string) reporter.Reporter {
	r, err := p.taxonomies.Reporter(subject)
	if err != nil {
		return nil
	}
	return r
}

// call invokes one method and records the outcome as an action.
func (p *Protocol) call(ctx context.Context, w world.World, subject string, c invoke.Call, from, description string) (world.World, error) {
	inv, err := p.exec.Invoke(ctx, w, c, from, p.reporter(subject))
	if err != nil {
		return w, err
	}
	return w.AddAction(description, inv), nil
}

// deploy runs the subject's builder and records the deployment.
func (p *Protocol) deploy(ctx context.Context, w world.World, subject, from, name string, args command.Args) (world.World, error) {
	params, _ := getEvent(args, "params")
	b := p.builders[subject]
	next, built, err := b.Build(ctx, w, from, name, params)
	if err != nil {
		return w, fmt.Errorf("deploy %s: %w", subject, err)
	}
	return next.AddAction(
		fmt.Sprintf("Added %s (%s) at address %s", built.Entity.Name, built.Entity.Description, built.Entity.Address),
		built.Invocation,
	), nil
}
