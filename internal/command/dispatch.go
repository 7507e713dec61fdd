package command

import (
	"context"
	"fmt"
	"log"

	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

// Dispatcher runs events against a Registry.
type Dispatcher struct {
	registry *Registry
	logger   *log.Logger
	verbose  bool
}

// NewDispatcher creates a dispatcher over registry. logger may be nil.
func NewDispatcher(registry *Registry, logger *log.Logger, verbose bool) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger, verbose: verbose}
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Process matches ev under subject, resolves its arguments and runs the
// handler on behalf of from. Whenever an error is returned the result is w
// itself: dispatch errors happen before the handler runs, and handler errors
// discard whatever the handler built.
func (d *Dispatcher) Process(ctx context.Context, w world.World, subject string, ev value.Event, from string) (world.World, error) {
	spec, err := d.registry.Match(subject, ev)
	if err != nil {
		d.logf("%s %s: %v", subject, ev, err)
		return w, err
	}

	args, err := resolve(spec.Name, w, spec.Args, argTokens(spec, ev))
	if err != nil {
		d.logf("%s %s: %v", subject, ev, err)
		return w, err
	}

	d.logf("%s %s from %s", subject, spec.Signature(), w.DescribeUser(from))
	next, err := spec.Handler(ctx, w, from, args)
	if err != nil {
		return w, fmt.Errorf("%s %s: %w", subject, spec.Name, err)
	}
	return next, nil
}

func (d *Dispatcher) logf(format string, args ...any) {
	if !d.verbose || d.logger == nil {
		return
	}
	d.logger.Printf(format, args...)
}
