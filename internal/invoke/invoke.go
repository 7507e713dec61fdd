// Package invoke sends calls to the external system and normalises the result
// into a world.Invocation.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

const tracerName = "github.com/suderio/scenario-engine/internal/invoke"

// Call describes one call to the external system. Deploy calls create a new
// contract of kind Contract and leave Target empty.
type Call struct {
	Target   string   `json:"target,omitempty"`
	Method   string   `json:"method"`
	Args     []string `json:"args,omitempty"`
	Deploy   bool     `json:"deploy,omitempty"`
	Contract string   `json:"contract,omitempty"`
}

// String renders the call as "Method(arg, ...)".
func (c Call) String() string {
	name := c.Method
	if c.Deploy {
		name = "deploy " + c.Contract
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(c.Args, ", "))
}

// Outcome is what the transport observed for a completed call. A rejected call
// carries its raw code; the executor decodes it.
type Outcome struct {
	Success   bool                    `json:"success"`
	Return    string                  `json:"return,omitempty"`
	Address   string                  `json:"address,omitempty"`
	Rejection *reporter.RejectionCode `json:"rejection,omitempty"`
}

// Transport is the I/O boundary to the external system.
type Transport interface {
	Send(ctx context.Context, call Call, from string) (Outcome, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, call Call, from string) (Outcome, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, call Call, from string) (Outcome, error) {
	return f(ctx, call, from)
}

// TransportError means the call did not complete. It aborts the current event.
type TransportError struct {
	Call Call
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure on %s: %v", e.Call, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Options configures an Executor.
type Options struct {
	Logger  *log.Logger
	Verbose bool
	Tracer  trace.Tracer
}

// Executor performs calls through a Transport.
type Executor struct {
	transport Transport
	logger    *log.Logger
	verbose   bool
	tracer    trace.Tracer
}

// NewExecutor creates an executor over transport.
func NewExecutor(transport Transport, opts Options) *Executor {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Executor{
		transport: transport,
		logger:    opts.Logger,
		verbose:   opts.Verbose,
		tracer:    tracer,
	}
}

// Invoke sends call on behalf of from. A rejection is decoded with rep and
// returned as a failed Invocation with a nil error. Transport failures, a
// cancelled context included, are returned as *TransportError and are never
// retried.
func (e *Executor) Invoke(ctx context.Context, w world.World, call Call, from string, rep reporter.Reporter) (world.Invocation, error) {
	ctx, span := e.tracer.Start(ctx, "invoke "+call.Method, trace.WithAttributes(
		attribute.String("scenario.method", call.Method),
		attribute.String("scenario.target", call.Target),
		attribute.String("scenario.from", w.DescribeUser(from)),
		attribute.Bool("scenario.deploy", call.Deploy),
	))
	defer span.End()

	e.logf("invoke %s from %s", call, w.DescribeUser(from))

	if err := ctx.Err(); err != nil {
		return e.transportFailure(span, call, err)
	}
	out, err := e.transport.Send(ctx, call, from)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return e.transportFailure(span, call, err)
	}

	if out.Success {
		span.SetAttributes(attribute.String("scenario.outcome", "success"))
		e.logf("invoke %s: success", call)
		return world.Invocation{Success: true, Return: returnValue(out)}, nil
	}

	code := reporter.RejectionCode{}
	if out.Rejection != nil {
		code = *out.Rejection
	}
	var derr reporter.DomainError
	if rep != nil {
		derr = rep.Decode(code)
	} else {
		derr = reporter.DomainError{Error: fmt.Sprintf("UNKNOWN(%d)", code.Error), Info: fmt.Sprintf("UNKNOWN(%d)", code.Info), Detail: code.Detail, Reason: code.Reason}
	}
	span.SetAttributes(
		attribute.String("scenario.outcome", "rejected"),
		attribute.String("scenario.error", derr.Error),
	)
	e.logf("invoke %s: rejected: %s", call, derr.String())
	return world.Invocation{Success: false, Error: &derr}, nil
}

func (e *Executor) transportFailure(span trace.Span, call Call, err error) (world.Invocation, error) {
	terr := &TransportError{Call: call, Err: err}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("scenario.outcome", "transport_error"))
	e.logf("invoke %s: %v", call, err)
	return world.Invocation{Success: false, TransportErr: terr}, terr
}

func returnValue(out Outcome) value.Value {
	if out.Address != "" {
		if a, err := value.ParseAddress(out.Address); err == nil {
			return a
		}
		return value.NewString(out.Address)
	}
	if out.Return == "" {
		return nil
	}
	if n, err := value.ParseNumber(out.Return); err == nil {
		return n
	}
	return value.NewString(out.Return)
}

func (e *Executor) logf(format string, args ...any) {
	if !e.verbose || e.logger == nil {
		return
	}
	e.logger.Printf(format, args...)
}
