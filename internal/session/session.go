// Package session drives scenario events through a command registry, one at a
// time, threading the World from each event into the next.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/parser"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

// FromKeyword prefixes an event run on behalf of another user.
const FromKeyword = "From"

var (
	// ErrMissingSubject is returned for an event that does not start with a subject word.
	ErrMissingSubject = errors.New("event has no subject")
	// ErrUnknownUser is returned when From names neither an account nor an address.
	ErrUnknownUser = errors.New("unknown user")
)

// EventError is a fatal error raised while processing one scenario line.
type EventError struct {
	Line int
	Text string
	Err  error
}

func (e *EventError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Text, e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }

// Options configures a Session.
type Options struct {
	// Store receives the deltas of every processed event. Optional.
	Store   audit.Store
	Logger  *log.Logger
	Verbose bool
	// Timeout bounds each event. Zero means no limit beyond the caller's context.
	Timeout time.Duration
	// OnEvent is called after each script line with its error, if any.
	OnEvent func(line parser.ScriptLine, err error)
}

// Session manages the loop of taking events, dispatching them and persisting
// the resulting deltas.
type Session struct {
	dispatcher *command.Dispatcher
	world      world.World
	opts       Options
}

// New creates a session over registry starting from initial.
func New(registry *command.Registry, initial world.World, opts Options) *Session {
	return &Session{
		dispatcher: command.NewDispatcher(registry, opts.Logger, opts.Verbose),
		world:      initial,
		opts:       opts,
	}
}

// World returns the current World.
func (s *Session) World() world.World { return s.world }

// Registry returns the registry events are dispatched against.
func (s *Session) Registry() *command.Registry { return s.dispatcher.Registry() }

// RebuildState replaces the current World with the one recorded in the store.
func (s *Session) RebuildState() error {
	if s.opts.Store == nil {
		return nil
	}
	w, err := audit.Replay(s.opts.Store, s.world.Config())
	if err != nil {
		return err
	}
	s.world = w
	return nil
}

// Execute parses and runs one line. Blank and comment lines do nothing.
func (s *Session) Execute(ctx context.Context, line string) error {
	ev, err := parser.ParseLine(line)
	if err != nil {
		return &EventError{Text: line, Err: err}
	}
	if len(ev) == 0 {
		return nil
	}
	return s.ExecuteEvent(ctx, parser.ScriptLine{Text: line, Event: ev})
}

// ExecuteEvent runs one parsed line. On error the World is left as it was.
func (s *Session) ExecuteEvent(ctx context.Context, line parser.ScriptLine) error {
	if err := s.process(ctx, line.Event); err != nil {
		return &EventError{Line: line.Number, Text: line.Text, Err: err}
	}
	return nil
}

// RunScript processes every line of r in order and stops at the first fatal
// error. It returns the number of events processed successfully.
func (s *Session) RunScript(ctx context.Context, r io.Reader) (int, error) {
	lines, err := parser.ParseScript(r)
	if err != nil {
		return 0, err
	}
	return s.RunLines(ctx, lines)
}

// RunLines processes already parsed lines in order.
func (s *Session) RunLines(ctx context.Context, lines []parser.ScriptLine) (int, error) {
	for i, line := range lines {
		err := s.ExecuteEvent(ctx, line)
		if s.opts.OnEvent != nil {
			s.opts.OnEvent(line, err)
		}
		if err != nil {
			return i, err
		}
	}
	return len(lines), nil
}

func (s *Session) process(ctx context.Context, ev value.Event) error {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	from, ev, err := s.actor(ev)
	if err != nil {
		return err
	}
	subject := ev.Head()
	if subject == "" {
		return ErrMissingSubject
	}

	prev := s.world
	next, err := s.dispatcher.Process(ctx, prev, subject, ev[1:], from)
	if err != nil {
		return err
	}
	if err := s.persist(prev, next); err != nil {
		return err
	}
	s.world = next
	return nil
}

// actor strips a leading "From <user> (<event>)" and returns the user's
// address with the inner event. Other events run as the default user.
func (s *Session) actor(ev value.Event) (string, value.Event, error) {
	if ev.Head() != FromKeyword {
		return s.defaultFrom(), ev, nil
	}
	if len(ev) < 3 || ev[1].IsNested() {
		return "", nil, fmt.Errorf("usage: %s <user> (<event>)", FromKeyword)
	}
	from, err := s.resolveUser(ev[1].Text())
	if err != nil {
		return "", nil, err
	}
	if len(ev) == 3 && ev[2].IsNested() {
		return from, ev[2].Sub(), nil
	}
	return from, ev[2:], nil
}

func (s *Session) resolveUser(name string) (string, error) {
	if addr, ok := s.world.ResolveUser(name); ok {
		return addr, nil
	}
	if addr, err := value.ParseAddress(name); err == nil {
		return addr.String(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownUser, name)
}

func (s *Session) defaultFrom() string {
	name := s.world.Config().DefaultFrom
	if name == "" {
		return ""
	}
	if addr, err := s.resolveUser(name); err == nil {
		return addr
	}
	return name
}

func (s *Session) persist(prev, next world.World) error {
	if s.opts.Store == nil {
		return nil
	}
	deltas, err := world.Diff(prev, next)
	if err != nil {
		return fmt.Errorf("failed to diff world: %w", err)
	}
	for _, d := range deltas {
		if err := s.opts.Store.Append(d); err != nil {
			return fmt.Errorf("failed to persist audit log: %w", err)
		}
		s.logf("audit: %s", d.Message())
	}
	return nil
}

func (s *Session) logf(format string, args ...any) {
	if !s.opts.Verbose || s.opts.Logger == nil {
		return
	}
	s.opts.Logger.Printf(format, args...)
}
