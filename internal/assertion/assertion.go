// Package assertion implements the Assert subject: checks against the action
// log that never add actions of their own.
package assertion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

// Subject is the subject name of assertions.
const Subject = "Assert"

// Mode selects how failed assertions are reported.
type Mode string

const (
	// ModeStrict fails the event.
	ModeStrict Mode = "strict"
	// ModeLogOnly logs the failure and continues.
	ModeLogOnly Mode = "log"
)

// ParseMode reads a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStrict, "":
		return ModeStrict, nil
	case ModeLogOnly, "log-only", "logonly":
		return ModeLogOnly, nil
	}
	return "", fmt.Errorf("unknown assertion mode %q", s)
}

// ErrNoAction is returned when an assertion needs an action and the log is empty.
var ErrNoAction = errors.New("no action to assert on")

// Error is a failed assertion.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "assertion failed: " + e.Message }

// Assertions reports assertion failures according to Mode.
type Assertions struct {
	Mode   Mode
	Logger *log.Logger
}

// Failf reports a failed assertion. In log-only mode it returns nil.
func (a Assertions) Failf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if a.Mode == ModeLogOnly {
		if a.Logger != nil {
			a.Logger.Printf("assertion failed: %s", msg)
		}
		return nil
	}
	return &Error{Message: msg}
}

// Commands returns the Assert subject's commands.
func Commands(a Assertions, ev *Evaluator) []command.CommandSpec {
	return []command.CommandSpec{
		{
			Name: "Success",
			Doc:  `Asserts the last action succeeded.`,
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				last, ok := w.LastAction()
				if !ok {
					return w, ErrNoAction
				}
				if !last.Invocation.Success {
					return w, a.Failf("expected success, got %s (%s)", describeFailure(last.Invocation), last.Description)
				}
				return w, nil
			},
		},
		{
			Name: "Failure",
			Doc: `Asserts the last action was rejected with the given error, and optionally info and detail.
E.g. "Assert Failure UNAUTHORIZED SET_PENDING_ADMIN_OWNER_CHECK"`,
			Args: []command.ArgSpec{
				{Name: "error", Decode: command.String},
				{Name: "info", Decode: command.String, Nullable: true},
				{Name: "detail", Decode: command.Number, Nullable: true},
			},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				last, ok := w.LastAction()
				if !ok {
					return w, ErrNoAction
				}
				got := last.Invocation.Error
				if last.Invocation.Success || got == nil {
					return w, a.Failf("expected failure, got success (%s)", last.Description)
				}
				wantErr, _ := command.Get[value.StringV](args, "error")
				if got.Error != wantErr.Show() {
					return w, a.Failf("expected error %s, got %s", wantErr.Show(), got.String())
				}
				if info, ok := command.Get[value.StringV](args, "info"); ok && got.Info != info.Show() {
					return w, a.Failf("expected info %s, got %s", info.Show(), got.String())
				}
				if detail, ok := command.Get[value.NumberV](args, "detail"); ok && detail.Encode() != fmt.Sprint(got.Detail) {
					return w, a.Failf("expected detail %s, got %s", detail.Show(), got.String())
				}
				return w, nil
			},
		},
		{
			Name: "Expr",
			Doc: `Asserts a CEL expression over actions, last and entities holds.
E.g. "Assert Expr \"size(actions) == 2 && last.success\""`,
			Args: []command.ArgSpec{{Name: "expr", Decode: command.String}},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				expr, _ := command.Get[value.StringV](args, "expr")
				ok, err := ev.Eval(expr.Show(), w)
				if err != nil {
					return w, err
				}
				if !ok {
					return w, a.Failf("expected %s to hold", expr.Show())
				}
				return w, nil
			},
		},
	}
}

func describeFailure(inv world.Invocation) string {
	switch {
	case inv.Error != nil:
		return inv.Error.String()
	case inv.TransportErr != nil:
		return inv.TransportErr.Error()
	}
	return "failure"
}
