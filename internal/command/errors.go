package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/suderio/scenario-engine/internal/value"
)

var (
	// ErrEmptyName indicates a command or argument without a name.
	ErrEmptyName = errors.New("name is required")
	// ErrMissingHandler indicates a command without a handler.
	ErrMissingHandler = errors.New("handler is required")
	// ErrMissingDecoder indicates a non-variadic argument without a decoder.
	ErrMissingDecoder = errors.New("decoder is required")
	// ErrDuplicateArg indicates two arguments of one command sharing a name.
	ErrDuplicateArg = errors.New("duplicate argument name")
	// ErrVariadicNotLast indicates a variadic argument followed by other explicit arguments.
	ErrVariadicNotLast = errors.New("only the last explicit argument may be variadic")
	// ErrImplicitBinding indicates an implicit argument that is also nullable or variadic.
	ErrImplicitBinding = errors.New("implicit arguments cannot be nullable or variadic")
	// ErrOverlappingArity indicates two commands that would match the same events.
	ErrOverlappingArity = errors.New("commands have overlapping arity")
	// ErrUnknownSubject indicates a subject with no registered commands.
	ErrUnknownSubject = errors.New("unknown subject")
)

// NoMatchingCommandError means no command of the subject fits the event.
type NoMatchingCommandError struct {
	Subject string
	Event   value.Event
}

func (e *NoMatchingCommandError) Error() string {
	return fmt.Sprintf("no matching command for %s: %s", e.Subject, e.Event)
}

// AmbiguousCommandError means more than one command fits the event.
type AmbiguousCommandError struct {
	Subject    string
	Event      value.Event
	Candidates []string
}

func (e *AmbiguousCommandError) Error() string {
	return fmt.Sprintf("ambiguous command for %s: %s matches %s", e.Subject, e.Event, strings.Join(e.Candidates, ", "))
}

// MissingImplicitError means an implicit argument could not be found in the World.
type MissingImplicitError struct {
	Arg string
	Err error
}

func (e *MissingImplicitError) Error() string {
	return fmt.Sprintf("missing implicit argument %s: %v", e.Arg, e.Err)
}

func (e *MissingImplicitError) Unwrap() error { return e.Err }

// ArityMismatchError means the token count does not fit the explicit arguments.
type ArityMismatchError struct {
	Want string
	Got  int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("expected %s arguments, got %d", e.Want, e.Got)
}

// ArgResolutionError wraps every failure to bind a command's arguments. Err is
// a *MissingImplicitError, *ArityMismatchError or *value.DecodeError.
type ArgResolutionError struct {
	Command string
	Arg     string
	Err     error
}

func (e *ArgResolutionError) Error() string {
	msg := e.Err.Error()
	if e.Arg != "" {
		msg = fmt.Sprintf("argument %s: %s", e.Arg, msg)
	}
	if e.Command != "" {
		msg = e.Command + ": " + msg
	}
	return msg
}

func (e *ArgResolutionError) Unwrap() error { return e.Err }

// IsDispatchError reports whether err was raised before any handler ran, in
// which case the World was not touched.
func IsDispatchError(err error) bool {
	var (
		nm *NoMatchingCommandError
		am *AmbiguousCommandError
		ar *ArgResolutionError
	)
	return errors.As(err, &nm) || errors.As(err, &am) || errors.As(err, &ar) || errors.Is(err, ErrUnknownSubject)
}
