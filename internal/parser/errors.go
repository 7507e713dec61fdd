package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// ErrSyntax is matched by every error returned for malformed input.
var ErrSyntax = errors.New("syntax error")

// SyntaxError points at the offending column of a line.
type SyntaxError struct {
	Input  string
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	col := e.Column
	if col < 1 {
		col = 1
	}
	return fmt.Sprintf("%s at column %d: %s\n  %s\n  %s^", ErrSyntax, col, e.Msg, e.Input, strings.Repeat(" ", col-1))
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// MapError turns a participle error into a SyntaxError with a hint for the
// usual mistakes.
func MapError(input string, err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	msg := perr.Message()
	switch {
	case strings.Count(input, "(") > strings.Count(input, ")"):
		msg = "unbalanced parenthesis, missing \")\""
	case strings.Count(input, "(") < strings.Count(input, ")"):
		msg = "unbalanced parenthesis, unexpected \")\""
	case strings.Count(input, `"`)%2 == 1:
		msg = "unterminated string"
	}
	return &SyntaxError{Input: strings.TrimRight(input, "\r\n"), Column: perr.Position().Column, Msg: msg}
}
