// Package command resolves scenario events into typed argument sets and runs
// the matching command handler.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

// NullLiteral is the token that explicitly leaves a nullable argument absent.
const NullLiteral = "Null"

// Decoder turns one token into an argument value. Implicit arguments are
// resolved by calling the decoder with a zero Token.
type Decoder func(w world.World, tok value.Token) (any, error)

// ArgSpec declares one command argument.
type ArgSpec struct {
	Name string
	// Decode is required for non-variadic arguments. Variadic arguments default
	// to EventArg.
	Decode Decoder
	// Implicit arguments are resolved from the World and consume no token.
	Implicit bool
	// Nullable arguments may be omitted or given as NullLiteral.
	Nullable bool
	// Variadic captures every remaining token as one event. Only the last
	// explicit argument may be variadic.
	Variadic bool
	// Default is what Args.Get returns for an absent nullable argument.
	Default any
}

// Handler runs a resolved command. It returns the next World; on error the
// caller keeps the World it passed in.
type Handler func(ctx context.Context, w world.World, from string, args Args) (world.World, error)

// CommandSpec declares a command under a subject.
type CommandSpec struct {
	Name    string
	Doc     string
	Args    []ArgSpec
	Handler Handler
	// NamePos is the index of the command name within the event.
	NamePos int
}

// explicit returns the explicit arguments in declaration order.
func (c CommandSpec) explicit() []ArgSpec {
	var out []ArgSpec
	for _, a := range c.Args {
		if !a.Implicit {
			out = append(out, a)
		}
	}
	return out
}

// Arity returns how many non-name tokens the command accepts. max is -1 when a
// variadic argument makes it unbounded.
func (c CommandSpec) Arity() (min, max int) {
	for _, a := range c.explicit() {
		switch {
		case a.Variadic:
			return min, -1
		case a.Nullable:
			max++
		default:
			min++
			max++
		}
	}
	return min, max
}

// Accepts reports whether n non-name tokens fit the command's arity.
func (c CommandSpec) Accepts(n int) bool {
	min, max := c.Arity()
	return n >= min && (max < 0 || n <= max)
}

// Signature renders the command usage, e.g. "Liquidate borrower collateral [repayAmount]".
func (c CommandSpec) Signature() string {
	parts := make([]string, 0, len(c.Args)+1)
	explicit := c.explicit()
	for i := 0; i < c.NamePos && i < len(explicit); i++ {
		parts = append(parts, argUsage(explicit[i]))
	}
	parts = append(parts, c.Name)
	for i := c.NamePos; i < len(explicit); i++ {
		parts = append(parts, argUsage(explicit[i]))
	}
	return strings.Join(parts, " ")
}

func argUsage(a ArgSpec) string {
	switch {
	case a.Variadic:
		return "..." + a.Name
	case a.Nullable:
		return "[" + a.Name + "]"
	}
	return a.Name
}

func (c CommandSpec) String() string {
	min, max := c.Arity()
	if max < 0 {
		return fmt.Sprintf("%s/%d+", c.Name, min)
	}
	if min == max {
		return fmt.Sprintf("%s/%d", c.Name, min)
	}
	return fmt.Sprintf("%s/%d-%d", c.Name, min, max)
}
