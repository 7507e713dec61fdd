package command

import (
	"fmt"

	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

// Resolve binds tokens to specs. Implicit arguments are resolved from w first.
// Explicit arguments are then taken positionally: nullable ones only consume a
// token while there are more tokens than required arguments, and a variadic
// one takes everything left as a single event.
func Resolve(w world.World, specs []ArgSpec, tokens []value.Token) (Args, error) {
	return resolve("", w, specs, tokens)
}

func resolve(command string, w world.World, specs []ArgSpec, tokens []value.Token) (Args, error) {
	args := newArgs()
	fail := func(arg string, err error) (Args, error) {
		return Args{}, &ArgResolutionError{Command: command, Arg: arg, Err: err}
	}

	var explicit []ArgSpec
	for _, spec := range specs {
		if !spec.Implicit {
			explicit = append(explicit, spec)
			continue
		}
		v, err := spec.Decode(w, value.Token{})
		if err != nil {
			return fail(spec.Name, &MissingImplicitError{Arg: spec.Name, Err: err})
		}
		args.bind(spec.Name, v)
	}

	required, optional, variadic := 0, 0, false
	for _, spec := range explicit {
		switch {
		case spec.Variadic:
			variadic = true
		case spec.Nullable:
			optional++
		default:
			required++
		}
	}
	if len(tokens) < required {
		return fail("", &ArityMismatchError{Want: arityWant(required, optional, variadic), Got: len(tokens)})
	}
	spare := len(tokens) - required

	i := 0
	for _, spec := range explicit {
		switch {
		case spec.Variadic:
			rest := value.Event(append([]value.Token(nil), tokens[i:]...))
			i = len(tokens)
			decode := spec.Decode
			if decode == nil {
				decode = EventArg
			}
			v, err := decode(w, value.Group(rest))
			if err != nil {
				return fail(spec.Name, err)
			}
			args.bind(spec.Name, v)

		case spec.Nullable:
			if spare == 0 || i >= len(tokens) {
				args.bindAbsent(spec)
				continue
			}
			tok := tokens[i]
			i++
			spare--
			if !tok.IsNested() && tok.Text() == NullLiteral {
				args.bindAbsent(spec)
				continue
			}
			v, err := spec.Decode(w, tok)
			if err != nil {
				return fail(spec.Name, err)
			}
			args.bind(spec.Name, v)

		default:
			tok := tokens[i]
			i++
			v, err := spec.Decode(w, tok)
			if err != nil {
				return fail(spec.Name, err)
			}
			args.bind(spec.Name, v)
		}
	}

	if i < len(tokens) {
		return fail("", &ArityMismatchError{Want: arityWant(required, optional, variadic), Got: len(tokens)})
	}
	return args, nil
}

func arityWant(required, optional int, variadic bool) string {
	switch {
	case variadic:
		return fmt.Sprintf("at least %d", required)
	case optional > 0:
		return fmt.Sprintf("%d to %d", required, required+optional)
	}
	return fmt.Sprintf("%d", required)
}
