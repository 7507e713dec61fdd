package command

import (
	"fmt"
	"sort"

	"github.com/suderio/scenario-engine/internal/value"
)

// Registry maps subjects to their commands. It is built once and never
// changes.
type Registry struct {
	subjects map[string][]CommandSpec
}

// NewRegistry validates every command and builds a registry.
func NewRegistry(subjects map[string][]CommandSpec) (*Registry, error) {
	r := &Registry{subjects: make(map[string][]CommandSpec, len(subjects))}
	for subject, specs := range subjects {
		if subject == "" {
			return nil, fmt.Errorf("subject: %w", ErrEmptyName)
		}
		for i, spec := range specs {
			if err := validateSpec(spec); err != nil {
				return nil, fmt.Errorf("%s command %d (%s): %w", subject, i, spec.Name, err)
			}
			for _, prev := range specs[:i] {
				if overlaps(prev, spec) {
					return nil, fmt.Errorf("%s: %s and %s: %w", subject, prev, spec, ErrOverlappingArity)
				}
			}
		}
		r.subjects[subject] = append([]CommandSpec(nil), specs...)
	}
	return r, nil
}

func validateSpec(spec CommandSpec) error {
	if spec.Name == "" {
		return ErrEmptyName
	}
	if spec.Handler == nil {
		return ErrMissingHandler
	}
	if spec.NamePos < 0 {
		return fmt.Errorf("name position %d is negative", spec.NamePos)
	}
	seen := make(map[string]bool, len(spec.Args))
	variadic := false
	for _, a := range spec.Args {
		if a.Name == "" {
			return fmt.Errorf("argument: %w", ErrEmptyName)
		}
		if seen[a.Name] {
			return fmt.Errorf("%s: %w", a.Name, ErrDuplicateArg)
		}
		seen[a.Name] = true
		if a.Implicit {
			if a.Nullable || a.Variadic {
				return fmt.Errorf("%s: %w", a.Name, ErrImplicitBinding)
			}
		} else if variadic {
			return fmt.Errorf("%s: %w", a.Name, ErrVariadicNotLast)
		}
		if a.Variadic {
			variadic = true
			continue
		}
		if a.Decode == nil {
			return fmt.Errorf("%s: %w", a.Name, ErrMissingDecoder)
		}
	}
	return nil
}

// overlaps reports whether some event would match both commands.
func overlaps(a, b CommandSpec) bool {
	if a.Name != b.Name || a.NamePos != b.NamePos {
		return false
	}
	aMin, aMax := a.Arity()
	bMin, bMax := b.Arity()
	return (aMax < 0 || bMin <= aMax) && (bMax < 0 || aMin <= bMax)
}

// Subjects returns the registered subjects sorted.
func (r *Registry) Subjects() []string {
	out := make([]string, 0, len(r.subjects))
	for s := range r.subjects {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Commands returns the commands of subject in registration order.
func (r *Registry) Commands(subject string) ([]CommandSpec, bool) {
	specs, ok := r.subjects[subject]
	if !ok {
		return nil, false
	}
	return append([]CommandSpec(nil), specs...), true
}

// Match selects the single command of subject that fits ev.
func (r *Registry) Match(subject string, ev value.Event) (CommandSpec, error) {
	specs, ok := r.subjects[subject]
	if !ok {
		return CommandSpec{}, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	return Match(subject, specs, ev)
}

// Match selects the single spec whose name sits at its NamePos in ev and whose
// arity accepts the remaining tokens. Zero or several candidates are errors.
func Match(subject string, specs []CommandSpec, ev value.Event) (CommandSpec, error) {
	var found []CommandSpec
	for _, spec := range specs {
		if spec.NamePos >= len(ev) {
			continue
		}
		tok := ev[spec.NamePos]
		if tok.IsNested() || tok.Text() != spec.Name {
			continue
		}
		if !spec.Accepts(len(ev) - 1) {
			continue
		}
		found = append(found, spec)
	}

	switch len(found) {
	case 0:
		return CommandSpec{}, &NoMatchingCommandError{Subject: subject, Event: ev}
	case 1:
		return found[0], nil
	}
	names := make([]string, len(found))
	for i, s := range found {
		names[i] = s.Signature()
	}
	sort.Strings(names)
	return CommandSpec{}, &AmbiguousCommandError{Subject: subject, Event: ev, Candidates: names}
}

// argTokens returns the tokens of ev other than the command name.
func argTokens(spec CommandSpec, ev value.Event) []value.Token {
	out := make([]value.Token, 0, len(ev))
	for i, tok := range ev {
		if i != spec.NamePos {
			out = append(out, tok)
		}
	}
	return out
}
