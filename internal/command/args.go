package command

import "sort"

// Args holds the resolved arguments of one command.
type Args struct {
	values   map[string]any
	absent   map[string]bool
	defaults map[string]any
}

func newArgs() Args {
	return Args{
		values:   make(map[string]any),
		absent:   make(map[string]bool),
		defaults: make(map[string]any),
	}
}

func (a Args) bind(name string, v any) { a.values[name] = v }

func (a Args) bindAbsent(spec ArgSpec) {
	a.absent[spec.Name] = true
	if spec.Default != nil {
		a.defaults[spec.Name] = spec.Default
	}
}

// Value returns the raw binding of name. Absent arguments return their
// default, if any.
func (a Args) Value(name string) (any, bool) {
	if a.absent[name] {
		v, ok := a.defaults[name]
		return v, ok
	}
	v, ok := a.values[name]
	return v, ok
}

// Absent reports whether a nullable argument was omitted or given as Null.
func (a Args) Absent(name string) bool { return a.absent[name] }

// Names returns every bound name, absent ones included, sorted.
func (a Args) Names() []string {
	out := make([]string, 0, len(a.values)+len(a.absent))
	for k := range a.values {
		out = append(out, k)
	}
	for k := range a.absent {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the argument name as a T.
func Get[T any](a Args, name string) (T, bool) {
	var zero T
	v, ok := a.Value(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
