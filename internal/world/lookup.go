package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEntityNotFound is returned when no entity matches an identifier.
var ErrEntityNotFound = errors.New("entity not found")

// Lookup resolves an identifier (logical name or address) to an entity.
type Lookup interface {
	Lookup(w World, id string) (Entity, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(w World, id string) (Entity, error)

// Lookup calls f.
func (f LookupFunc) Lookup(w World, id string) (Entity, error) { return f(w, id) }

// DefaultLookup matches logical names first, then addresses.
var DefaultLookup Lookup = LookupFunc(func(w World, id string) (Entity, error) {
	if e, ok := w.entities[id]; ok {
		return e, nil
	}
	for _, e := range w.Entities() {
		if e.Address != "" && strings.EqualFold(e.Address, id) {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("%w: %s", ErrEntityNotFound, id)
})

// LookupKind resolves id and checks the entity is of the given kind.
func LookupKind(l Lookup, w World, id, kind string) (Entity, error) {
	e, err := l.Lookup(w, id)
	if err != nil {
		return Entity{}, err
	}
	if e.Kind != kind {
		return Entity{}, fmt.Errorf("%w: %s is a %s, not a %s", ErrEntityNotFound, id, e.Kind, kind)
	}
	return e, nil
}
