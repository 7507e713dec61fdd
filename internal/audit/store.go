// Package audit persists the deltas of a scenario run so the final World can
// be rebuilt and inspected later.
package audit

import (
	"encoding/json"
	"fmt"

	"github.com/suderio/scenario-engine/internal/world"
)

// Store is an append-only sink of world deltas.
type Store interface {
	Append(d world.Delta) error
	Load() ([]world.Delta, error)
	Close() error
}

// DeltaWrapper serializes polymorphic deltas.
type DeltaWrapper struct {
	Type world.DeltaType `json:"type"`
	Data json.RawMessage `json:"data"`
}

func wrapDelta(d world.Delta) (DeltaWrapper, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return DeltaWrapper{}, fmt.Errorf("failed to marshal %s: %w", d.Type(), err)
	}
	return DeltaWrapper{Type: d.Type(), Data: data}, nil
}

// unmarshalDelta reconstructs a concrete Delta from its type discriminator and JSON data.
func unmarshalDelta(typ world.DeltaType, data json.RawMessage) (world.Delta, error) {
	var d world.Delta
	switch typ {
	case world.DeltaEntityRegistered:
		d = &world.EntityRegistered{}
	case world.DeltaActionAppended:
		d = &world.ActionAppended{}
	default:
		return nil, fmt.Errorf("unknown delta type: %s", typ)
	}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", typ, err)
	}
	return d, nil
}

// Replay loads every delta of s and folds them over an empty World with cfg.
func Replay(s Store, cfg world.Config) (world.World, error) {
	deltas, err := s.Load()
	if err != nil {
		return world.World{}, fmt.Errorf("failed to load audit log: %w", err)
	}
	return world.NewProjector(cfg).Build(deltas), nil
}
