package world

import "fmt"

// DeltaType discriminates serialized deltas.
type DeltaType string

const (
	DeltaEntityRegistered DeltaType = "EntityRegistered"
	DeltaActionAppended   DeltaType = "ActionAppended"
)

// Delta is one change between two consecutive Worlds. Folding the deltas of a
// run over the initial World reproduces the final World.
type Delta interface {
	Type() DeltaType
	Apply(w World) World
	Message() string
}

// EntityRegistered records a new or replaced entity.
type EntityRegistered struct {
	Entity Entity `json:"entity"`
}

func (d *EntityRegistered) Type() DeltaType       { return DeltaEntityRegistered }
func (d *EntityRegistered) Apply(w World) World { return w.WithEntity(d.Entity) }
func (d *EntityRegistered) Message() string {
	return fmt.Sprintf("%s registered at %s", d.Entity.Name, d.Entity.Address)
}

// ActionAppended records one action log entry, keeping its original ID.
type ActionAppended struct {
	Action Action `json:"action"`
}

func (d *ActionAppended) Type() DeltaType       { return DeltaActionAppended }
func (d *ActionAppended) Apply(w World) World { return w.appendAction(d.Action) }
func (d *ActionAppended) Message() string     { return d.Action.Description }

// Diff returns the deltas that turn prev into next. next must have been derived
// from prev; actions are compared by position.
func Diff(prev, next World) ([]Delta, error) {
	if len(next.actions) < len(prev.actions) {
		return nil, fmt.Errorf("next world has %d actions, fewer than the %d it was derived from", len(next.actions), len(prev.actions))
	}
	for i := range prev.actions {
		if prev.actions[i].ID != next.actions[i].ID {
			return nil, fmt.Errorf("action log diverged at index %d", i)
		}
	}

	var deltas []Delta
	for _, e := range next.Entities() {
		if old, ok := prev.entities[e.Name]; ok && old == e {
			continue
		}
		deltas = append(deltas, &EntityRegistered{Entity: e})
	}
	for _, a := range next.actions[len(prev.actions):] {
		deltas = append(deltas, &ActionAppended{Action: a})
	}
	return deltas, nil
}

// Projector rebuilds a World from a delta sequence.
type Projector struct {
	cfg Config
}

// NewProjector creates a projector starting from an empty World with cfg.
func NewProjector(cfg Config) *Projector {
	return &Projector{cfg: cfg}
}

// Build folds the deltas in order.
func (p *Projector) Build(deltas []Delta) World {
	w := New(p.cfg)
	for _, d := range deltas {
		w = d.Apply(w)
	}
	return w
}
