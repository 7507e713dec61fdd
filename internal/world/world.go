// Package world holds the scenario state threaded through command processing.
//
// A World is a snapshot. Every method that changes state returns a new World and
// leaves the receiver untouched, so a World may be kept around (e.g. to restore
// it after a failed event) without defensive copies.
package world

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Config is the scenario-wide configuration carried by a World.
type Config struct {
	// Accounts maps user aliases (e.g. "Geoff") to addresses.
	Accounts    map[string]string `mapstructure:"accounts" yaml:"accounts" json:"accounts"`
	DefaultFrom string            `mapstructure:"default_from" yaml:"default_from" json:"default_from"`
	Network     string            `mapstructure:"network" yaml:"network" json:"network"`
}

func (c Config) clone() Config {
	out := c
	out.Accounts = make(map[string]string, len(c.Accounts))
	for k, v := range c.Accounts {
		out.Accounts[k] = v
	}
	return out
}

// Entity is a deployed contract known to the scenario under a logical name.
type Entity struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
}

// Action is one append-only log entry.
type Action struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Invocation  Invocation `json:"invocation"`
}

// World is the immutable scenario state.
type World struct {
	actions  []Action
	entities map[string]Entity
	config   Config
}

// New creates the initial World for a scenario.
func New(cfg Config) World {
	return World{
		entities: make(map[string]Entity),
		config:   cfg.clone(),
	}
}

// Config returns a copy of the configuration.
func (w World) Config() Config { return w.config.clone() }

// Actions returns a copy of the action log in append order.
func (w World) Actions() []Action {
	return append([]Action(nil), w.actions...)
}

// ActionCount returns the length of the action log.
func (w World) ActionCount() int { return len(w.actions) }

// LastAction returns the most recent action.
func (w World) LastAction() (Action, bool) {
	if len(w.actions) == 0 {
		return Action{}, false
	}
	return w.actions[len(w.actions)-1], true
}

// Entity returns the entity registered under name.
func (w World) Entity(name string) (Entity, bool) {
	e, ok := w.entities[name]
	return e, ok
}

// Entities returns all registered entities sorted by name.
func (w World) Entities() []Entity {
	out := make([]Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddAction returns a World with one more action appended.
func (w World) AddAction(description string, inv Invocation) World {
	return w.appendAction(Action{
		ID:          uuid.NewString(),
		Description: description,
		Invocation:  inv,
	})
}

func (w World) appendAction(a Action) World {
	next := w
	next.actions = make([]Action, len(w.actions), len(w.actions)+1)
	copy(next.actions, w.actions)
	next.actions = append(next.actions, a)
	return next
}

// WithEntity returns a World with e registered under e.Name, replacing any
// previous entity of that name.
func (w World) WithEntity(e Entity) World {
	next := w
	next.entities = make(map[string]Entity, len(w.entities)+1)
	for k, v := range w.entities {
		next.entities[k] = v
	}
	next.entities[e.Name] = e
	return next
}

// WithConfig returns a World using cfg.
func (w World) WithConfig(cfg Config) World {
	next := w
	next.config = cfg.clone()
	return next
}

// ResolveUser maps an account alias to its address. An exact alias wins over
// a case-insensitive one.
func (w World) ResolveUser(name string) (string, bool) {
	if addr, ok := w.config.Accounts[name]; ok {
		return addr, true
	}
	for alias, addr := range w.config.Accounts {
		if strings.EqualFold(alias, name) {
			return addr, true
		}
	}
	return "", false
}

// DescribeUser renders an address as its alias when one is configured.
func (w World) DescribeUser(addr string) string {
	for name, a := range w.config.Accounts {
		if strings.EqualFold(a, addr) {
			return name
		}
	}
	return addr
}
