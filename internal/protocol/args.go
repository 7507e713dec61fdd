package protocol

import (
	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

func getEvent(args command.Args, name string) (value.Event, bool) {
	ev, ok := command.Get[value.EventV](args, name)
	if !ok {
		return nil, false
	}
	return ev.Event(), true
}

func getNumber(args command.Args, name string) value.NumberV {
	n, _ := command.Get[value.NumberV](args, name)
	return n
}

func getAddress(args command.Args, name string) value.AddressV {
	a, _ := command.Get[value.AddressV](args, name)
	return a
}

func getEntity(args command.Args, name string) world.Entity {
	e, _ := command.Get[world.Entity](args, name)
	return e
}

func getString(args command.Args, name string) string {
	s, _ := command.Get[value.StringV](args, name)
	return s.Show()
}
