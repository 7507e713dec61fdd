package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

// ErrDeployRejected is returned when the external system refuses a deployment.
var ErrDeployRejected = errors.New("deployment rejected")

// Built is what a Builder produced.
type Built struct {
	Entity     world.Entity
	Invocation world.Invocation
}

// Builder deploys a new instance. name may be empty, in which case the builder
// picks one. The returned World has the entity registered.
type Builder interface {
	Build(ctx context.Context, w world.World, from, name string, params value.Event) (world.World, Built, error)
}

// DeployBuilder deploys through the executor. The first parameter, if any,
// names the variant (e.g. "Standard") and the rest are constructor arguments.
type DeployBuilder struct {
	Kind     string
	Exec     *invoke.Executor
	Reporter reporter.Reporter
}

// Build implements Builder.
func (b *DeployBuilder) Build(ctx context.Context, w world.World, from, name string, params value.Event) (world.World, Built, error) {
	if name == "" {
		name = b.Kind
	}
	variant := "Standard"
	var ctorArgs []string
	for i, tok := range params {
		text := tok.Text()
		if tok.IsNested() {
			text = tok.Sub().String()
		}
		if i == 0 {
			variant = text
			continue
		}
		ctorArgs = append(ctorArgs, text)
	}

	call := invoke.Call{Deploy: true, Contract: b.Kind, Method: variant, Args: ctorArgs}
	inv, err := b.Exec.Invoke(ctx, w, call, from, b.Reporter)
	if err != nil {
		return w, Built{}, err
	}
	if !inv.Success {
		reason := "unknown"
		if inv.Error != nil {
			reason = inv.Error.String()
		}
		return w, Built{}, fmt.Errorf("%w: %s %s: %s", ErrDeployRejected, b.Kind, name, reason)
	}
	if inv.Return == nil || inv.Return.Kind() != value.KindAddress {
		return w, Built{}, fmt.Errorf("deploy %s %s: no address returned", b.Kind, name)
	}

	desc := variant
	if len(ctorArgs) > 0 {
		desc = fmt.Sprintf("%s %s", variant, strings.Join(ctorArgs, " "))
	}
	e := world.Entity{Name: name, Kind: b.Kind, Address: inv.Return.Show(), Description: desc}
	return w.WithEntity(e), Built{Entity: e, Invocation: inv}, nil
}
