package assertion

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

// Evaluator compiles CEL expressions over a World.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates the CEL environment. Expressions see:
//   - actions: list of action maps (id, description, success, error, info, detail, reason, return)
//   - last: the most recent action, or an empty map
//   - entities: map of entity name to {name, kind, address, description}
//
// cmpNum(a, b) compares two numbers written as strings exactly, returning -1,
// 0 or 1.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		ext.Lists(),
		cel.Variable("actions", cel.ListType(cel.DynType)),
		cel.Variable("last", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("entities", cel.MapType(cel.StringType, cel.DynType)),
		cel.Function("cmpNum",
			cel.Overload("cmpNum_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.IntType,
				cel.BinaryBinding(cmpNum),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Eval evaluates a boolean expression against w.
func (ev *Evaluator) Eval(expr string, w world.World) (bool, error) {
	ast, issues := ev.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("CEL compile error: %w", issues.Err())
	}

	prg, err := ev.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("CEL program error: %w", err)
	}

	out, _, err := prg.Eval(Context(w))
	if err != nil {
		return false, fmt.Errorf("CEL eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression %q returned %T, not bool", expr, out.Value())
	}
	return b, nil
}

// Context builds the CEL activation for w.
func Context(w world.World) map[string]any {
	actions := w.Actions()
	list := make([]any, len(actions))
	for i, a := range actions {
		list[i] = actionToMap(a)
	}

	last := map[string]any{}
	if a, ok := w.LastAction(); ok {
		last = actionToMap(a)
	}

	entities := make(map[string]any)
	for _, e := range w.Entities() {
		entities[e.Name] = map[string]any{
			"name":        e.Name,
			"kind":        e.Kind,
			"address":     e.Address,
			"description": e.Description,
		}
	}

	return map[string]any{
		"actions":  list,
		"last":     last,
		"entities": entities,
	}
}

func actionToMap(a world.Action) map[string]any {
	m := map[string]any{
		"id":          a.ID,
		"description": a.Description,
		"success":     a.Invocation.Success,
		"error":       "",
		"info":        "",
		"detail":      uint64(0),
		"reason":      "",
		"return":      "",
	}
	if e := a.Invocation.Error; e != nil {
		m["error"] = e.Error
		m["info"] = e.Info
		m["detail"] = e.Detail
		m["reason"] = e.Reason
	}
	if a.Invocation.Return != nil {
		m["return"] = a.Invocation.Return.Show()
	}
	return m
}

func cmpNum(lhs, rhs ref.Val) ref.Val {
	a, err := value.ParseNumber(fmt.Sprint(lhs.Value()))
	if err != nil {
		return types.NewErr("cmpNum: %v", err)
	}
	b, err := value.ParseNumber(fmt.Sprint(rhs.Value()))
	if err != nil {
		return types.NewErr("cmpNum: %v", err)
	}
	return types.Int(a.Cmp(b))
}
