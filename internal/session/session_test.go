package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/parser"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

const (
	geoff  = "0x1111111111111111111111111111111111111111"
	torrey = "0x2222222222222222222222222222222222222222"
)

var errBoom = errors.New("boom")

func counterRegistry(t *testing.T) *command.Registry {
	t.Helper()
	reg, err := command.NewRegistry(map[string][]command.CommandSpec{
		"Counter": {
			{
				Name: "Add",
				Args: []command.ArgSpec{{Name: "n", Decode: command.Number}},
				Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
					n, _ := command.Get[value.NumberV](args, "n")
					return w.AddAction("added "+n.Show()+" by "+w.DescribeUser(from), world.Invocation{Success: true, Return: n}), nil
				},
			},
			{
				Name: "Explode",
				Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
					return w, errBoom
				},
			},
			{
				Name: "Wait",
				Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
					<-ctx.Done()
					return w, ctx.Err()
				},
			},
		},
	})
	require.NoError(t, err)
	return reg
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	cfg := world.Config{
		Accounts:    map[string]string{"Geoff": geoff, "Torrey": torrey},
		DefaultFrom: "Geoff",
	}
	return New(counterRegistry(t), world.New(cfg), opts)
}

func descriptions(w world.World) []string {
	var out []string
	for _, a := range w.Actions() {
		out = append(out, a.Description)
	}
	return out
}

func TestExecuteUsesDefaultUser(t *testing.T) {
	s := newSession(t, Options{})
	require.NoError(t, s.Execute(context.Background(), "Counter Add 5"))
	assert.Equal(t, []string{"added 5 by Geoff"}, descriptions(s.World()))
}

func TestExecuteFrom(t *testing.T) {
	s := newSession(t, Options{})
	ctx := context.Background()

	require.NoError(t, s.Execute(ctx, "From Torrey (Counter Add 1)"))
	require.NoError(t, s.Execute(ctx, "From Torrey Counter Add 2"))
	require.NoError(t, s.Execute(ctx, "From 0x3333333333333333333333333333333333333333 (Counter Add 3)"))
	assert.Equal(t, []string{
		"added 1 by Torrey",
		"added 2 by Torrey",
		"added 3 by 0x3333333333333333333333333333333333333333",
	}, descriptions(s.World()))

	err := s.Execute(ctx, "From Mallory (Counter Add 1)")
	assert.ErrorIs(t, err, ErrUnknownUser)

	err = s.Execute(ctx, "From Torrey")
	assert.Error(t, err)
}

func TestBlankAndCommentLinesDoNothing(t *testing.T) {
	s := newSession(t, Options{})
	require.NoError(t, s.Execute(context.Background(), ""))
	require.NoError(t, s.Execute(context.Background(), "-- just a note"))
	assert.Equal(t, 0, s.World().ActionCount())
}

func TestErrorsLeaveWorldUntouched(t *testing.T) {
	s := newSession(t, Options{})
	ctx := context.Background()
	require.NoError(t, s.Execute(ctx, "Counter Add 1"))
	before := s.World()

	var noMatch *command.NoMatchingCommandError
	var badArg *command.ArgResolutionError
	as := func(target any) func(t *testing.T, err error) {
		return func(t *testing.T, err error) { assert.ErrorAs(t, err, target) }
	}
	is := func(target error) func(t *testing.T, err error) {
		return func(t *testing.T, err error) { assert.ErrorIs(t, err, target) }
	}
	cases := map[string]func(t *testing.T, err error){
		"Counter Add":      as(&noMatch),
		"Counter Add lots": as(&badArg),
		"Counter Explode":  is(errBoom),
		"Nope Add 1":       is(command.ErrUnknownSubject),
		"(Counter Add 1)":  is(ErrMissingSubject),
		"Counter Add (1":   is(parser.ErrSyntax),
	}
	for line, check := range cases {
		t.Run(line, func(t *testing.T) {
			err := s.Execute(ctx, line)
			require.Error(t, err)
			var ee *EventError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, line, ee.Text)
			check(t, err)
			assert.Equal(t, before.Actions(), s.World().Actions())
		})
	}
}

func TestPerEventTimeout(t *testing.T) {
	s := newSession(t, Options{Timeout: 10 * time.Millisecond})
	err := s.Execute(context.Background(), "Counter Wait")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunScriptStopsAtFirstFatal(t *testing.T) {
	var seen []int
	s := newSession(t, Options{OnEvent: func(line parser.ScriptLine, err error) {
		seen = append(seen, line.Number)
	}})
	script := strings.Join([]string{
		"-- deposits",
		"Counter Add 1",
		"",
		"Counter Add 2",
		"Counter Explode",
		"Counter Add 3",
	}, "\n")

	n, err := s.RunScript(context.Background(), strings.NewReader(script))
	require.Error(t, err)
	assert.Equal(t, 2, n)

	var ee *EventError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 5, ee.Line)
	assert.Equal(t, "Counter Explode", ee.Text)
	assert.Contains(t, err.Error(), "line 5")
	assert.Equal(t, []int{2, 4, 5}, seen)
	assert.Equal(t, []string{"added 1 by Geoff", "added 2 by Geoff"}, descriptions(s.World()))
}

func TestRunScriptSyntaxErrorRunsNothing(t *testing.T) {
	s := newSession(t, Options{})
	n, err := s.RunScript(context.Background(), strings.NewReader("Counter Add 1\nCounter Add \"2\n"))
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, s.World().ActionCount())
}

func TestStorePersistsAndRebuilds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	store, err := audit.OpenJSONL(path)
	require.NoError(t, err)
	defer store.Close()

	s := newSession(t, Options{Store: store})
	_, err = s.RunScript(context.Background(), strings.NewReader("Counter Add 1\nCounter Add 2\nCounter Explode\n"))
	require.Error(t, err)

	rebuilt := newSession(t, Options{Store: store})
	require.NoError(t, rebuilt.RebuildState())
	assert.Equal(t, descriptions(s.World()), descriptions(rebuilt.World()))
	assert.Equal(t, s.World().Actions()[1].ID, rebuilt.World().Actions()[1].ID)
}
