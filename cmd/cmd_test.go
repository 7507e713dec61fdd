package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/world"
)

func TestCompletions(t *testing.T) {
	w := world.New(world.Config{Accounts: map[string]string{"Geoff": "0x1111111111111111111111111111111111111111"}}).
		WithEntity(world.Entity{Name: "vZRX", Kind: "VToken", Address: "0x01"})
	subjects := []string{"Assert", "VAIController", "VToken"}
	commands := func(subject string) []string {
		if subject == "VAIController" {
			return []string{"Deploy", "Mint", "Repay"}
		}
		return nil
	}

	assert.Equal(t, []string{"VAIController", "VToken"}, completions(subjects, commands, w, "V"))
	assert.Equal(t, []string{"From "}, completions(subjects, commands, w, "Fr"))
	assert.Equal(t, []string{"From Geoff ("}, completions(subjects, commands, w, "From G"))
	assert.Equal(t, []string{"VAIController Mint"}, completions(subjects, commands, w, "VAIController M"))
	assert.Equal(t, []string{"VAIController Deploy", "VAIController Mint", "VAIController Repay", "VAIController vZRX"},
		completions(subjects, commands, w, "VAIController "))
	assert.Empty(t, completions(subjects, commands, w, ""))
}

func TestDescribeAction(t *testing.T) {
	ok := world.Action{Description: "mint", Invocation: world.Invocation{Success: true}}
	rejected := world.Action{Description: "mint", Invocation: world.Invocation{Error: &reporter.DomainError{Subject: "VAIController", Error: "REJECTION"}}}
	failed := world.Action{Description: "mint", Invocation: world.Invocation{TransportErr: errors.New("down")}}

	assert.Equal(t, "mint", describeAction(ok))
	assert.Equal(t, "mint -> VAIController: REJECTION", describeAction(rejected))
	assert.Equal(t, "mint -> failed", describeAction(failed))
}

func TestRenderSummary(t *testing.T) {
	out := renderSummary([]scriptResult{
		{Script: "a.scen", RunID: "r1", Events: 3, Total: 3, Actions: 2},
		{Script: "b.scen", Events: 1, Total: 4, Actions: 1, Rejected: 1, Err: errors.New("line 2: boom")},
	})
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "a.scen")
	assert.Contains(t, out, "line 2: boom")
	assert.Equal(t, 1, countFailed([]scriptResult{{}, {Err: errors.New("x")}}))
}
