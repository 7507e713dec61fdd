package protocol

import (
	"context"
	"fmt"

	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/world"
)

// vTokenAction builds a "<vToken> Verb amount" command.
func (p *Protocol) vTokenAction(verb, method, doc, past string) command.CommandSpec {
	return command.CommandSpec{
		Name:    verb,
		NamePos: 1,
		Doc:     doc,
		Args: []command.ArgSpec{
			{Name: "vToken", Decode: command.EntityArg(SubjectVToken, p.lookup)},
			{Name: "amount", Decode: command.Number},
		},
		Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
			tok := getEntity(args, "vToken")
			amount := getNumber(args, "amount")
			return p.call(ctx, w, SubjectVToken,
				invoke.Call{Target: tok.Address, Method: method, Args: []string{amount.Encode()}},
				from,
				fmt.Sprintf("%s: %s %s %s", tok.Name, w.DescribeUser(from), past, amount.Show()),
			)
		},
	}
}

func (p *Protocol) vTokenCommands() []command.CommandSpec {
	return []command.CommandSpec{
		{
			Name: "Deploy",
			Doc: `Deploys a new vToken under the given name.
E.g. "VToken Deploy vZRX Standard"`,
			Args: []command.ArgSpec{{Name: "name", Decode: command.String}, {Name: "params", Variadic: true}},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				return p.deploy(ctx, w, SubjectVToken, from, getString(args, "name"), args)
			},
		},
		p.vTokenAction("Mint", "mint", `Supplies underlying and mints vTokens as the sender.
E.g. "VToken vZRX Mint 10e18"`, "mints"),
		p.vTokenAction("Redeem", "redeem", `Redeems vTokens for underlying as the sender.
E.g. "VToken vZRX Redeem 5e8"`, "redeems"),
		p.vTokenAction("Borrow", "borrow", `Borrows underlying as the sender.
E.g. "VToken vZRX Borrow 1e18"`, "borrows"),
	}
}
