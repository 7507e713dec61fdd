package protocol

import (
	"context"
	"fmt"

	"github.com/suderio/scenario-engine/internal/command"
	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

func (p *Protocol) controllerArg() command.ArgSpec {
	return command.ArgSpec{Name: "controller", Implicit: true, Decode: command.EntityArg(SubjectVAIController, p.lookup)}
}

func (p *Protocol) vaiControllerCommands() []command.CommandSpec {
	return []command.CommandSpec{
		{
			Name: "Deploy",
			Doc: `Deploys a new VAIController.
E.g. "VAIController Deploy Standard"`,
			Args: []command.ArgSpec{{Name: "params", Variadic: true}},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				return p.deploy(ctx, w, SubjectVAIController, from, SubjectVAIController, args)
			},
		},
		{
			Name: "SetPendingAdmin",
			Doc: `Sets the pending admin of the controller.
E.g. "VAIController SetPendingAdmin Geoff"`,
			Args: []command.ArgSpec{p.controllerArg(), {Name: "newPendingAdmin", Decode: command.Address}},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				ctrl := getEntity(args, "controller")
				admin := getAddress(args, "newPendingAdmin")
				return p.call(ctx, w, SubjectVAIController,
					invoke.Call{Target: ctrl.Address, Method: "_setPendingAdmin", Args: []string{admin.Show()}},
					from,
					fmt.Sprintf("VAIController: %s sets pending admin to %s", w.DescribeUser(from), w.DescribeUser(admin.Show())),
				)
			},
		},
		{
			Name: "AcceptAdmin",
			Doc: `Accepts the pending admin role as the sender.
E.g. "From Geoff (VAIController AcceptAdmin)"`,
			Args: []command.ArgSpec{p.controllerArg()},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				ctrl := getEntity(args, "controller")
				return p.call(ctx, w, SubjectVAIController,
					invoke.Call{Target: ctrl.Address, Method: "_acceptAdmin"},
					from,
					fmt.Sprintf("VAIController: %s accepts admin", w.DescribeUser(from)),
				)
			},
		},
		{
			Name: "SetComptroller",
			Doc: `Points the controller at a comptroller.
E.g. "VAIController SetComptroller 0x0123456789012345678901234567890123456789"`,
			Args: []command.ArgSpec{p.controllerArg(), {Name: "comptroller", Decode: command.Address}},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				ctrl := getEntity(args, "controller")
				comptroller := getAddress(args, "comptroller")
				return p.call(ctx, w, SubjectVAIController,
					invoke.Call{Target: ctrl.Address, Method: "_setComptroller", Args: []string{comptroller.Show()}},
					from,
					fmt.Sprintf("VAIController: %s sets comptroller to %s", w.DescribeUser(from), comptroller.Show()),
				)
			},
		},
		{
			Name: "Mint",
			Doc: `Mints VAI as the sender.
E.g. "VAIController Mint 1.0e18"`,
			Args: []command.ArgSpec{p.controllerArg(), {Name: "amount", Decode: command.Number}},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				ctrl := getEntity(args, "controller")
				amount := getNumber(args, "amount")
				return p.call(ctx, w, SubjectVAIController,
					invoke.Call{Target: ctrl.Address, Method: "mintVAI", Args: []string{amount.Encode()}},
					from,
					fmt.Sprintf("VAIController: %s mints %s VAI", w.DescribeUser(from), amount.Show()),
				)
			},
		},
		{
			Name: "Repay",
			Doc: `Repays minted VAI as the sender. Without an amount the whole debt is repaid.
E.g. "VAIController Repay 1.0e18"`,
			Args: []command.ArgSpec{p.controllerArg(), {Name: "amount", Decode: command.Number, Nullable: true, Default: value.MaxUint256}},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				ctrl := getEntity(args, "controller")
				amount := getNumber(args, "amount")
				shown := amount.Show()
				if args.Absent("amount") {
					shown = "all"
				}
				return p.call(ctx, w, SubjectVAIController,
					invoke.Call{Target: ctrl.Address, Method: "repayVAI", Args: []string{amount.Encode()}},
					from,
					fmt.Sprintf("VAIController: %s repays %s of borrow", w.DescribeUser(from), shown),
				)
			},
		},
		{
			Name: "Liquidate",
			Doc: `Liquidates a VAI borrower, seizing the collateral vToken.
E.g. "VAIController Liquidate Geoff vBAT 1.0e18"`,
			Args: []command.ArgSpec{
				p.controllerArg(),
				{Name: "borrower", Decode: command.Address},
				{Name: "collateral", Decode: command.EntityArg(SubjectVToken, p.lookup)},
				{Name: "repayAmount", Decode: command.Number, Nullable: true, Default: value.MaxUint256},
			},
			Handler: func(ctx context.Context, w world.World, from string, args command.Args) (world.World, error) {
				ctrl := getEntity(args, "controller")
				borrower := getAddress(args, "borrower")
				collateral := getEntity(args, "collateral")
				amount := getNumber(args, "repayAmount")
				return p.call(ctx, w, SubjectVAIController,
					invoke.Call{Target: ctrl.Address, Method: "liquidateVAI", Args: []string{borrower.Show(), amount.Encode(), collateral.Address}},
					from,
					fmt.Sprintf("VAIController: %s liquidates %s of %s, seizing %s", w.DescribeUser(from), amount.Show(), w.DescribeUser(borrower.Show()), collateral.Name),
				)
			},
		},
	}
}
