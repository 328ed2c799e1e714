// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/cli/prompt"
)

var actionCmd = &cobra.Command{
	Use: "action",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var fundCmd = &cobra.Command{
	Use: "fund",
	RunE: func(*cobra.Command, []string) error {
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		return handler.Fund(context.Background(), a)
	},
}

var transferCmd = &cobra.Command{
	Use: "transfer",
	RunE: func(*cobra.Command, []string) error {
		ctx := context.Background()
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		balance, err := a.Client.Balance(ctx, a.Address)
		if err != nil {
			return err
		}

		recipient, err := prompt.Address("recipient", handler.HRP())
		if err != nil {
			return err
		}
		amount, err := prompt.Amount("amount", balance, nil)
		if err != nil {
			return err
		}
		memo, err := prompt.String("memo", 0, actions.MaxMemoSize)
		if err != nil {
			return err
		}
		cont, err := prompt.Continue()
		if !cont || err != nil {
			return err
		}
		return handler.Transfer(ctx, a, recipient, amount, []byte(memo))
	},
}
