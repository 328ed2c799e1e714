// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/codec"
)

var ledgerCmd = &cobra.Command{
	Use: "ledger",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var initLedgerCmd = &cobra.Command{
	Use: "init",
	RunE: func(*cobra.Command, []string) error {
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		_, err = handler.InitLedger(context.Background(), a)
		return err
	},
}

var ledgerDepositCmd = &cobra.Command{
	Use: "deposit",
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
		ledgerAddr, err := prompt.Address("ledger", handler.HRP())
		if err != nil {
			return err
		}
		amount, err := prompt.Amount("amount", balance, nil)
		if err != nil {
			return err
		}
		cont, err := prompt.Continue()
		if !cont || err != nil {
			return err
		}
		return handler.LedgerDeposit(ctx, a, ledgerAddr, amount)
	},
}

var ledgerWithdrawCmd = &cobra.Command{
	Use: "withdraw",
	RunE: func(*cobra.Command, []string) error {
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		ledgerAddr, err := prompt.Address("ledger", handler.HRP())
		if err != nil {
			return err
		}
		recipient, err := prompt.Address("recipient", handler.HRP())
		if err != nil {
			return err
		}
		cont, err := prompt.Continue()
		if !cont || err != nil {
			return err
		}
		return handler.LedgerWithdraw(context.Background(), a, ledgerAddr, recipient)
	},
}

var showLedgerCmd = &cobra.Command{
	Use: "show",
	RunE: func(*cobra.Command, []string) error {
		c, err := handler.Client(true)
		if err != nil {
			return err
		}
		payer, err := prompt.Address("payer", handler.HRP())
		if err != nil {
			return err
		}
		_, err = handler.ShowLedger(context.Background(), c, codec.MustAddressBech32(handler.HRP(), payer))
		return err
	},
}
