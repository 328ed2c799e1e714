// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

var vaultCmd = &cobra.Command{
	Use: "vault",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

// promptVault reads the authority and name that identify a vault.
func promptVault() (codec.Address, string, error) {
	authority, err := prompt.Address("authority", handler.HRP())
	if err != nil {
		return codec.EmptyAddress, "", err
	}
	name, err := prompt.VaultName("name")
	if err != nil {
		return codec.EmptyAddress, "", err
	}
	return authority, name, nil
}

var createVaultCmd = &cobra.Command{
	Use: "create",
	RunE: func(*cobra.Command, []string) error {
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		name, err := prompt.VaultName("name")
		if err != nil {
			return err
		}
		limit, err := prompt.Uint64("deposit limit (0 for none)", consts.MaxUint64)
		if err != nil {
			return err
		}
		cont, err := prompt.Continue()
		if !cont || err != nil {
			return err
		}
		_, _, err = handler.CreateVault(context.Background(), a, name, limit)
		return err
	},
}

var depositCmd = &cobra.Command{
	Use: "deposit",
	RunE: func(*cobra.Command, []string) error {
		ctx := context.Background()
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		account, err := a.Client.TokenAccount(ctx, a.Address)
		if err != nil {
			return err
		}
		authority, name, err := promptVault()
		if err != nil {
			return err
		}
		amount, err := prompt.Uint64("amount", account.Amount)
		if err != nil {
			return err
		}
		cont, err := prompt.Continue()
		if !cont || err != nil {
			return err
		}
		return handler.Deposit(ctx, a, authority, name, amount)
	},
}

var withdrawCmd = &cobra.Command{
	Use: "withdraw",
	RunE: func(*cobra.Command, []string) error {
		ctx := context.Background()
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		authority, name, err := promptVault()
		if err != nil {
			return err
		}
		user, err := handler.ShowUser(ctx, a.Client, authority, name, a.Key.Address)
		if err != nil {
			return err
		}
		amount, err := prompt.Uint64("amount", user.Available)
		if err != nil {
			return err
		}
		cont, err := prompt.Continue()
		if !cont || err != nil {
			return err
		}
		return handler.Withdraw(ctx, a, authority, name, amount)
	},
}

var closeVaultCmd = &cobra.Command{
	Use: "close",
	RunE: func(*cobra.Command, []string) error {
		a, err := handler.DefaultActor()
		if err != nil {
			return err
		}
		name, err := prompt.VaultName("name")
		if err != nil {
			return err
		}
		cont, err := prompt.Continue()
		if !cont || err != nil {
			return err
		}
		_, err = handler.CloseVault(context.Background(), a, name)
		return err
	},
}

var showVaultCmd = &cobra.Command{
	Use: "show",
	RunE: func(*cobra.Command, []string) error {
		c, err := handler.Client(true)
		if err != nil {
			return err
		}
		authority, name, err := promptVault()
		if err != nil {
			return err
		}
		_, err = handler.ShowVault(context.Background(), c, authority, name)
		return err
	},
}

var showUserCmd = &cobra.Command{
	Use: "user",
	RunE: func(*cobra.Command, []string) error {
		c, err := handler.Client(true)
		if err != nil {
			return err
		}
		authority, name, err := promptVault()
		if err != nil {
			return err
		}
		depositor, err := prompt.Address("depositor", handler.HRP())
		if err != nil {
			return err
		}
		_, err = handler.ShowUser(context.Background(), c, authority, name, depositor)
		return err
	},
}
