// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/consts"
)

var chainCmd = &cobra.Command{
	Use: "chain",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var importChainCmd = &cobra.Command{
	Use: "import",
	RunE: func(*cobra.Command, []string) error {
		uri, err := prompt.String("uri", 1, consts.MaxInt)
		if err != nil {
			return err
		}
		_, err = handler.ImportChain(context.Background(), uri)
		return err
	},
}

var importSettingsCmd = &cobra.Command{
	Use: "import-settings [path]",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) != 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(_ *cobra.Command, args []string) error {
		return handler.ImportSettings(context.Background(), args[0])
	},
}

var setChainCmd = &cobra.Command{
	Use: "set",
	RunE: func(*cobra.Command, []string) error {
		return handler.SetDefaultChain()
	},
}

var chainInfoCmd = &cobra.Command{
	Use: "info",
	RunE: func(*cobra.Command, []string) error {
		return handler.PrintChainInfo(context.Background())
	},
}

var watchChainCmd = &cobra.Command{
	Use: "watch",
	RunE: func(*cobra.Command, []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return handler.WatchChain(ctx, watchInterval)
	},
}
