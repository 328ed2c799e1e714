// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/cli"
	"github.com/ava-labs/vaultvm/consts"
)

const databaseFolder = ".vault-cli"

var (
	handler *cli.Handler

	dbPath            string
	checkAllChains    bool
	prometheusFile    string
	prometheusBaseURI string
	watchInterval     time.Duration

	rootCmd = &cobra.Command{
		Use:        "vault-cli",
		Short:      "VaultVM CLI",
		SuggestFor: []string{"vault-cli", "vaultcli"},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			h, err := cli.New(dbPath, consts.HRP)
			if err != nil {
				return err
			}
			handler = h
			return nil
		},
	}
)

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	cobra.EnablePrefixMatching = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.DisableAutoGenTag = true
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(
		keyCmd,
		chainCmd,
		actionCmd,
		vaultCmd,
		ledgerCmd,
		prometheusCmd,
	)
	rootCmd.PersistentFlags().StringVar(
		&dbPath,
		"database",
		filepath.Join(home, databaseFolder),
		"path to the wallet database",
	)

	// key
	keyCmd.AddCommand(
		genKeyCmd,
		importKeyCmd,
		exportKeyCmd,
		setKeyCmd,
		balanceKeyCmd,
	)
	balanceKeyCmd.PersistentFlags().BoolVar(
		&checkAllChains,
		"check-all-chains",
		false,
		"check every uri of the default chain",
	)

	// chain
	chainCmd.AddCommand(
		importChainCmd,
		importSettingsCmd,
		setChainCmd,
		chainInfoCmd,
		watchChainCmd,
	)
	watchChainCmd.PersistentFlags().DurationVar(
		&watchInterval,
		"interval",
		time.Second,
		"polling interval",
	)

	// action
	actionCmd.AddCommand(
		fundCmd,
		transferCmd,
	)

	// vault
	vaultCmd.AddCommand(
		createVaultCmd,
		depositCmd,
		withdrawCmd,
		closeVaultCmd,
		showVaultCmd,
		showUserCmd,
	)

	// ledger
	ledgerCmd.AddCommand(
		initLedgerCmd,
		ledgerDepositCmd,
		ledgerWithdrawCmd,
		showLedgerCmd,
	)

	// prometheus
	prometheusCmd.AddCommand(
		generatePrometheusCmd,
	)
	generatePrometheusCmd.PersistentFlags().StringVar(
		&prometheusFile,
		"prometheus-file",
		"/tmp/prometheus.yaml",
		"prometheus file location",
	)
	generatePrometheusCmd.PersistentFlags().StringVar(
		&prometheusBaseURI,
		"prometheus-base-uri",
		"http://localhost:9090",
		"prometheus server location",
	)
}

func Execute() error {
	rootCmd.Version = consts.Version
	err := rootCmd.Execute()
	if handler != nil {
		return errors.Join(err, handler.CloseDatabase())
	}
	return err
}
