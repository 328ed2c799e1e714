// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/config"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/node"
)

var (
	configFile  string
	genesisFile string
	quiet       bool

	rootCmd = &cobra.Command{
		Use:        "vaultvm",
		Short:      "Vault ledger node",
		SuggestFor: []string{"vault"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.DisableAutoGenTag = true
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(
		runCmd,
		genesisCmd,
	)

	runCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"path to a JSON config file",
	)
	runCmd.PersistentFlags().StringVar(
		&genesisFile,
		"genesis",
		"",
		"path to a JSON genesis file (overrides the config)",
	)
	runCmd.PersistentFlags().BoolVar(
		&quiet,
		"quiet",
		false,
		"only write logs to the log directory",
	)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a node until interrupted",
	RunE: func(*cobra.Command, []string) error {
		var configBytes []byte
		if len(configFile) > 0 {
			b, err := os.ReadFile(configFile)
			if err != nil {
				return err
			}
			configBytes = b
		}
		cfg, err := config.New(configBytes)
		if err != nil {
			return err
		}
		if len(genesisFile) > 0 {
			cfg.GenesisPath = genesisFile
		}
		var genesisBytes []byte
		if len(cfg.GenesisPath) > 0 {
			genesisBytes, err = os.ReadFile(cfg.GenesisPath)
			if err != nil {
				return err
			}
		}

		log, err := newLogger(cfg, quiet)
		if err != nil {
			return err
		}
		defer log.Stop()
		log.Info("initialized config", zap.Any("contents", cfg))
		return run(cfg, genesisBytes, log)
	},
}

func run(cfg *config.Config, genesisBytes []byte, log logging.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if pcfg := cfg.GetContinuousProfilerConfig(); pcfg.Enabled {
		p := profiler.NewContinuous(pcfg.Dir, pcfg.Freq, pcfg.MaxNumFiles)
		defer p.Shutdown()
		go func() {
			if err := p.Dispatch(); err != nil {
				log.Warn("continuous profiler stopped", zap.Error(err))
			}
		}()
		log.Info("continuous profiler enabled", zap.String("dir", pcfg.Dir))
	}

	n, err := node.New(log, cfg, genesisBytes, metrics.NewPrefixGatherer())
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		return errors.Join(err, n.Close())
	}
	log.Info("node started", zap.String("address", cfg.HTTPAddress))
	err = n.Run(ctx, listener)
	log.Info("node stopped", zap.Error(err))
	return errors.Join(err, n.Close())
}

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Print the default genesis",
	RunE: func(*cobra.Command, []string) error {
		b, err := json.MarshalIndent(genesis.Default(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

func Execute() error {
	rootCmd.Version = consts.Version
	return rootCmd.Execute()
}
