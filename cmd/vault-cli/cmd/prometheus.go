// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "github.com/spf13/cobra"

var prometheusCmd = &cobra.Command{
	Use: "prometheus",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var generatePrometheusCmd = &cobra.Command{
	Use: "generate",
	RunE: func(*cobra.Command, []string) error {
		_, err := handler.GeneratePrometheus(prometheusBaseURI, prometheusFile)
		return err
	},
}
