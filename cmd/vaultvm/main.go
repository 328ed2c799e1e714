// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "vaultvm" runs a single vault ledger node.
package main

import (
	"fmt"
	"os"

	"github.com/ava-labs/vaultvm/cmd/vaultvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vaultvm failed: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
