// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "vault-cli" implements the vaultvm wallet.
package main

import (
	"os"

	"github.com/ava-labs/vaultvm/cmd/vault-cli/cmd"
	"github.com/ava-labs/vaultvm/utils"
)

func main() {
	if err := cmd.Execute(); err != nil {
		utils.Outf("{{red}}vault-cli failed:{{/}} %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
