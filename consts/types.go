// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

// Name is the name of the VM and the JSON-RPC service.
const (
	Name    = "vaultvm"
	Version = "v0.1.0"
)

// HRP is the human readable part of bech32 addresses.
const HRP = "vault"

// Action TypeIDs
const (
	CreateVaultID uint8 = 0
	DepositID     uint8 = 1
	WithdrawID    uint8 = 2
	CloseVaultID  uint8 = 3
	TransferID    uint8 = 4
	InvokeID      uint8 = 5
)
