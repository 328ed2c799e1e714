// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

const (
	MaxMemoSize = 256

	// MaxInstructionSize is the size of the largest raw ledger instruction.
	MaxInstructionSize = 9
)
