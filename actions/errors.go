// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrOutputValueZero        = errors.New("value is zero")
	ErrOutputMemoTooLarge     = errors.New("memo is too large")
	ErrOutputInstructionEmpty = errors.New("instruction is empty")
)
