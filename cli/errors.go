// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import "errors"

var (
	ErrDuplicate       = errors.New("duplicate")
	ErrNoChains        = errors.New("no available chains")
	ErrNoKeys          = errors.New("no available keys")
	ErrKeyNotFound     = errors.New("key not found")
	ErrChainMismatch   = errors.New("chain mismatch")
	ErrInvalidSettings = errors.New("invalid settings")
)
