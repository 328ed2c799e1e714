// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInvalidBalance      = errors.New("invalid balance")
	ErrInvalidTokenAccount = errors.New("invalid token account")
	ErrInvalidLedger       = errors.New("invalid ledger account")
	ErrInvalidMetadata     = errors.New("invalid metadata")
)
