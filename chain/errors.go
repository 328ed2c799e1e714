// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	ErrMisalignedTime    = errors.New("misaligned time")
	ErrTimestampTooLate  = errors.New("timestamp too late")
	ErrTimestampTooEarly = errors.New("timestamp too early")
	ErrInvalidChainID    = errors.New("invalid chain id")
	ErrInvalidKeyValue   = errors.New("invalid key or value")
	ErrInvalidObject     = errors.New("invalid object")
	ErrAuthFailed        = errors.New("auth failed")
	ErrDuplicateTx       = errors.New("duplicate transaction")
	ErrTooManyTxs        = errors.New("too many transactions")
)
