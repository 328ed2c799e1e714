// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "errors"

var (
	ErrVaultNotEmpty           = errors.New("the vault is not empty")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrOverflow                = errors.New("overflow")
	ErrInvalidVaultName        = errors.New("invalid vault name")
	ErrDepositLimitExceeded    = errors.New("deposit limit exceeded")
	ErrWithdrawalLimitExceeded = errors.New("withdrawal limit exceeded")
	ErrInvariantViolated       = errors.New("ledger invariant violated")
	ErrInvalidRecord           = errors.New("invalid record")

	ErrVaultAlreadyExists  = errors.New("vault already exists")
	ErrVaultNotFound       = errors.New("vault not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrOperationNotAllowed = errors.New("operation not allowed")
)
