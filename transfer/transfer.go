// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transfer moves value between accounts. Callers decide whether
// and how much to move; transfer only checks that the move is authorized
// and that balances allow it.
package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

var (
	ErrTokenAccountMismatch = errors.New("token account mismatch")
	ErrTransferFailed       = errors.New("transfer failed")
)

// Authority is the identity a transfer is authorized by. The transaction
// signer is an [Actor]. A program-derived account authorizes with a
// derive.Signer.
type Authority interface {
	Address() codec.Address
}

// Actor is the signer of the current transaction.
type Actor codec.Address

func (a Actor) Address() codec.Address {
	return codec.Address(a)
}

// Tokens moves [amount] from the token account [from] to the token account
// [to]. [authority] must own [from].
func Tokens(
	ctx context.Context,
	mu state.Mutable,
	from codec.Address,
	to codec.Address,
	amount uint64,
	authority Authority,
) error {
	src, exists, err := storage.GetTokenAccount(ctx, mu, from)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: source %s does not exist", ErrTransferFailed, from)
	}
	if src.Owner != authority.Address() {
		return fmt.Errorf("%w: %w: %s is not owned by %s", ErrTransferFailed, ErrTokenAccountMismatch, from, authority.Address())
	}
	dst, exists, err := storage.GetTokenAccount(ctx, mu, to)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: destination %s does not exist", ErrTransferFailed, to)
	}
	srcAmount, err := smath.Sub(src.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: balance %d < %d", ErrTransferFailed, src.Amount, amount)
	}
	if from == to {
		return nil
	}
	dstAmount, err := smath.Add64(dst.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: destination overflow %d + %d", ErrTransferFailed, dst.Amount, amount)
	}
	src.Amount = srcAmount
	dst.Amount = dstAmount
	if err := storage.SetTokenAccount(ctx, mu, from, src); err != nil {
		return err
	}
	return storage.SetTokenAccount(ctx, mu, to, dst)
}

// Native moves [amount] of the native balance from [from] to [to].
// [authority] must be [from].
func Native(
	ctx context.Context,
	mu state.Mutable,
	from codec.Address,
	to codec.Address,
	amount uint64,
	authority Authority,
) error {
	if authority.Address() != from {
		return fmt.Errorf("%w: %s cannot spend from %s", ErrTransferFailed, authority.Address(), from)
	}
	if amount == 0 {
		return nil
	}
	if from == to {
		bal, err := storage.GetBalance(ctx, mu, from)
		if err != nil {
			return err
		}
		if bal < amount {
			return fmt.Errorf("%w: balance %d < %d", ErrTransferFailed, bal, amount)
		}
		return nil
	}
	if _, err := storage.SubBalance(ctx, mu, from, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if _, err := storage.AddBalance(ctx, mu, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}
