// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package native is the aggregate ledger program. It keeps a single
// running total per ledger account and moves native balance directly.
package native

import (
	"context"
	"fmt"

	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/instruction"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/transfer"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// WithdrawDivisor sets the share of the total released by a withdrawal.
const WithdrawDivisor = 10

// Process executes [i] against the ledger account [ledgerAddr]. [recipient]
// is only used by [instruction.Withdraw].
func Process(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	actor codec.Address,
	ledgerAddr codec.Address,
	recipient codec.Address,
	i instruction.Instruction,
) ([][]byte, error) {
	switch i := i.(type) {
	case instruction.Initialize:
		return nil, initialize(ctx, r, mu, actor, ledgerAddr)
	case instruction.Deposit:
		return nil, deposit(ctx, mu, actor, ledgerAddr, i.Amount)
	case instruction.Withdraw:
		amount, err := withdraw(ctx, r, mu, actor, ledgerAddr, recipient)
		if err != nil {
			return nil, err
		}
		p := codec.NewWriter(consts.Uint64Len, consts.Uint64Len)
		p.PackUint64(amount)
		return [][]byte{p.Bytes()}, nil
	default:
		return nil, fmt.Errorf("%w: %T", instruction.ErrUnknownTag, i)
	}
}

// initialize creates the ledger of [actor] with a zero total. The account
// is funded with the vault reserve.
func initialize(ctx context.Context, r chain.Rules, mu state.Mutable, actor codec.Address, ledgerAddr codec.Address) error {
	expected, _, err := r.GetDeriver().FindLedger(actor)
	if err != nil {
		return err
	}
	if expected != ledgerAddr {
		return fmt.Errorf("%w: ledger of %s is %s, found %s", derive.ErrAddressMismatch, actor, expected, ledgerAddr)
	}
	if _, exists, err := storage.GetLedger(ctx, mu, ledgerAddr); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: ledger %s is initialized", ledger.ErrVaultAlreadyExists, ledgerAddr)
	}
	if err := transfer.Native(ctx, mu, actor, ledgerAddr, r.GetVaultReserve(), transfer.Actor(actor)); err != nil {
		return err
	}
	return StoreAccount(ctx, mu, ledgerAddr, &Account{})
}

// deposit moves [amount] from [actor] into the ledger account.
func deposit(ctx context.Context, mu state.Mutable, actor codec.Address, ledgerAddr codec.Address, amount uint64) error {
	if amount == 0 {
		return ledger.ErrInvalidAmount
	}
	account, err := load(ctx, mu, ledgerAddr)
	if err != nil {
		return err
	}
	total, err := smath.Add64(account.TotalDeposited(), amount)
	if err != nil {
		return fmt.Errorf("%w: total %d + %d", ledger.ErrOverflow, account.TotalDeposited(), amount)
	}
	if err := transfer.Native(ctx, mu, actor, ledgerAddr, amount, transfer.Actor(actor)); err != nil {
		return err
	}
	account.SetTotalDeposited(total)
	return StoreAccount(ctx, mu, ledgerAddr, account)
}

// withdraw releases a [WithdrawDivisor]th of the total to [recipient].
// The program owns the ledger account, so the balance is moved directly.
func withdraw(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	actor codec.Address,
	ledgerAddr codec.Address,
	recipient codec.Address,
) (uint64, error) {
	if r.GetLedgerWithdrawOwnerOnly() {
		owned, _, err := r.GetDeriver().FindLedger(actor)
		if err != nil {
			return 0, err
		}
		if owned != ledgerAddr {
			return 0, fmt.Errorf("%w: %s did not initialize %s", auth.ErrUnauthorized, actor, ledgerAddr)
		}
	}
	switch recipient {
	case codec.EmptyAddress:
		return 0, fmt.Errorf("%w: withdraw without a recipient", ledger.ErrOperationNotAllowed)
	case ledgerAddr:
		return 0, fmt.Errorf("%w: withdraw to the ledger itself", ledger.ErrOperationNotAllowed)
	}
	account, err := load(ctx, mu, ledgerAddr)
	if err != nil {
		return 0, err
	}
	total := account.TotalDeposited()
	amount := total / WithdrawDivisor
	if amount == 0 {
		return 0, fmt.Errorf("%w: total %d", ledger.ErrInsufficientFunds, total)
	}
	if _, err := storage.SubBalance(ctx, mu, ledgerAddr, amount); err != nil {
		return 0, fmt.Errorf("%w: %w", transfer.ErrTransferFailed, err)
	}
	if _, err := storage.AddBalance(ctx, mu, recipient, amount); err != nil {
		return 0, fmt.Errorf("%w: %w", transfer.ErrTransferFailed, err)
	}
	account.SetTotalDeposited(total - amount)
	return amount, StoreAccount(ctx, mu, ledgerAddr, account)
}

func load(ctx context.Context, im state.Immutable, ledgerAddr codec.Address) (*Account, error) {
	account, exists, err := LoadAccount(ctx, im, ledgerAddr)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: ledger %s is not initialized", ledger.ErrVaultNotFound, ledgerAddr)
	}
	return account, nil
}
