// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

var ErrInvalidHRP = errors.New("invalid hrp")

type CustomAllocation struct {
	Address string `json:"address"` // bech32 or hex address
	Balance uint64 `json:"balance"`
}

type Genesis struct {
	// Address prefix
	HRP string `json:"hrp"`

	// ProgramID seeds every derived address.
	ProgramID ids.ID `json:"programID"`

	// Tx Parameters
	ValidityWindow int64 `json:"validityWindow"` // ms

	// Vault Parameters
	VaultReserve            uint64 `json:"vaultReserve"`
	WithdrawalLimit         uint64 `json:"withdrawalLimit"`
	WithdrawalWindow        int64  `json:"withdrawalWindow"` // ms
	LedgerWithdrawOwnerOnly bool   `json:"ledgerWithdrawOwnerOnly"`

	// Allocations
	CustomAllocation []*CustomAllocation `json:"customAllocation"`
	TokenAllocation  []*CustomAllocation `json:"tokenAllocation"`
}

func Default() *Genesis {
	return &Genesis{
		HRP: consts.HRP,

		// Tx Parameters
		ValidityWindow: 60 * consts.MillisecondsPerSecond, // ms

		// Vault Parameters
		VaultReserve: 1_000,
	}
}

func New(b []byte) (*Genesis, error) {
	g := Default()
	if len(b) > 0 {
		if err := json.Unmarshal(b, g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal genesis %s: %w", string(b), err)
		}
	}
	return g, nil
}

// Load writes the allocations of [g] to [mu]. Token allocations are
// credited to the associated token account of each address.
func (g *Genesis) Load(ctx context.Context, mu state.Mutable) error {
	if consts.HRP != g.HRP {
		return ErrInvalidHRP
	}

	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		addr, err := codec.ParseAddress(g.HRP, alloc.Address)
		if err != nil {
			return fmt.Errorf("%w: %s", err, alloc.Address)
		}
		supply, err = smath.Add64(supply, alloc.Balance)
		if err != nil {
			return err
		}
		if _, err := storage.AddBalance(ctx, mu, addr, alloc.Balance); err != nil {
			return fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}

	d := derive.New(g.ProgramID)
	tokens := uint64(0)
	for _, alloc := range g.TokenAllocation {
		owner, err := codec.ParseAddress(g.HRP, alloc.Address)
		if err != nil {
			return fmt.Errorf("%w: %s", err, alloc.Address)
		}
		tokens, err = smath.Add64(tokens, alloc.Balance)
		if err != nil {
			return err
		}
		if err := MintTokens(ctx, d, mu, owner, alloc.Balance); err != nil {
			return fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}
	return nil
}

// MintTokens credits [amount] to the associated token account of [owner],
// opening it if needed.
func MintTokens(ctx context.Context, d *derive.Deriver, mu state.Mutable, owner codec.Address, amount uint64) error {
	addr, _, err := d.FindTokenAccount(owner)
	if err != nil {
		return err
	}
	account, exists, err := storage.GetTokenAccount(ctx, mu, addr)
	if err != nil {
		return err
	}
	if !exists {
		account = &storage.TokenAccount{Owner: owner}
	}
	total, err := smath.Add64(account.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: token account %s", storage.ErrInvalidTokenAccount, addr)
	}
	account.Amount = total
	return storage.SetTokenAccount(ctx, mu, addr, account)
}
