// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/transfer"
)

var _ chain.Action = (*Deposit)(nil)

// Deposit moves [Amount] from the actor's token account [From] into the
// custody of the vault ([Authority], [Name]).
type Deposit struct {
	Authority codec.Address `json:"authority"`
	Name      string        `json:"name"`
	Amount    uint64        `json:"amount"`
	From      codec.Address `json:"from"`
}

func (*Deposit) GetTypeID() uint8 {
	return consts.DepositID
}

func (d *Deposit) StateKeys(r chain.Rules, actor codec.Address) (state.Keys, error) {
	a, err := findVault(r, d.Authority, d.Name)
	if err != nil {
		return nil, err
	}
	user, _, err := r.GetDeriver().FindUser(a.address, actor)
	if err != nil {
		return nil, err
	}
	return state.Keys{
		string(storage.VaultKey(a.address)):        state.Read | state.Write,
		string(storage.TokenAccountKey(a.custody)): state.Read | state.Write,
		string(storage.TokenAccountKey(d.From)):    state.Read | state.Write,
		string(storage.UserKey(user)):              state.All,
	}, nil
}

// Execute implements chain.Action.
// Outputs: user record address
func (d *Deposit) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([][]byte, error) {
	if d.Amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	a, err := findVault(r, d.Authority, d.Name)
	if err != nil {
		return nil, err
	}
	if d.From == a.custody {
		return nil, fmt.Errorf("%w: deposit from the vault custody", ledger.ErrOperationNotAllowed)
	}
	vault, err := loadVault(ctx, r, mu, a)
	if err != nil {
		return nil, err
	}
	from, exists, err := storage.GetTokenAccount(ctx, mu, d.From)
	if err != nil {
		return nil, err
	}
	if !exists || from.Owner != actor {
		return nil, fmt.Errorf("%w: %s is not owned by %s", transfer.ErrTokenAccountMismatch, d.From, actor)
	}
	if _, err := loadCustody(ctx, mu, a); err != nil {
		return nil, err
	}
	userAddr, userNonce, err := r.GetDeriver().FindUser(a.address, actor)
	if err != nil {
		return nil, err
	}
	user, exists, err := storage.GetUser(ctx, mu, userAddr)
	if err != nil {
		return nil, err
	}
	if !exists || user.VaultCreation != vault.Creation {
		// Records left behind by an earlier vault at this address are reset.
		user = ledger.NewUser(userNonce, actor, a.address, vault.Creation, timestamp)
	}

	// Every counter is checked before anything is written.
	if err := vault.Deposit(d.Amount); err != nil {
		return nil, err
	}
	if err := user.Deposit(d.Amount, timestamp); err != nil {
		return nil, err
	}

	if err := transfer.Tokens(ctx, mu, d.From, a.custody, d.Amount, transfer.Actor(actor)); err != nil {
		return nil, err
	}
	if err := storage.SetVault(ctx, mu, a.address, vault); err != nil {
		return nil, err
	}
	if err := storage.SetUser(ctx, mu, userAddr, user); err != nil {
		return nil, err
	}
	return [][]byte{userAddr[:]}, nil
}

func (d *Deposit) Size() int {
	return vaultRefSize(d.Name) + consts.Uint64Len + codec.AddressLen
}

func (d *Deposit) Marshal(p *codec.Packer) {
	marshalVaultRef(p, d.Authority, d.Name)
	p.PackUint64(d.Amount)
	p.PackAddress(d.From)
}

func UnmarshalDeposit(p *codec.Packer) (chain.Action, error) {
	var deposit Deposit
	unmarshalVaultRef(p, &deposit.Authority, &deposit.Name)
	deposit.Amount = p.UnpackUint64(false)
	p.UnpackAddress(&deposit.From)
	return &deposit, p.Err()
}
