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

var _ chain.Action = (*Withdraw)(nil)

// Withdraw returns [Amount] of the actor's deposits in the vault
// ([Authority], [Name]) to the actor's token account [To].
type Withdraw struct {
	Authority codec.Address `json:"authority"`
	Name      string        `json:"name"`
	Amount    uint64        `json:"amount"`
	To        codec.Address `json:"to"`
}

func (*Withdraw) GetTypeID() uint8 {
	return consts.WithdrawID
}

func (w *Withdraw) StateKeys(r chain.Rules, actor codec.Address) (state.Keys, error) {
	a, err := findVault(r, w.Authority, w.Name)
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
		string(storage.TokenAccountKey(w.To)):      state.All,
		string(storage.UserKey(user)):              state.Read | state.Write,
	}, nil
}

func (w *Withdraw) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([][]byte, error) {
	if w.Amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	a, err := findVault(r, w.Authority, w.Name)
	if err != nil {
		return nil, err
	}
	if w.To == a.custody {
		return nil, fmt.Errorf("%w: withdraw to the vault custody", ledger.ErrOperationNotAllowed)
	}
	vault, err := loadVault(ctx, r, mu, a)
	if err != nil {
		return nil, err
	}
	userAddr, _, err := r.GetDeriver().FindUser(a.address, actor)
	if err != nil {
		return nil, err
	}
	user, exists, err := storage.GetUser(ctx, mu, userAddr)
	if err != nil {
		return nil, err
	}
	if !exists || user.VaultCreation != vault.Creation {
		return nil, fmt.Errorf("%w: %s in vault %s", ledger.ErrUserNotFound, actor, a.address)
	}
	if user.Authority != actor || user.Vault != a.address {
		return nil, fmt.Errorf("%w: user %s", ledger.ErrInvariantViolated, userAddr)
	}
	to, exists, err := storage.GetTokenAccount(ctx, mu, w.To)
	if err != nil {
		return nil, err
	}
	if !exists {
		// The associated token account of the actor is opened on demand.
		associated, _, err := r.GetDeriver().FindTokenAccount(actor)
		if err != nil {
			return nil, err
		}
		if w.To != associated {
			return nil, fmt.Errorf("%w: %s does not exist", transfer.ErrTokenAccountMismatch, w.To)
		}
		to = &storage.TokenAccount{Owner: actor}
	}
	if to.Owner != actor {
		return nil, fmt.Errorf("%w: %s is not owned by %s", transfer.ErrTokenAccountMismatch, w.To, actor)
	}
	if _, err := loadCustody(ctx, mu, a); err != nil {
		return nil, err
	}

	if err := user.Withdraw(w.Amount, timestamp, r.GetWithdrawalLimit()); err != nil {
		return nil, err
	}
	if err := vault.Withdraw(w.Amount); err != nil {
		return nil, err
	}

	signer, err := a.signer(r, vault)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := storage.SetTokenAccount(ctx, mu, w.To, to); err != nil {
			return nil, err
		}
	}
	if err := transfer.Tokens(ctx, mu, a.custody, w.To, w.Amount, signer); err != nil {
		return nil, err
	}
	if err := storage.SetVault(ctx, mu, a.address, vault); err != nil {
		return nil, err
	}
	if err := storage.SetUser(ctx, mu, userAddr, user); err != nil {
		return nil, err
	}
	return nil, nil
}

func (w *Withdraw) Size() int {
	return vaultRefSize(w.Name) + consts.Uint64Len + codec.AddressLen
}

func (w *Withdraw) Marshal(p *codec.Packer) {
	marshalVaultRef(p, w.Authority, w.Name)
	p.PackUint64(w.Amount)
	p.PackAddress(w.To)
}

func UnmarshalWithdraw(p *codec.Packer) (chain.Action, error) {
	var withdraw Withdraw
	unmarshalVaultRef(p, &withdraw.Authority, &withdraw.Name)
	withdraw.Amount = p.UnpackUint64(false)
	p.UnpackAddress(&withdraw.To)
	return &withdraw, p.Err()
}
