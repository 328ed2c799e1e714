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

var _ chain.Action = (*CreateVault)(nil)

// CreateVault opens a vault named [Name] owned by the actor.
type CreateVault struct {
	Name string `json:"name"`

	// DepositLimit caps the amount the vault may hold. Zero means no cap.
	DepositLimit uint64 `json:"depositLimit"`
}

func (*CreateVault) GetTypeID() uint8 {
	return consts.CreateVaultID
}

func (c *CreateVault) StateKeys(r chain.Rules, actor codec.Address) (state.Keys, error) {
	a, err := findVault(r, actor, c.Name)
	if err != nil {
		return nil, err
	}
	return state.Keys{
		string(storage.VaultKey(a.address)):        state.All,
		string(storage.TokenAccountKey(a.custody)): state.All,
		string(storage.BalanceKey(actor)):          state.Read | state.Write,
		string(storage.BalanceKey(a.address)):      state.All,
	}, nil
}

// Execute implements chain.Action.
// Outputs: vault address and custody token account address
func (c *CreateVault) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	txID ids.ID,
) ([][]byte, error) {
	a, err := findVault(r, actor, c.Name)
	if err != nil {
		return nil, err
	}
	if _, exists, err := storage.GetVault(ctx, mu, a.address); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: %s", ledger.ErrVaultAlreadyExists, a.address)
	}
	if _, exists, err := storage.GetTokenAccount(ctx, mu, a.custody); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: custody %s is in use", ledger.ErrVaultAlreadyExists, a.custody)
	}

	vault := &ledger.Vault{
		Nonce:        a.nonce,
		Authority:    actor,
		Name:         c.Name,
		CreatedAt:    timestamp,
		Creation:     txID,
		Reserve:      r.GetVaultReserve(),
		DepositLimit: c.DepositLimit,
	}
	if err := transfer.Native(ctx, mu, actor, a.address, vault.Reserve, transfer.Actor(actor)); err != nil {
		return nil, err
	}
	if err := storage.SetVault(ctx, mu, a.address, vault); err != nil {
		return nil, err
	}
	if err := storage.SetTokenAccount(ctx, mu, a.custody, &storage.TokenAccount{Owner: a.address}); err != nil {
		return nil, err
	}
	return [][]byte{a.address[:], a.custody[:]}, nil
}

func (c *CreateVault) Size() int {
	return codec.StringLen(c.Name) + consts.Uint64Len
}

func (c *CreateVault) Marshal(p *codec.Packer) {
	p.PackString(c.Name)
	p.PackUint64(c.DepositLimit)
}

func UnmarshalCreateVault(p *codec.Packer) (chain.Action, error) {
	var create CreateVault
	create.Name = p.UnpackString(true)
	create.DepositLimit = p.UnpackUint64(false)
	return &create, p.Err()
}
