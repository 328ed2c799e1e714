// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/transfer"
)

var _ chain.Action = (*CloseVault)(nil)

// CloseVault removes an empty vault and refunds its native balance to the
// authority.
type CloseVault struct {
	Authority codec.Address `json:"authority"`
	Name      string        `json:"name"`
}

func (*CloseVault) GetTypeID() uint8 {
	return consts.CloseVaultID
}

func (c *CloseVault) StateKeys(r chain.Rules, _ codec.Address) (state.Keys, error) {
	a, err := findVault(r, c.Authority, c.Name)
	if err != nil {
		return nil, err
	}
	return state.Keys{
		string(storage.VaultKey(a.address)):        state.Read | state.Write,
		string(storage.TokenAccountKey(a.custody)): state.Read | state.Write,
		string(storage.BalanceKey(a.address)):      state.Read | state.Write,
		string(storage.BalanceKey(c.Authority)):    state.All,
	}, nil
}

// Execute implements chain.Action.
// Outputs: refunded amount
func (c *CloseVault) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([][]byte, error) {
	a, err := findVault(r, c.Authority, c.Name)
	if err != nil {
		return nil, err
	}
	vault, err := loadVault(ctx, r, mu, a)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAuthority(actor, vault.Authority); err != nil {
		return nil, err
	}
	if err := vault.Closable(); err != nil {
		return nil, err
	}
	custody, err := loadCustody(ctx, mu, a)
	if err != nil {
		return nil, err
	}
	if custody.Amount != 0 {
		return nil, fmt.Errorf("%w: custody holds %d", ledger.ErrVaultNotEmpty, custody.Amount)
	}

	refund, err := storage.GetBalance(ctx, mu, a.address)
	if err != nil {
		return nil, err
	}
	signer, err := a.signer(r, vault)
	if err != nil {
		return nil, err
	}
	if err := transfer.Native(ctx, mu, a.address, vault.Authority, refund, signer); err != nil {
		return nil, err
	}
	if err := storage.RemoveTokenAccount(ctx, mu, a.custody); err != nil {
		return nil, err
	}
	if err := storage.RemoveVault(ctx, mu, a.address); err != nil {
		return nil, err
	}
	p := codec.NewWriter(consts.Uint64Len, consts.Uint64Len)
	p.PackUint64(refund)
	return [][]byte{p.Bytes()}, nil
}

func (c *CloseVault) Size() int {
	return vaultRefSize(c.Name)
}

func (c *CloseVault) Marshal(p *codec.Packer) {
	marshalVaultRef(p, c.Authority, c.Name)
}

func UnmarshalCloseVault(p *codec.Packer) (chain.Action, error) {
	var closeVault CloseVault
	unmarshalVaultRef(p, &closeVault.Authority, &closeVault.Name)
	return &closeVault, p.Err()
}
