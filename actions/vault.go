// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/transfer"
)

// vaultAccounts are the accounts derived for the vault ([authority], [name]).
type vaultAccounts struct {
	authority codec.Address
	name      string

	address codec.Address
	nonce   uint8
	custody codec.Address
}

func findVault(r chain.Rules, authority codec.Address, name string) (*vaultAccounts, error) {
	if err := ledger.ValidateName(name); err != nil {
		return nil, err
	}
	d := r.GetDeriver()
	addr, nonce, err := d.FindVault(authority, name)
	if err != nil {
		return nil, err
	}
	custody, _, err := d.FindCustody(addr)
	if err != nil {
		return nil, err
	}
	return &vaultAccounts{
		authority: authority,
		name:      name,
		address:   addr,
		nonce:     nonce,
		custody:   custody,
	}, nil
}

// signer returns the capability to move funds out of the vault. The
// address is re-derived from the inputs stored in [vault].
func (a *vaultAccounts) signer(r chain.Rules, vault *ledger.Vault) (derive.Signer, error) {
	s, err := r.GetDeriver().SignVault(vault.Nonce, vault.Authority, vault.Name)
	if err != nil {
		return derive.Signer{}, err
	}
	if s.Address() != a.address {
		return derive.Signer{}, fmt.Errorf("%w: vault signer %s", derive.ErrAddressMismatch, s.Address())
	}
	return s, nil
}

// loadVault returns the vault at [a], verifying that the stored record was
// derived from the same inputs.
func loadVault(ctx context.Context, r chain.Rules, im state.Immutable, a *vaultAccounts) (*ledger.Vault, error) {
	vault, exists, err := storage.GetVault(ctx, im, a.address)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ledger.ErrVaultNotFound, a.address)
	}
	if vault.Authority != a.authority || vault.Name != a.name || vault.Nonce != a.nonce {
		return nil, fmt.Errorf("%w: vault %s has authority %s and name %q", derive.ErrAddressMismatch, a.address, vault.Authority, vault.Name)
	}
	if err := r.GetDeriver().Verify(a.address, vault.Nonce, derive.VaultNamespace, vault.Authority[:], []byte(vault.Name)); err != nil {
		return nil, err
	}
	return vault, nil
}

// loadCustody returns the custody account of the vault at [a].
func loadCustody(ctx context.Context, im state.Immutable, a *vaultAccounts) (*storage.TokenAccount, error) {
	custody, exists, err := storage.GetTokenAccount(ctx, im, a.custody)
	if err != nil {
		return nil, err
	}
	if !exists || custody.Owner != a.address {
		return nil, fmt.Errorf("%w: custody %s is not owned by vault %s", transfer.ErrTokenAccountMismatch, a.custody, a.address)
	}
	return custody, nil
}

func marshalVaultRef(p *codec.Packer, authority codec.Address, name string) {
	p.PackAddress(authority)
	p.PackString(name)
}

func unmarshalVaultRef(p *codec.Packer, authority *codec.Address, name *string) {
	p.UnpackAddress(authority)
	*name = p.UnpackString(true)
}

func vaultRefSize(name string) int {
	return codec.AddressLen + codec.StringLen(name)
}
