// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package derive

import "github.com/ava-labs/vaultvm/codec"

// Signer authorizes transfers out of a program-derived account. It carries
// no key material and can only be obtained from [Deriver.Sign], which
// re-derives the address from its inputs.
type Signer struct {
	addr codec.Address
}

// Address returns the derived account this signer speaks for. The zero
// Signer returns [codec.EmptyAddress].
func (s Signer) Address() codec.Address {
	return s.addr
}

// FindVault derives ("vault", authority, name).
func (d *Deriver) FindVault(authority codec.Address, name string) (codec.Address, uint8, error) {
	return d.Find(VaultNamespace, authority[:], []byte(name))
}

// SignVault returns the signer for a vault whose canonical nonce was stored
// at creation.
func (d *Deriver) SignVault(nonce uint8, authority codec.Address, name string) (Signer, error) {
	return d.Sign(nonce, VaultNamespace, authority[:], []byte(name))
}

// FindUser derives ("user", vault, depositor).
func (d *Deriver) FindUser(vault codec.Address, depositor codec.Address) (codec.Address, uint8, error) {
	return d.Find(UserNamespace, vault[:], depositor[:])
}

// FindCustody derives ("custody", vault), the token account holding the
// vault's deposits.
func (d *Deriver) FindCustody(vault codec.Address) (codec.Address, uint8, error) {
	return d.Find(CustodyNamespace, vault[:])
}

// FindTokenAccount derives ("token", owner), the associated token account
// of [owner].
func (d *Deriver) FindTokenAccount(owner codec.Address) (codec.Address, uint8, error) {
	return d.Find(TokenNamespace, owner[:])
}

// FindLedger derives ("ledger", payer), the raw aggregate ledger account
// initialized by [payer].
func (d *Deriver) FindLedger(payer codec.Address) (codec.Address, uint8, error) {
	return d.Find(LedgerNamespace, payer[:])
}

// SignLedger returns the signer for a raw ledger account.
func (d *Deriver) SignLedger(nonce uint8, payer codec.Address) (Signer, error) {
	return d.Sign(nonce, LedgerNamespace, payer[:])
}
