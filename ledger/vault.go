// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"
	"unicode/utf8"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

// MaxVaultNameLen keeps a vault name usable as a single derivation seed.
const MaxVaultNameLen = 32

const VaultSize = consts.ByteLen + codec.AddressLen + consts.Uint16Len + MaxVaultNameLen +
	consts.Int64Len + consts.IDLen + 2*consts.Uint64Len + 2*consts.Uint128Len

// Vault is the aggregate record of one named vault.
type Vault struct {
	Nonce     uint8         `json:"nonce"`
	Authority codec.Address `json:"authority"`
	Name      string        `json:"name"`
	CreatedAt int64         `json:"createdAt"`
	// Creation is the id of the transaction that created this incarnation
	// of the vault.
	Creation ids.ID `json:"creation"`
	// Reserve is refunded to the authority when the vault is closed.
	Reserve uint64 `json:"reserve"`
	// DepositLimit caps NetDeposits-NetWithdraws. Zero means no cap.
	DepositLimit uint64 `json:"depositLimit"`

	NetDeposits  Counter `json:"netDeposits"`
	NetWithdraws Counter `json:"netWithdraws"`
}

// ValidateName rejects empty, oversized and non UTF-8 names.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > MaxVaultNameLen {
		return fmt.Errorf("%w: length %d not in [1, %d]", ErrInvalidVaultName, len(name), MaxVaultNameLen)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: not utf8", ErrInvalidVaultName)
	}
	return nil
}

// Outstanding is the amount currently held on behalf of depositors.
func (v *Vault) Outstanding() (Counter, error) {
	return v.NetDeposits.Diff(v.NetWithdraws)
}

// Deposit records [amount] entering the vault. The record is unchanged
// on error.
func (v *Vault) Deposit(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	deposits, err := v.NetDeposits.Add(amount)
	if err != nil {
		return err
	}
	if v.DepositLimit > 0 {
		outstanding, err := deposits.Diff(v.NetWithdraws)
		if err != nil {
			return err
		}
		if outstanding.Cmp(NewCounter(v.DepositLimit)) > 0 {
			return fmt.Errorf("%w: outstanding %s > limit %d", ErrDepositLimitExceeded, outstanding, v.DepositLimit)
		}
	}
	v.NetDeposits = deposits
	return nil
}

// Withdraw records [amount] leaving the vault. The record is unchanged
// on error.
func (v *Vault) Withdraw(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	withdraws, err := v.NetWithdraws.Add(amount)
	if err != nil {
		return err
	}
	if withdraws.Cmp(v.NetDeposits) > 0 {
		return fmt.Errorf("%w: vault withdraws %s > deposits %s", ErrInsufficientFunds, withdraws, v.NetDeposits)
	}
	v.NetWithdraws = withdraws
	return nil
}

// Closable reports whether the counters allow the vault to be closed.
// The custodied balance is checked separately by the caller.
func (v *Vault) Closable() error {
	if v.NetDeposits.Cmp(v.NetWithdraws) != 0 {
		return fmt.Errorf("%w: deposits %s, withdraws %s", ErrVaultNotEmpty, v.NetDeposits, v.NetWithdraws)
	}
	return nil
}

// Verify checks the record invariants.
func (v *Vault) Verify() error {
	if err := ValidateName(v.Name); err != nil {
		return err
	}
	if v.NetWithdraws.Cmp(v.NetDeposits) > 0 {
		return fmt.Errorf("%w: vault withdraws %s > deposits %s", ErrInvariantViolated, v.NetWithdraws, v.NetDeposits)
	}
	return nil
}

func (v *Vault) Marshal(p *codec.Packer) {
	p.PackByte(v.Nonce)
	p.PackAddress(v.Authority)
	p.PackString(v.Name)
	p.PackInt64(v.CreatedAt)
	p.PackID(v.Creation)
	p.PackUint64(v.Reserve)
	p.PackUint64(v.DepositLimit)
	deposits := v.NetDeposits.Bytes()
	p.PackFixedBytes(deposits[:])
	withdraws := v.NetWithdraws.Bytes()
	p.PackFixedBytes(withdraws[:])
}

func (v *Vault) Bytes() []byte {
	p := codec.NewWriter(VaultSize, VaultSize)
	v.Marshal(p)
	return p.Bytes()
}

func UnmarshalVault(b []byte) (*Vault, error) {
	var (
		v = &Vault{}
		p = codec.NewReader(b, VaultSize)
	)
	v.Nonce = p.UnpackByte()
	p.UnpackAddress(&v.Authority)
	v.Name = p.UnpackString(true)
	v.CreatedAt = p.UnpackInt64(false)
	p.UnpackID(true, &v.Creation)
	v.Reserve = p.UnpackUint64(false)
	v.DepositLimit = p.UnpackUint64(false)
	var raw []byte
	p.UnpackFixedBytes(consts.Uint128Len, &raw)
	deposits, err := CounterFromBytes(raw)
	if err != nil {
		p.AddErr(err)
	}
	p.UnpackFixedBytes(consts.Uint128Len, &raw)
	withdraws, err := CounterFromBytes(raw)
	if err != nil {
		p.AddErr(err)
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: vault has extra bytes", ErrInvalidRecord)
	}
	v.NetDeposits = deposits
	v.NetWithdraws = withdraws
	if err := v.Verify(); err != nil {
		return nil, err
	}
	return v, nil
}
