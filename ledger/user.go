// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const UserSize = consts.ByteLen + 2*codec.AddressLen + consts.IDLen +
	3*consts.Int64Len + 3*consts.Uint64Len

// WithdrawalLimit caps how much one depositor may withdraw per window.
// A zero Amount disables the cap. A Window <= 0 applies the cap to each
// withdrawal on its own.
type WithdrawalLimit struct {
	Amount uint64
	Window int64
}

// User is the record of one depositor in one vault.
type User struct {
	Nonce     uint8         `json:"nonce"`
	Authority codec.Address `json:"authority"`
	Vault     codec.Address `json:"vault"`
	// VaultCreation ties the record to one incarnation of [Vault].
	VaultCreation ids.ID `json:"vaultCreation"`

	CreatedAt      int64 `json:"createdAt"`
	LastActivityAt int64 `json:"lastActivityAt"`

	NetDeposit  uint64 `json:"netDeposit"`
	NetWithdraw uint64 `json:"netWithdraw"`

	WindowStart     int64  `json:"windowStart"`
	WindowWithdrawn uint64 `json:"windowWithdrawn"`
}

// NewUser returns an empty record for [authority] in [vault].
func NewUser(nonce uint8, authority codec.Address, vault codec.Address, creation ids.ID, now int64) *User {
	return &User{
		Nonce:          nonce,
		Authority:      authority,
		Vault:          vault,
		VaultCreation:  creation,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Available is the amount the depositor may still withdraw.
func (u *User) Available() uint64 {
	return u.NetDeposit - u.NetWithdraw
}

// Deposit records [amount] deposited at [now]. The record is unchanged
// on error.
func (u *User) Deposit(amount uint64, now int64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	deposit, err := smath.Add64(u.NetDeposit, amount)
	if err != nil {
		return fmt.Errorf("%w: user deposit %d + %d", ErrOverflow, u.NetDeposit, amount)
	}
	u.NetDeposit = deposit
	u.LastActivityAt = now
	return nil
}

// Withdraw records [amount] withdrawn at [now]. The record is unchanged
// on error.
func (u *User) Withdraw(amount uint64, now int64, limit WithdrawalLimit) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	withdraw, err := smath.Add64(u.NetWithdraw, amount)
	if err != nil {
		return fmt.Errorf("%w: user withdraw %d + %d", ErrOverflow, u.NetWithdraw, amount)
	}
	if withdraw > u.NetDeposit {
		return fmt.Errorf("%w: available %d < %d", ErrInsufficientFunds, u.Available(), amount)
	}
	windowStart, windowWithdrawn := u.WindowStart, u.WindowWithdrawn
	if limit.Amount > 0 {
		if limit.Window <= 0 || now-windowStart >= limit.Window {
			windowStart, windowWithdrawn = now, 0
		}
		windowWithdrawn, err = smath.Add64(windowWithdrawn, amount)
		if err != nil || windowWithdrawn > limit.Amount {
			return fmt.Errorf("%w: %d over %d per window", ErrWithdrawalLimitExceeded, amount, limit.Amount)
		}
	}
	u.NetWithdraw = withdraw
	u.WindowStart, u.WindowWithdrawn = windowStart, windowWithdrawn
	u.LastActivityAt = now
	return nil
}

// Verify checks the record invariants.
func (u *User) Verify() error {
	if u.NetWithdraw > u.NetDeposit {
		return fmt.Errorf("%w: user withdraw %d > deposit %d", ErrInvariantViolated, u.NetWithdraw, u.NetDeposit)
	}
	return nil
}

func (u *User) Marshal(p *codec.Packer) {
	p.PackByte(u.Nonce)
	p.PackAddress(u.Authority)
	p.PackAddress(u.Vault)
	p.PackID(u.VaultCreation)
	p.PackInt64(u.CreatedAt)
	p.PackInt64(u.LastActivityAt)
	p.PackUint64(u.NetDeposit)
	p.PackUint64(u.NetWithdraw)
	p.PackInt64(u.WindowStart)
	p.PackUint64(u.WindowWithdrawn)
}

func (u *User) Bytes() []byte {
	p := codec.NewWriter(UserSize, UserSize)
	u.Marshal(p)
	return p.Bytes()
}

func UnmarshalUser(b []byte) (*User, error) {
	var (
		u = &User{}
		p = codec.NewReader(b, UserSize)
	)
	u.Nonce = p.UnpackByte()
	p.UnpackAddress(&u.Authority)
	p.UnpackAddress(&u.Vault)
	p.UnpackID(true, &u.VaultCreation)
	u.CreatedAt = p.UnpackInt64(false)
	u.LastActivityAt = p.UnpackInt64(false)
	u.NetDeposit = p.UnpackUint64(false)
	u.NetWithdraw = p.UnpackUint64(false)
	u.WindowStart = p.UnpackInt64(false)
	u.WindowWithdrawn = p.UnpackUint64(false)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: user has extra bytes", ErrInvalidRecord)
	}
	if err := u.Verify(); err != nil {
		return nil, err
	}
	return u, nil
}
