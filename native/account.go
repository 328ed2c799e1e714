// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

// Account is the raw ledger buffer. It owns a copy of the stored bytes, so
// changes are only visible to others once stored.
type Account struct {
	data [storage.LedgerSize]byte
}

// ParseAccount copies [b] into a new Account.
func ParseAccount(b []byte) (*Account, error) {
	if len(b) != storage.LedgerSize {
		return nil, fmt.Errorf("%w: length %d", storage.ErrInvalidLedger, len(b))
	}
	a := &Account{}
	copy(a.data[:], b)
	return a, nil
}

// TotalDeposited is the little-endian counter at the start of the buffer.
func (a *Account) TotalDeposited() uint64 {
	return binary.LittleEndian.Uint64(a.data[:])
}

func (a *Account) SetTotalDeposited(total uint64) {
	binary.LittleEndian.PutUint64(a.data[:], total)
}

func (a *Account) Bytes() []byte {
	return append([]byte(nil), a.data[:]...)
}

// LoadAccount reads the ledger at [addr], if it has been initialized.
func LoadAccount(ctx context.Context, im state.Immutable, addr codec.Address) (*Account, bool, error) {
	b, exists, err := storage.GetLedger(ctx, im, addr)
	if err != nil || !exists {
		return nil, false, err
	}
	a, err := ParseAccount(b)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func StoreAccount(ctx context.Context, mu state.Mutable, addr codec.Address, a *Account) error {
	return storage.SetLedger(ctx, mu, addr, a.data[:])
}
