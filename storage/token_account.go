// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

const TokenAccountSize = codec.AddressLen + consts.Uint64Len

// TokenAccount holds the custodied asset of one owner.
type TokenAccount struct {
	Owner  codec.Address `json:"owner"`
	Amount uint64        `json:"amount"`
}

func (t *TokenAccount) Bytes() []byte {
	p := codec.NewWriter(TokenAccountSize, TokenAccountSize)
	p.PackAddress(t.Owner)
	p.PackUint64(t.Amount)
	return p.Bytes()
}

func UnmarshalTokenAccount(b []byte) (*TokenAccount, error) {
	var (
		t = &TokenAccount{}
		p = codec.NewReader(b, TokenAccountSize)
	)
	p.UnpackAddress(&t.Owner)
	t.Amount = p.UnpackUint64(false)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTokenAccount, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: extra bytes", ErrInvalidTokenAccount)
	}
	return t, nil
}
