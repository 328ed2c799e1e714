// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

const BaseSize = consts.Int64Len + consts.IDLen

type Base struct {
	// Timestamp is the expiry of the transaction (inclusive). Once this time
	// passes and the transaction has not been executed, it is safe to
	// regenerate it.
	Timestamp int64 `json:"timestamp"`

	// ChainID protects against replay attacks on different chains.
	ChainID ids.ID `json:"chainId"`
}

// Execute checks that the transaction may be executed at [timestamp].
func (b *Base) Execute(r Rules, timestamp int64) error {
	switch {
	case b.Timestamp%consts.MillisecondsPerSecond != 0:
		return fmt.Errorf("%w: timestamp=%d", ErrMisalignedTime, b.Timestamp)
	case b.Timestamp < timestamp:
		return ErrTimestampTooLate
	case b.Timestamp > timestamp+r.GetValidityWindow():
		return ErrTimestampTooEarly
	case b.ChainID != r.GetChainID():
		return ErrInvalidChainID
	default:
		return nil
	}
}

func (*Base) Size() int {
	return BaseSize
}

func (b *Base) Marshal(p *codec.Packer) {
	p.PackInt64(b.Timestamp)
	p.PackID(b.ChainID)
}

func UnmarshalBase(p *codec.Packer) (*Base, error) {
	var base Base
	base.Timestamp = p.UnpackInt64(true)
	if base.Timestamp%consts.MillisecondsPerSecond != 0 {
		return nil, fmt.Errorf("%w: timestamp=%d", ErrMisalignedTime, base.Timestamp)
	}
	p.UnpackID(true, &base.ChainID)
	return &base, p.Err()
}
