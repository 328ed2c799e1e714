// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
)

// Rules are the immutable parameters of a chain.
type Rules interface {
	GetChainID() ids.ID
	GetValidityWindow() int64 // in milliseconds

	// GetDeriver derives program addresses for the configured program id.
	GetDeriver() *derive.Deriver
	// GetVaultReserve is the native amount locked in a vault at creation
	// and refunded when it is closed.
	GetVaultReserve() uint64
	GetWithdrawalLimit() ledger.WithdrawalLimit
	// GetLedgerWithdrawOwnerOnly restricts aggregate ledger withdrawals to
	// the payer the ledger was derived from.
	GetLedgerWithdrawOwnerOnly() bool
}

type Marshaler interface {
	// Size is the number of bytes [Marshal] writes.
	Size() int
	Marshal(p *codec.Packer)
}

type Action interface {
	Marshaler

	// GetTypeID uniquely identifies each supported [Action]. We use IDs to
	// avoid reflection.
	GetTypeID() uint8

	// StateKeys is a full enumeration of all database keys that could be
	// touched during execution of an [Action]. Any access outside of this
	// scope fails.
	StateKeys(r Rules, actor codec.Address) (state.Keys, error)

	// Execute applies the [Action] to [mu]. If it returns an error, every
	// change it made is discarded.
	//
	// Outputs are returned to the submitter as part of the [Result].
	Execute(
		ctx context.Context,
		r Rules,
		mu state.Mutable,
		timestamp int64,
		actor codec.Address,
		txID ids.ID,
	) (outputs [][]byte, err error)
}

type Auth interface {
	Marshaler

	// GetTypeID uniquely identifies each supported [Auth].
	GetTypeID() uint8

	// Verify checks that [msg] was signed by [Actor].
	Verify(ctx context.Context, msg []byte) error

	// Actor is the identity an [Action] is executed as.
	Actor() codec.Address
}

// AuthBatchVerifier verifies many [Auth] of the same type at once.
type AuthBatchVerifier interface {
	Add(msg []byte, auth Auth) error
	Verify() error
}

// AuthEngine provides batch verification for an [Auth] type.
type AuthEngine interface {
	GetBatchVerifier(size int) AuthBatchVerifier
}

type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}
