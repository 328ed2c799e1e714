// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/keys"
	"github.com/ava-labs/vaultvm/state"
)

type Transaction struct {
	Base *Base `json:"base"`

	Action Action `json:"action"`
	Auth   Auth   `json:"auth"`

	digest    []byte
	bytes     []byte
	size      int
	id        ids.ID
	stateKeys state.Keys
}

func NewTx(base *Base, action Action) *Transaction {
	return &Transaction{
		Base:   base,
		Action: action,
	}
}

// Digest is the message signed by [Auth].
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	size := t.Base.Size() + consts.ByteLen + t.Action.Size()
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	t.Base.Marshal(p)
	p.PackByte(t.Action.GetTypeID())
	t.Action.Marshal(p)
	return p.Bytes(), p.Err()
}

// Sign signs the transaction with [factory] and returns the transaction
// as it would be parsed from its bytes.
func (t *Transaction) Sign(factory AuthFactory, registry *Registry) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auth, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	t.Auth = auth

	// Ensure transaction is fully initialized and correct by reloading it from
	// bytes
	size := len(msg) + consts.ByteLen + t.Auth.Size()
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return UnmarshalTx(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit), registry)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

func (t *Transaction) Expiry() int64 { return t.Base.Timestamp }

// Sponsor is the account that signed the transaction.
func (t *Transaction) Sponsor() codec.Address { return t.Auth.Actor() }

// StateKeys returns the keys the transaction may touch.
func (t *Transaction) StateKeys(r Rules) (state.Keys, error) {
	if t.stateKeys != nil {
		return t.stateKeys, nil
	}
	actionKeys, err := t.Action.StateKeys(r, t.Auth.Actor())
	if err != nil {
		return nil, err
	}
	stateKeys := make(state.Keys, len(actionKeys))
	for k, v := range actionKeys {
		if !keys.Valid(k) {
			return nil, ErrInvalidKeyValue
		}
		stateKeys.Add(k, v)
	}

	// Cache keys if called again
	t.stateKeys = stateKeys
	return stateKeys, nil
}

// Execute runs the action of the transaction against [mu]. [mu] must be
// discarded if an error is returned.
func (t *Transaction) Execute(ctx context.Context, r Rules, mu state.Mutable, timestamp int64) ([][]byte, error) {
	if err := t.Base.Execute(r, timestamp); err != nil {
		return nil, err
	}
	return t.Action.Execute(ctx, r, mu, timestamp, t.Auth.Actor(), t.id)
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	t.Base.Marshal(p)
	p.PackByte(t.Action.GetTypeID())
	t.Action.Marshal(p)
	p.PackByte(t.Auth.GetTypeID())
	t.Auth.Marshal(p)
	return p.Err()
}

// UnmarshalTx parses a signed transaction. The signature is not verified.
func UnmarshalTx(p *codec.Packer, registry *Registry) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	action, err := registry.UnmarshalAction(p)
	if err != nil {
		return nil, err
	}
	digest := p.Offset()
	auth, err := registry.UnmarshalAuth(p)
	if err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	var tx Transaction
	tx.Base = base
	tx.Action = action
	tx.Auth = auth
	codecBytes := p.Bytes()
	tx.digest = codecBytes[start:digest]
	tx.bytes = codecBytes[start:p.Offset()]
	tx.size = len(tx.bytes)
	tx.id = hashing.ComputeHash256Array(tx.bytes)
	return &tx, nil
}

// ParseTx parses [b] as exactly one signed transaction.
func ParseTx(b []byte, registry *Registry) (*Transaction, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	tx, err := UnmarshalTx(p, registry)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: remaining=%d", ErrInvalidObject, len(b)-p.Offset())
	}
	return tx, nil
}
