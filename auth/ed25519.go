// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/crypto"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

var _ chain.Auth = (*ED25519)(nil)

const ED25519Size = ed25519.PublicKeyLen + ed25519.SignatureLen

type ED25519 struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`

	addr codec.Address
}

func (d *ED25519) address() codec.Address {
	if d.addr == codec.EmptyAddress {
		d.addr = NewED25519Address(d.Signer)
	}
	return d.addr
}

func (*ED25519) GetTypeID() uint8 {
	return ED25519ID
}

func (d *ED25519) Verify(_ context.Context, msg []byte) error {
	if !ed25519.Verify(msg, d.Signer, d.Signature) {
		return crypto.ErrInvalidSignature
	}
	return nil
}

func (d *ED25519) Actor() codec.Address {
	return d.address()
}

func (*ED25519) Size() int {
	return ED25519Size
}

func (d *ED25519) Marshal(p *codec.Packer) {
	p.PackFixedBytes(d.Signer[:])
	p.PackFixedBytes(d.Signature[:])
}

func UnmarshalED25519(p *codec.Packer) (chain.Auth, error) {
	var (
		d   ED25519
		raw []byte
	)
	p.UnpackFixedBytes(ed25519.PublicKeyLen, &raw)
	copy(d.Signer[:], raw)
	p.UnpackFixedBytes(ed25519.SignatureLen, &raw)
	copy(d.Signature[:], raw)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if d.Signer == ed25519.EmptyPublicKey {
		return nil, fmt.Errorf("%w: empty signer", crypto.ErrInvalidPublicKey)
	}
	return &d, nil
}

var _ chain.AuthFactory = (*ED25519Factory)(nil)

type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

func (d *ED25519Factory) Sign(msg []byte) (chain.Auth, error) {
	sig := ed25519.Sign(msg, d.priv)
	return &ED25519{Signer: d.priv.PublicKey(), Signature: sig}, nil
}

func (d *ED25519Factory) Address() codec.Address {
	return NewED25519Address(d.priv.PublicKey())
}

// NewED25519Address is the address of the signer with [pk].
func NewED25519Address(pk ed25519.PublicKey) codec.Address {
	return codec.CreateAddress(ED25519ID, hashing.ComputeHash256Array(pk[:]))
}

var _ chain.AuthEngine = ED25519AuthEngine{}

type ED25519AuthEngine struct{}

func (ED25519AuthEngine) GetBatchVerifier(size int) chain.AuthBatchVerifier {
	return &ED25519Batch{batch: ed25519.NewBatch(size)}
}

type ED25519Batch struct {
	batch *ed25519.Batch
}

func (b *ED25519Batch) Add(msg []byte, rauth chain.Auth) error {
	auth, ok := rauth.(*ED25519)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidKeyType, rauth)
	}
	b.batch.Add(msg, auth.Signer, auth.Signature)
	return nil
}

func (b *ED25519Batch) Verify() error {
	return b.batch.Verify()
}

// PrivateKey is a private key along with the address it signs for.
type PrivateKey struct {
	Address codec.Address
	Bytes   []byte
}

func GenerateED25519() (*PrivateKey, error) {
	p, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{
		Address: NewED25519Address(p.PublicKey()),
		Bytes:   p[:],
	}, nil
}

func LoadED25519(b []byte) (*PrivateKey, error) {
	if len(b) != ed25519.PrivateKeyLen {
		return nil, ErrInvalidPrivateKeySize
	}
	pk, err := ed25519.PrivateKeyFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{
		Address: NewED25519Address(pk.PublicKey()),
		Bytes:   b,
	}, nil
}

// GetFactory returns the [chain.AuthFactory] for a given private key.
func GetFactory(pk *PrivateKey) (chain.AuthFactory, error) {
	switch pk.Address.TypeID() {
	case ED25519ID:
		priv, err := ed25519.PrivateKeyFromBytes(pk.Bytes)
		if err != nil {
			return nil, err
		}
		return NewED25519Factory(priv), nil
	default:
		return nil, ErrInvalidKeyType
	}
}

// Register adds every supported auth type to [r].
func Register(r *chain.Registry) error {
	return r.RegisterAuth(ED25519ID, UnmarshalED25519, ED25519AuthEngine{})
}
