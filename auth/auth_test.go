// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/crypto"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

func TestRequireAuthority(t *testing.T) {
	require := require.New(t)
	a := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
	b := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	require.NoError(RequireAuthority(a, a))
	require.ErrorIs(RequireAuthority(a, b), ErrUnauthorized)
	require.ErrorIs(RequireAuthority(codec.EmptyAddress, b), ErrUnauthorized)
}

func TestED25519SignVerify(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	pk, err := GenerateED25519()
	require.NoError(err)
	require.Equal(ED25519ID, pk.Address.TypeID())
	factory, err := GetFactory(pk)
	require.NoError(err)
	require.Equal(pk.Address, factory.Address())

	msg := []byte("deposit")
	a, err := factory.Sign(msg)
	require.NoError(err)
	require.Equal(pk.Address, a.Actor())
	require.NoError(a.Verify(ctx, msg))
	require.ErrorIs(a.Verify(ctx, []byte("withdraw")), crypto.ErrInvalidSignature)

	p := codec.NewWriter(a.Size(), a.Size())
	a.Marshal(p)
	require.NoError(p.Err())
	parsed, err := UnmarshalED25519(codec.NewReader(p.Bytes(), a.Size()))
	require.NoError(err)
	require.Equal(a.Actor(), parsed.Actor())
	require.NoError(parsed.Verify(ctx, msg))
}

func TestUnmarshalEmptySigner(t *testing.T) {
	require := require.New(t)
	p := codec.NewReader(make([]byte, ED25519Size), ED25519Size)
	_, err := UnmarshalED25519(p)
	require.ErrorIs(err, crypto.ErrInvalidPublicKey)
}

func TestLoadED25519(t *testing.T) {
	require := require.New(t)

	pk, err := GenerateED25519()
	require.NoError(err)
	loaded, err := LoadED25519(pk.Bytes)
	require.NoError(err)
	require.Equal(pk.Address, loaded.Address)

	_, err = LoadED25519(pk.Bytes[:ed25519.PrivateKeySeedLen])
	require.ErrorIs(err, ErrInvalidPrivateKeySize)

	_, err = GetFactory(&PrivateKey{Address: codec.CreateAddress(consts.DerivedID, ids.Empty)})
	require.ErrorIs(err, ErrInvalidKeyType)
}

func TestBatchVerify(t *testing.T) {
	require := require.New(t)

	var (
		msgs  = [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
		auths = make([]chain.Auth, len(msgs))
	)
	for i, msg := range msgs {
		pk, err := GenerateED25519()
		require.NoError(err)
		factory, err := GetFactory(pk)
		require.NoError(err)
		auths[i], err = factory.Sign(msg)
		require.NoError(err)
	}

	bv := ED25519AuthEngine{}.GetBatchVerifier(len(msgs))
	for i, msg := range msgs {
		require.NoError(bv.Add(msg, auths[i]))
	}
	require.NoError(bv.Verify())

	bv = ED25519AuthEngine{}.GetBatchVerifier(len(msgs))
	for i := range msgs {
		require.NoError(bv.Add(msgs[0], auths[i]))
	}
	require.ErrorIs(bv.Verify(), crypto.ErrInvalidSignature)
}

func TestRegister(t *testing.T) {
	require := require.New(t)
	r := chain.NewRegistry()
	require.NoError(Register(r))
	require.Error(Register(r))
	_, ok := r.AuthEngine(ED25519ID)
	require.True(ok)
}
