// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/crypto"
)

func TestGeneratePrivateKeyDifferent(t *testing.T) {
	require := require.New(t)
	seen := make(map[PrivateKey]bool)
	for i := 0; i < 10; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		require.False(seen[priv], "duplicate private key generated")
		seen[priv] = true
	}
}

func TestPrivateKeyFromBytes(t *testing.T) {
	require := require.New(t)
	priv, err := GeneratePrivateKey()
	require.NoError(err)

	parsed, err := PrivateKeyFromBytes(priv[:])
	require.NoError(err)
	require.Equal(priv, parsed)

	tampered := priv
	tampered[PrivateKeyLen-1] ^= 0xff
	_, err = PrivateKeyFromBytes(tampered[:])
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)

	_, err = PrivateKeyFromBytes(priv[:10])
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)
}

func TestSignVerify(t *testing.T) {
	require := require.New(t)
	priv, err := GeneratePrivateKey()
	require.NoError(err)
	msg := []byte("deposit")

	sig := Sign(msg, priv)
	require.True(Verify(msg, priv.PublicKey(), sig))
	require.False(Verify([]byte("withdraw"), priv.PublicKey(), sig))
}

func TestBatchVerify(t *testing.T) {
	require := require.New(t)
	batch := NewBatch(MinBatchSize)
	for i := 0; i < MinBatchSize; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		msg := []byte{byte(i)}
		batch.Add(msg, priv.PublicKey(), Sign(msg, priv))
	}
	require.NoError(batch.Verify())

	bad := NewBatch(1)
	priv, err := GeneratePrivateKey()
	require.NoError(err)
	bad.Add([]byte{1}, priv.PublicKey(), Sign([]byte{2}, priv))
	require.ErrorIs(bad.Verify(), crypto.ErrInvalidSignature)
}
