// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package derive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

func TestFindDeterministic(t *testing.T) {
	require := require.New(t)
	d := New(ids.GenerateTestID())
	authority := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	addr1, nonce1, err := d.FindVault(authority, "treasury")
	require.NoError(err)
	addr2, nonce2, err := d.FindVault(authority, "treasury")
	require.NoError(err)
	require.Equal(addr1, addr2)
	require.Equal(nonce1, nonce2)
	require.Equal(consts.DerivedID, addr1.TypeID())

	require.NoError(d.Verify(addr1, nonce1, VaultNamespace, authority[:], []byte("treasury")))
}

func TestFindDistinctInputs(t *testing.T) {
	require := require.New(t)
	d := New(ids.GenerateTestID())
	alice := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
	bob := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	a, _, err := d.FindVault(alice, "treasury")
	require.NoError(err)
	b, _, err := d.FindVault(bob, "treasury")
	require.NoError(err)
	c, _, err := d.FindVault(alice, "payroll")
	require.NoError(err)
	require.NotEqual(a, b)
	require.NotEqual(a, c)

	// Namespaces separate otherwise identical parts.
	u, _, err := d.Find(UserNamespace, alice[:])
	require.NoError(err)
	v, _, err := d.Find(TokenNamespace, alice[:])
	require.NoError(err)
	require.NotEqual(u, v)

	// A different program derives different addresses.
	other := New(ids.GenerateTestID())
	a2, _, err := other.FindVault(alice, "treasury")
	require.NoError(err)
	require.NotEqual(a, a2)
}

func TestFindSkipsCurvePoints(t *testing.T) {
	require := require.New(t)
	d := New(ids.GenerateTestID())

	// Every nonce above the canonical one must have produced a curve point.
	for i := 0; i < 32; i++ {
		part := []byte{byte(i)}
		_, nonce, err := d.Find(LedgerNamespace, part)
		require.NoError(err)
		for n := int(consts.MaxUint8); n > int(nonce); n-- {
			_, err := d.Create(uint8(n), LedgerNamespace, part)
			require.ErrorIs(err, ErrOnCurve)
		}
	}
}

func TestVerifyMismatch(t *testing.T) {
	require := require.New(t)
	d := New(ids.GenerateTestID())
	owner := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	addr, nonce, err := d.FindLedger(owner)
	require.NoError(err)

	// Wrong inputs are a mismatch whether or not they hash to a curve point
	// at the stated nonce.
	var onCurve, offCurve int
	for i := 0; i < 64; i++ {
		other := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
		if _, err := d.Create(nonce, LedgerNamespace, other[:]); errors.Is(err, ErrOnCurve) {
			onCurve++
		} else {
			offCurve++
		}
		require.ErrorIs(d.Verify(addr, nonce, LedgerNamespace, other[:]), ErrAddressMismatch)
	}
	require.Positive(onCurve)
	require.Positive(offCurve)

	require.NoError(d.Verify(addr, nonce, LedgerNamespace, owner[:]))
}

func TestSeedLimits(t *testing.T) {
	require := require.New(t)
	d := New(ids.GenerateTestID())

	_, _, err := d.Find("")
	require.ErrorIs(err, ErrInvalidSeeds)

	_, _, err = d.Find(VaultNamespace, bytes.Repeat([]byte{1}, MaxSeedLen+1))
	require.ErrorIs(err, ErrInvalidSeeds)

	parts := make([][]byte, MaxSeeds)
	_, _, err = d.Find(VaultNamespace, parts...)
	require.ErrorIs(err, ErrInvalidSeeds)
}

func TestSign(t *testing.T) {
	require := require.New(t)
	d := New(ids.GenerateTestID())
	authority := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	addr, nonce, err := d.FindVault(authority, "treasury")
	require.NoError(err)

	signer, err := d.SignVault(nonce, authority, "treasury")
	require.NoError(err)
	require.Equal(addr, signer.Address())

	require.Equal(codec.EmptyAddress, Signer{}.Address())
}
