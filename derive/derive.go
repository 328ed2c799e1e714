// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package derive maps a namespace and key parts to a program-derived
// account address. Derivation is pure: anyone holding the program id can
// recompute an address from its inputs and verify a referenced record.
package derive

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

const (
	// MaxSeeds bounds the namespace plus key parts of one derivation.
	MaxSeeds = 16
	// MaxSeedLen is large enough to hold a full [codec.Address].
	MaxSeedLen = codec.AddressLen

	marker = "ProgramDerivedAddress"
)

const (
	VaultNamespace   = "vault"
	UserNamespace    = "user"
	CustodyNamespace = "custody"
	TokenNamespace   = "token"
	LedgerNamespace  = "ledger"
)

var (
	ErrInvalidSeeds    = errors.New("invalid seeds")
	ErrOnCurve         = errors.New("derived id is a valid curve point")
	ErrNoViableNonce   = errors.New("no viable nonce")
	ErrAddressMismatch = errors.New("address mismatch")
)

// Deriver derives addresses owned by a single program.
type Deriver struct {
	programID ids.ID
}

// New returns a Deriver for [programID]. The program id is fixed at
// deployment and never changes for the life of a Deriver.
func New(programID ids.ID) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() ids.ID {
	return d.programID
}

// Create derives the address for an explicit [nonce]. It fails with
// [ErrOnCurve] if the candidate is a valid ed25519 point.
func (d *Deriver) Create(nonce uint8, namespace string, parts ...[]byte) (codec.Address, error) {
	if err := checkSeeds(namespace, parts); err != nil {
		return codec.EmptyAddress, err
	}
	id := d.hash(nonce, namespace, parts)
	if onCurve(id) {
		return codec.EmptyAddress, ErrOnCurve
	}
	return codec.CreateAddress(consts.DerivedID, id), nil
}

// Find searches nonces from 255 down to 0 and returns the first candidate
// that is off the ed25519 curve. The result is the canonical address for
// the inputs.
func (d *Deriver) Find(namespace string, parts ...[]byte) (codec.Address, uint8, error) {
	if err := checkSeeds(namespace, parts); err != nil {
		return codec.EmptyAddress, 0, err
	}
	for n := int(consts.MaxUint8); n >= 0; n-- {
		nonce := uint8(n)
		id := d.hash(nonce, namespace, parts)
		if onCurve(id) {
			continue
		}
		return codec.CreateAddress(consts.DerivedID, id), nonce, nil
	}
	return codec.EmptyAddress, 0, ErrNoViableNonce
}

// Verify recomputes the address for the stated inputs and rejects [addr]
// if it does not match.
func (d *Deriver) Verify(addr codec.Address, nonce uint8, namespace string, parts ...[]byte) error {
	expected, err := d.Create(nonce, namespace, parts...)
	if errors.Is(err, ErrOnCurve) {
		// A curve point is never a derived address.
		return fmt.Errorf("%w: %s is not derived from the stated inputs", ErrAddressMismatch, addr)
	}
	if err != nil {
		return err
	}
	if expected != addr {
		return fmt.Errorf("%w: expected %s, found %s", ErrAddressMismatch, expected, addr)
	}
	return nil
}

// Sign returns the capability to authorize transfers out of the account
// derived from the inputs.
func (d *Deriver) Sign(nonce uint8, namespace string, parts ...[]byte) (Signer, error) {
	addr, err := d.Create(nonce, namespace, parts...)
	if err != nil {
		return Signer{}, err
	}
	return Signer{addr: addr}, nil
}

func (d *Deriver) hash(nonce uint8, namespace string, parts [][]byte) ids.ID {
	size := len(namespace) + consts.ByteLen + consts.IDLen + len(marker)
	for _, p := range parts {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, namespace...)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	buf = append(buf, nonce)
	buf = append(buf, d.programID[:]...)
	buf = append(buf, marker...)
	return ids.ID(hashing.ComputeHash256Array(buf))
}

func checkSeeds(namespace string, parts [][]byte) error {
	if len(namespace) == 0 || len(namespace) > MaxSeedLen {
		return fmt.Errorf("%w: namespace length %d", ErrInvalidSeeds, len(namespace))
	}
	if len(parts)+1 > MaxSeeds {
		return fmt.Errorf("%w: %d seeds", ErrInvalidSeeds, len(parts)+1)
	}
	for i, p := range parts {
		if len(p) > MaxSeedLen {
			return fmt.Errorf("%w: seed %d length %d", ErrInvalidSeeds, i, len(p))
		}
	}
	return nil
}

func onCurve(id ids.ID) bool {
	_, err := new(edwards25519.Point).SetBytes(id[:])
	return err == nil
}
