// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/ava-labs/vaultvm/consts"
)

const AddressLen = 1 + consts.IDLen

// Address is the 33 byte address of an account. The first byte is the
// type prefix (a signer or a program-derived account), the remaining
// 32 bytes are the account id.
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating
// [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	var a Address
	a[0] = typeID
	copy(a[1:], id[:])
	return a
}

// ToAddress copies [b] into an [Address].
func ToAddress(b []byte) (Address, error) {
	if len(b) != AddressLen {
		return EmptyAddress, fmt.Errorf("%w: expected=%d found=%d", ErrInvalidSize, AddressLen, len(b))
	}
	return Address(b), nil
}

// TypeID returns the type prefix of [a].
func (a Address) TypeID() uint8 {
	return a[0]
}

// ID returns the 32 byte account id of [a].
func (a Address) ID() ids.ID {
	return ids.ID(a[1:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	result := make([]byte, len(a)*2+2)
	copy(result, `0x`)
	hex.Encode(result[2:], a[:])
	return result, nil
}

// UnmarshalText parses a hex-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	if len(input) >= 2 && input[0] == '0' && input[1] == 'x' {
		input = input[2:]
	}
	decoded, err := hex.DecodeString(string(input))
	if err != nil {
		return err
	}
	if len(decoded) != AddressLen {
		return ErrInvalidSize
	}
	copy(a[:], decoded)
	return nil
}

// StringToAddress parses a hex address, with or without the 0x prefix.
func StringToAddress(s string) (Address, error) {
	var a Address
	return a, a.UnmarshalText([]byte(s))
}

// AddressBech32 returns the bech32 form of [a] using [hrp].
func AddressBech32(hrp string, a Address) (string, error) {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, conv)
}

// MustAddressBech32 is [AddressBech32] for addresses known to be valid.
func MustAddressBech32(hrp string, a Address) string {
	s, err := AddressBech32(hrp, a)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseAddressBech32 parses a bech32 address and checks its hrp.
func ParseAddressBech32(hrp, saddr string) (Address, error) {
	phrp, data, err := bech32.Decode(saddr)
	if err != nil {
		return EmptyAddress, err
	}
	if phrp != hrp {
		return EmptyAddress, fmt.Errorf("%w: expected %s, found %s", ErrIncorrectHRP, hrp, phrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return EmptyAddress, err
	}
	if len(raw) != AddressLen {
		return EmptyAddress, ErrInvalidSize
	}
	return Address(raw), nil
}

// ParseAddress accepts either a bech32 address with [hrp] or a hex address.
func ParseAddress(hrp, s string) (Address, error) {
	if a, err := ParseAddressBech32(hrp, s); err == nil {
		return a, nil
	}
	return StringToAddress(s)
}
