// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"unicode/utf8"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/vaultvm/consts"
)

// Packer is a wrapper struct for the Packer struct
// from avalanchego/utils/wrappers/packing.go. A bool [required] parameter is
// added to many unpacking methods, which signals the packer to add an error
// if the expected method does not unpack properly.
type Packer struct {
	p *wrappers.Packer
}

// NewReader returns a Packer instance with the bytes of [src] to read and
// a maximum size of [limit].
func NewReader(src []byte, limit int) *Packer {
	return &Packer{p: &wrappers.Packer{Bytes: src, MaxSize: limit}}
}

// NewWriter returns a Packer with an initial capacity of [initial] that can
// grow up to [limit].
func NewWriter(initial, limit int) *Packer {
	return &Packer{p: &wrappers.Packer{Bytes: make([]byte, 0, initial), MaxSize: limit}}
}

// Bytes returns the bytes written so far.
func (p *Packer) Bytes() []byte {
	return p.p.Bytes
}

// Offset returns the current read or write position.
func (p *Packer) Offset() int {
	return p.p.Offset
}

// Empty returns whether every byte of a reader has been consumed.
func (p *Packer) Empty() bool {
	return p.p.Offset == len(p.p.Bytes)
}

// Err returns the first error encountered.
func (p *Packer) Err() error {
	return p.p.Err
}

// AddErr records [err] if no error has been recorded yet.
func (p *Packer) AddErr(err error) {
	if p.p.Err == nil {
		p.p.Err = err
	}
}

func (p *Packer) PackByte(b byte) {
	p.p.PackByte(b)
}

func (p *Packer) UnpackByte() byte {
	return p.p.UnpackByte()
}

func (p *Packer) PackBool(b bool) {
	p.p.PackBool(b)
}

func (p *Packer) UnpackBool() bool {
	return p.p.UnpackBool()
}

func (p *Packer) PackInt(v uint32) {
	p.p.PackInt(v)
}

func (p *Packer) UnpackInt(required bool) uint32 {
	v := p.p.UnpackInt()
	if required && v == 0 {
		p.AddErr(fmt.Errorf("%w: Int", ErrFieldNotPopulated))
	}
	return v
}

func (p *Packer) PackUint64(v uint64) {
	p.p.PackLong(v)
}

func (p *Packer) UnpackUint64(required bool) uint64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.AddErr(fmt.Errorf("%w: Uint64", ErrFieldNotPopulated))
	}
	return v
}

func (p *Packer) PackInt64(v int64) {
	p.p.PackLong(uint64(v))
}

func (p *Packer) UnpackInt64(required bool) int64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.AddErr(fmt.Errorf("%w: Int64", ErrFieldNotPopulated))
	}
	return int64(v)
}

func (p *Packer) PackID(id ids.ID) {
	p.p.PackFixedBytes(id[:])
}

// UnpackID unpacks an ids.ID into [dest]. If [required] is true,
// and the unpacked bytes are empty, Packer will add an
// ErrFieldNotPopulated error.
func (p *Packer) UnpackID(required bool, dest *ids.ID) {
	copy((*dest)[:], p.p.UnpackFixedBytes(consts.IDLen))
	if required && *dest == ids.Empty {
		p.AddErr(fmt.Errorf("%w: ID field is not populated", ErrFieldNotPopulated))
	}
}

func (p *Packer) PackAddress(a Address) {
	p.p.PackFixedBytes(a[:])
}

// UnpackAddress unpacks an [Address] into [dest]. The address must
// not be empty.
func (p *Packer) UnpackAddress(dest *Address) {
	copy((*dest)[:], p.p.UnpackFixedBytes(AddressLen))
	if *dest == EmptyAddress {
		p.AddErr(fmt.Errorf("%w: Address field is not populated", ErrFieldNotPopulated))
	}
}

func (p *Packer) PackFixedBytes(b []byte) {
	p.p.PackFixedBytes(b)
}

func (p *Packer) UnpackFixedBytes(size int, dest *[]byte) {
	*dest = p.p.UnpackFixedBytes(size)
}

func (p *Packer) PackBytes(b []byte) {
	p.p.PackBytes(b)
}

// UnpackBytes unpacks [limit] bytes into [dest]. Otherwise
// if [limit] >= 0, UnpackBytes unpacks a byte slice array into [dest]. If
// [required] is set to true and the amount of bytes written to [dest] is 0,
// UnpackBytes adds an err ErrFieldNotPopulated to the Packer.
func (p *Packer) UnpackBytes(limit int, required bool, dest *[]byte) {
	if limit >= 0 {
		*dest = p.p.UnpackLimitedBytes(uint32(limit))
	} else {
		*dest = p.p.UnpackBytes()
	}
	if required && len(*dest) == 0 {
		p.AddErr(fmt.Errorf("%w: Bytes field is not populated", ErrFieldNotPopulated))
	}
}

func (p *Packer) PackString(s string) {
	p.p.PackStr(s)
}

// UnpackString unpacks a UTF-8 string.
func (p *Packer) UnpackString(required bool) string {
	str := p.p.UnpackStr()
	if required && len(str) == 0 {
		p.AddErr(fmt.Errorf("%w: String field is not populated", ErrFieldNotPopulated))
	}
	if !utf8.ValidString(str) {
		p.AddErr(ErrInvalidUTF8)
	}
	return str
}
