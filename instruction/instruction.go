// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package instruction implements the wire format of the raw ledger program:
// a one byte tag followed by fixed-width little-endian fields.
package instruction

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/vaultvm/consts"
)

type Tag uint8

const (
	InitializeTag Tag = 0
	DepositTag    Tag = 1
	WithdrawTag   Tag = 2
)

var (
	ErrDecode         = errors.New("decode error")
	ErrEmpty          = fmt.Errorf("%w: empty instruction", ErrDecode)
	ErrTruncated      = fmt.Errorf("%w: truncated instruction", ErrDecode)
	ErrUnknownTag     = fmt.Errorf("%w: unknown tag", ErrDecode)
	ErrTrailingBytes  = fmt.Errorf("%w: trailing bytes", ErrDecode)
	ErrNilInstruction = errors.New("nil instruction")
)

// Instruction is one of [Initialize], [Deposit] or [Withdraw].
type Instruction interface {
	Tag() Tag
	size() int
}

// Initialize creates the ledger buffer with a zero total.
type Initialize struct{}

// Deposit moves [Amount] into the ledger account.
type Deposit struct {
	Amount uint64
}

// Withdraw releases a tenth of the deposited total.
type Withdraw struct{}

func (Initialize) Tag() Tag { return InitializeTag }
func (Deposit) Tag() Tag    { return DepositTag }
func (Withdraw) Tag() Tag   { return WithdrawTag }

func (Initialize) size() int { return consts.ByteLen }
func (Deposit) size() int    { return consts.ByteLen + consts.Uint64Len }
func (Withdraw) size() int   { return consts.ByteLen }

// Encode returns the wire form of [i]. Pointers to instructions are
// encoded as the values they point to.
func Encode(i Instruction) ([]byte, error) {
	i, err := deref(i)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 1, i.size())
	b[0] = byte(i.Tag())
	if d, ok := i.(Deposit); ok {
		b = binary.LittleEndian.AppendUint64(b, d.Amount)
	}
	return b, nil
}

func deref(i Instruction) (Instruction, error) {
	switch v := i.(type) {
	case nil:
		return nil, ErrNilInstruction
	case Initialize, Deposit, Withdraw:
		return v, nil
	case *Initialize:
		if v == nil {
			return nil, ErrNilInstruction
		}
		return *v, nil
	case *Deposit:
		if v == nil {
			return nil, ErrNilInstruction
		}
		return *v, nil
	case *Withdraw:
		if v == nil {
			return nil, ErrNilInstruction
		}
		return *v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownTag, i)
	}
}

// Decode parses [b] into exactly one instruction. Every failure wraps
// [ErrDecode].
func Decode(b []byte) (Instruction, error) {
	if len(b) == 0 {
		return nil, ErrEmpty
	}
	var i Instruction
	switch tag := Tag(b[0]); tag {
	case InitializeTag:
		i = Initialize{}
	case DepositTag:
		if len(b) < consts.ByteLen+consts.Uint64Len {
			return nil, fmt.Errorf("%w: deposit needs %d bytes, found %d", ErrTruncated, consts.ByteLen+consts.Uint64Len, len(b))
		}
		i = Deposit{Amount: binary.LittleEndian.Uint64(b[consts.ByteLen:])}
	case WithdrawTag:
		i = Withdraw{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}
	if len(b) != i.size() {
		return nil, fmt.Errorf("%w: %d extra", ErrTrailingBytes, len(b)-i.size())
	}
	return i, nil
}
