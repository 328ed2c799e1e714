// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/vaultvm/consts"
)

// CounterBits is the width of a vault counter. It is twice the width of a
// single amount so that the maximum amount can be accumulated 2^64 times.
const CounterBits = 128

// MaxCounter is 2^128 - 1.
var MaxCounter = Counter{v: uint256.Int{consts.MaxUint64, consts.MaxUint64, 0, 0}}

// Counter is a cumulative 128-bit unsigned total. Counters only grow.
type Counter struct {
	v uint256.Int
}

func NewCounter(v uint64) Counter {
	return Counter{v: *uint256.NewInt(v)}
}

// Add returns c + amount or [ErrOverflow] if the result does not fit in
// [CounterBits].
func (c Counter) Add(amount uint64) (Counter, error) {
	var out Counter
	if _, overflow := out.v.AddOverflow(&c.v, uint256.NewInt(amount)); overflow || out.v.BitLen() > CounterBits {
		return c, fmt.Errorf("%w: %s + %d", ErrOverflow, c, amount)
	}
	return out, nil
}

// Diff returns c - o. It fails with [ErrInvariantViolated] if o > c.
func (c Counter) Diff(o Counter) (Counter, error) {
	var out Counter
	if _, underflow := out.v.SubOverflow(&c.v, &o.v); underflow {
		return Counter{}, fmt.Errorf("%w: %s < %s", ErrInvariantViolated, c, o)
	}
	return out, nil
}

// Cmp returns -1, 0 or +1 when c is less than, equal to or greater than o.
func (c Counter) Cmp(o Counter) int {
	return c.v.Cmp(&o.v)
}

func (c Counter) IsZero() bool {
	return c.v.IsZero()
}

// Uint64 returns the value of c if it fits in 64 bits.
func (c Counter) Uint64() (uint64, bool) {
	return c.v.Uint64(), c.v.IsUint64()
}

// Bytes returns the 16 byte big-endian encoding of c.
func (c Counter) Bytes() [consts.Uint128Len]byte {
	b32 := c.v.Bytes32()
	var out [consts.Uint128Len]byte
	copy(out[:], b32[32-consts.Uint128Len:])
	return out
}

// CounterFromBytes parses the 16 byte encoding produced by [Counter.Bytes].
func CounterFromBytes(b []byte) (Counter, error) {
	if len(b) != consts.Uint128Len {
		return Counter{}, fmt.Errorf("%w: counter length %d", ErrInvalidRecord, len(b))
	}
	var c Counter
	c.v.SetBytes(b)
	return c, nil
}

func (c Counter) String() string {
	return c.v.ToBig().String()
}

// MarshalJSON encodes c as a decimal string, since it may exceed the range
// of a JSON number.
func (c Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Counter) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return err
	}
	if v.BitLen() > CounterBits {
		return fmt.Errorf("%w: %s", ErrOverflow, s)
	}
	c.v = *v
	return nil
}
