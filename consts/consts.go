// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen          = 1
	BoolLen          = 1
	IDLen            = 32
	MaxUint8         = ^uint8(0)
	MaxUint16        = ^uint16(0)
	MaxUint          = ^uint(0)
	MaxInt           = int(MaxUint >> 1)
	IntLen           = 4
	Uint16Len        = 2
	Uint64Len        = 8
	Int64Len         = 8
	Uint128Len       = 16
	MaxUint64        = ^uint64(0)
	NetworkSizeLimit = 2_044_723 // 1.95 MiB

	MillisecondsPerSecond = 1000
)

// Address type prefixes. A registry will error during initialization if a
// duplicate ID is assigned, so these are assigned explicitly.
const (
	ED25519ID uint8 = 0
	DerivedID uint8 = 1
)
