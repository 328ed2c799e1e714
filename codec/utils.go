// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/ava-labs/vaultvm/consts"

// BytesLen is the packed size of [msg] when written with PackBytes.
func BytesLen(msg []byte) int {
	return consts.IntLen + len(msg)
}

// StringLen is the packed size of [msg] when written with PackString.
func StringLen(msg string) int {
	return consts.Uint16Len + len(msg)
}
