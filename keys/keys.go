// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keys encodes the maximum size of a stored value into the suffix
// of its state key, so a key can be checked against the value written to it.
package keys

import (
	"encoding/binary"

	"github.com/ava-labs/vaultvm/consts"
)

// ChunkSize is the unit in which value sizes are declared.
const ChunkSize = 64 // bytes

// Valid reports whether [key] is long enough to carry a chunk suffix.
func Valid(key string) bool {
	return len(key) >= consts.Uint16Len
}

// MaxChunks returns the chunk suffix of [key].
func MaxChunks(key string) (uint16, bool) {
	l := len(key)
	if l < consts.Uint16Len {
		return 0, false
	}
	return binary.BigEndian.Uint16([]byte(key[l-consts.Uint16Len:])), true
}

// NumChunks returns the number of chunks needed to store [value].
func NumChunks(value []byte) (uint16, bool) {
	return numChunks(len(value))
}

func numChunks(valueLen int) (uint16, bool) {
	if valueLen == 0 {
		return 0, true
	}
	raw := (valueLen + ChunkSize - 1) / ChunkSize
	if raw > int(consts.MaxUint16) {
		return 0, false
	}
	return uint16(raw), true
}

// VerifyValue reports whether [value] fits in the chunks declared by [key].
func VerifyValue(key string, value []byte) bool {
	valueChunks, ok := NumChunks(value)
	if !ok {
		return false
	}
	keyChunks, ok := MaxChunks(key)
	if !ok {
		return false
	}
	return valueChunks <= keyChunks
}

// Encode appends the number of chunks needed to hold [maxSize] bytes.
func Encode(key []byte, maxSize int) (string, bool) {
	chunks, ok := numChunks(maxSize)
	if !ok {
		return "", false
	}
	return EncodeChunks(key, chunks), true
}

// EncodeChunks appends [maxChunks] to [key].
func EncodeChunks(key []byte, maxChunks uint16) string {
	out := make([]byte, len(key), len(key)+consts.Uint16Len)
	copy(out, key)
	return string(binary.BigEndian.AppendUint16(out, maxChunks))
}
