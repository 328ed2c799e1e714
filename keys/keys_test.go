// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeChunks(t *testing.T) {
	require := require.New(t)

	k := EncodeChunks([]byte{1, 2, 3}, 4)
	require.Equal(string([]byte{1, 2, 3, 0, 4}), k)
	chunks, ok := MaxChunks(k)
	require.True(ok)
	require.Equal(uint16(4), chunks)

	_, ok = MaxChunks("a")
	require.False(ok)
	require.False(Valid("a"))
	require.True(Valid(k))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		size   int
		chunks uint16
	}{
		{0, 0},
		{1, 1},
		{ChunkSize, 1},
		{ChunkSize + 1, 2},
		{3 * ChunkSize, 3},
	}
	for _, tt := range tests {
		require := require.New(t)
		k, ok := Encode(nil, tt.size)
		require.True(ok)
		chunks, ok := MaxChunks(k)
		require.True(ok)
		require.Equal(tt.chunks, chunks, "size %d", tt.size)
	}
}

func TestVerifyValue(t *testing.T) {
	require := require.New(t)

	k, ok := Encode([]byte("key"), 100)
	require.True(ok)
	require.True(VerifyValue(k, nil))
	require.True(VerifyValue(k, bytes.Repeat([]byte{1}, 128)))
	require.False(VerifyValue(k, bytes.Repeat([]byte{1}, 129)))
	require.False(VerifyValue("k", []byte{1}))
}
