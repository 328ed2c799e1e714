// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/state"
)

const MetadataSize = consts.Uint64Len + consts.Int64Len

// Metadata tracks the batches a node has executed. Its absence means
// genesis has not been loaded.
type Metadata struct {
	Height    uint64 `json:"height"`
	Timestamp int64  `json:"timestamp"`
}

func MetadataKey() []byte {
	k := make([]byte, consts.ByteLen+consts.Uint16Len)
	k[0] = metadataPrefix
	binary.BigEndian.PutUint16(k[1:], chunks(MetadataSize))
	return k
}

func GetMetadata(ctx context.Context, im state.Immutable) (*Metadata, bool, error) {
	v, exists, err := get(ctx, im, MetadataKey())
	if err != nil || !exists {
		return nil, false, err
	}
	p := codec.NewReader(v, MetadataSize)
	m := &Metadata{
		Height:    p.UnpackUint64(false),
		Timestamp: p.UnpackInt64(false),
	}
	if err := p.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	return m, true, nil
}

func SetMetadata(ctx context.Context, mu state.Mutable, m *Metadata) error {
	p := codec.NewWriter(MetadataSize, MetadataSize)
	p.PackUint64(m.Height)
	p.PackInt64(m.Timestamp)
	return mu.Insert(ctx, MetadataKey(), p.Bytes())
}
