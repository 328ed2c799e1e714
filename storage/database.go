// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/corruptabledb"

	"github.com/ava-labs/vaultvm/pebble"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/utils"
)

var _ state.Immutable = (*Reader)(nil)

// New opens the pebble database [namespace] under [dataDir] and registers
// its metrics with [gatherer].
func New(cfg pebble.Config, dataDir string, namespace string, gatherer metrics.MultiGatherer) (database.Database, error) {
	path, err := utils.InitSubDirectory(dataDir, namespace)
	if err != nil {
		return nil, err
	}
	db, registry, err := pebble.New(path, cfg)
	if err != nil {
		return nil, err
	}
	if err := gatherer.Register(namespace, registry); err != nil {
		_ = db.Close()
		return nil, err
	}
	return corruptabledb.New(db), nil
}

// Reader serves persisted state to queries outside of execution.
type Reader struct {
	db database.KeyValueReader
}

func NewReader(db database.KeyValueReader) *Reader {
	return &Reader{db: db}
}

func (r *Reader) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return r.db.Get(key)
}
