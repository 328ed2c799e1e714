// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
)

var _ database.Batch = (*batch)(nil)

type op struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	d     *Database
	batch *pebble.Batch
	ops   []op
	size  int
}

func (d *Database) NewBatch() database.Batch {
	return &batch{d: d, batch: d.db.NewBatch()}
}

func (b *batch) Put(key []byte, value []byte) error {
	b.ops = append(b.ops, op{key: key, value: value})
	b.size += len(key) + len(value)
	return b.batch.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: key, delete: true})
	b.size += len(key)
	return b.batch.Delete(key, nil)
}

func (b *batch) Size() int {
	return b.size
}

func (b *batch) Write() error {
	b.d.lock.RLock()
	defer b.d.lock.RUnlock()

	if b.d.closed {
		return database.ErrClosed
	}
	return updateError(b.batch.Commit(b.d.writeOptions()))
}

func (b *batch) Reset() {
	b.batch.Reset()
	b.ops = b.ops[:0]
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	for _, o := range b.ops {
		if o.delete {
			if err := w.Delete(o.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(o.key, o.value); err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) Inner() database.Batch {
	return b
}
