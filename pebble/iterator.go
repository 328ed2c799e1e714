// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"bytes"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
)

var _ database.Iterator = (*iter)(nil)

type iter struct {
	d    *Database
	iter *pebble.Iterator

	started bool
	closed  bool
	err     error

	key   []byte
	value []byte
}

func (d *Database) NewIterator() database.Iterator {
	return d.NewIteratorWithStartAndPrefix(nil, nil)
}

func (d *Database) NewIteratorWithStart(start []byte) database.Iterator {
	return d.NewIteratorWithStartAndPrefix(start, nil)
}

func (d *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	return d.NewIteratorWithStartAndPrefix(nil, prefix)
}

// NewIteratorWithStartAndPrefix iterates over keys with [prefix] that are
// >= [start], in order.
func (d *Database) NewIteratorWithStartAndPrefix(start, prefix []byte) database.Iterator {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed {
		return &iter{d: d, closed: true, err: database.ErrClosed}
	}
	it, err := d.db.NewIter(keyRange(start, prefix))
	if err != nil {
		return &iter{d: d, closed: true, err: updateError(err)}
	}
	return &iter{d: d, iter: it}
}

func (it *iter) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	it.d.lock.RLock()
	closed := it.d.closed
	it.d.lock.RUnlock()
	if closed {
		it.err = database.ErrClosed
		it.release()
		return false
	}

	var ok bool
	if it.started {
		ok = it.iter.Next()
	} else {
		ok = it.iter.First()
		it.started = true
	}
	if !ok {
		it.key, it.value = nil, nil
		return false
	}
	it.key = append(it.key[:0], it.iter.Key()...)
	it.value = append(it.value[:0], it.iter.Value()...)
	return true
}

func (it *iter) Error() error {
	if it.err != nil || it.closed {
		return it.err
	}
	return updateError(it.iter.Error())
}

func (it *iter) Key() []byte {
	return it.key
}

func (it *iter) Value() []byte {
	return it.value
}

func (it *iter) Release() {
	it.release()
}

func (it *iter) release() {
	if it.closed {
		return
	}
	it.closed = true
	if err := it.iter.Close(); err != nil && it.err == nil {
		it.err = updateError(err)
	}
}

func keyRange(start, prefix []byte) *pebble.IterOptions {
	opt := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixBound(prefix),
	}
	if bytes.Compare(start, prefix) == 1 {
		opt.LowerBound = start
	}
	return opt
}

// prefixBound returns the smallest key that is larger than every key with
// [prefix], or nil if there is none.
func prefixBound(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	for i := len(bound) - 1; i >= 0; i-- {
		bound[i]++
		if bound[i] != 0 {
			return bound[:i+1]
		}
	}
	return nil
}
