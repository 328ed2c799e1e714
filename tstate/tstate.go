// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/vaultvm/keys"
)

// TState defines a struct for storing temporary state.
type TState struct {
	l           sync.RWMutex
	changedKeys map[string]maybe.Maybe[[]byte]
	ops         int
}

// New returns a new instance of TState.
//
// [changedSize] is an estimate of the number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize)}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// GetChangedValue returns the committed value of [key], whether a
// committed view changed it and whether it still exists.
func (ts *TState) GetChangedValue(ctx context.Context, key []byte) ([]byte, bool, bool) {
	return ts.getChangedValue(ctx, string(key))
}

// Insert writes [value] without any scope checks. It is only used when
// seeding state outside of transaction execution.
func (ts *TState) Insert(_ context.Context, key []byte, value []byte) error {
	if !keys.VerifyValue(string(key), value) {
		return ErrInvalidKeyValue
	}
	ts.l.Lock()
	defer ts.l.Unlock()

	ts.changedKeys[string(key)] = maybe.Some(value)
	return nil
}

// PendingChanges returns the number of keys changed by committed views.
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// OpIndex returns the number of operations committed to [TState].
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// Flush writes every committed change to [batch] in key order. [TState]
// should not be used after it is flushed.
func (ts *TState) Flush(batch database.KeyValueWriterDeleter) (int, error) {
	ts.l.Lock()
	defer ts.l.Unlock()

	changed := maps.Keys(ts.changedKeys)
	slices.Sort(changed)
	for _, k := range changed {
		v := ts.changedKeys[k]
		if v.IsNothing() {
			if err := batch.Delete([]byte(k)); err != nil {
				return 0, err
			}
			continue
		}
		if err := batch.Put([]byte(k), v.Value()); err != nil {
			return 0, err
		}
	}
	return len(changed), nil
}
