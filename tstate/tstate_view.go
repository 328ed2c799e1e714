// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/vaultvm/keys"
	"github.com/ava-labs/vaultvm/state"
)

const defaultOps = 4

var _ state.Mutable = (*TStateView)(nil)

type op struct {
	k string

	pastExists  bool
	pastV       []byte
	pastChanged bool
}

// TStateView is the staged state of a single transaction. Nothing it
// writes is visible to other views until [Commit] is called.
type TStateView struct {
	ts                 *TState
	pendingChangedKeys map[string]maybe.Maybe[[]byte]

	// Ops is a record of all operations performed on the view. Tracking
	// operations allows for reverting state to a certain point-in-time.
	ops []*op

	scope        state.Keys
	scopeStorage map[string][]byte
}

// NewView returns a view limited to the keys in [scope]. [storage] holds
// the persisted values of the keys in [scope] that exist.
func (ts *TState) NewView(scope state.Keys, storage map[string][]byte) *TStateView {
	return &TStateView{
		ts:                 ts,
		pendingChangedKeys: make(map[string]maybe.Maybe[[]byte], len(scope)),

		ops: make([]*op, 0, defaultOps),

		scope:        scope,
		scopeStorage: storage,
	}
}

// Rollback restores the view to the state it had after [restorePoint]
// operations.
func (ts *TStateView) Rollback(_ context.Context, restorePoint int) {
	for i := len(ts.ops) - 1; i >= restorePoint; i-- {
		op := ts.ops[i]

		// Key was not modified by this view before the op.
		if !op.pastChanged {
			delete(ts.pendingChangedKeys, op.k)
			continue
		}
		if !op.pastExists {
			ts.pendingChangedKeys[op.k] = maybe.Nothing[[]byte]()
			continue
		}
		ts.pendingChangedKeys[op.k] = maybe.Some(op.pastV)
	}
	ts.ops = ts.ops[:restorePoint]
}

// OpIndex returns the number of operations done on ts.
func (ts *TStateView) OpIndex() int {
	return len(ts.ops)
}

func (ts *TStateView) checkScope(k string, require state.Permissions) error {
	if !ts.scope[k].Has(require) {
		return fmt.Errorf("%w: %x needs %d, has %d", ErrKeyNotSpecified, k, require, ts.scope[k])
	}
	return nil
}

// GetValue returns the value of [key] or [database.ErrNotFound].
func (ts *TStateView) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	k := string(key)
	if err := ts.checkScope(k, state.Read); err != nil {
		return nil, err
	}
	v, _, exists := ts.getValue(ctx, k)
	if !exists {
		return nil, database.ErrNotFound
	}
	return v, nil
}

// getValue returns the value of [key] along with whether it was changed
// in this block and whether it exists.
func (ts *TStateView) getValue(ctx context.Context, key string) ([]byte, bool, bool) {
	if v, ok := ts.pendingChangedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	if v, changed, exists := ts.ts.getChangedValue(ctx, key); changed {
		return v, true, exists
	}
	if v, ok := ts.scopeStorage[key]; ok {
		return v, false, true
	}
	return nil, false, false
}

// Insert sets [key] to [value]. Creating a key requires [state.Allocate]
// and overwriting one requires [state.Write].
//
// Any bytes passed into [Insert] will be consumed by [TState] and should
// not be modified/referenced after this call.
func (ts *TStateView) Insert(ctx context.Context, key []byte, value []byte) error {
	k := string(key)
	if !keys.VerifyValue(k, value) {
		return ErrInvalidKeyValue
	}
	past, changed, exists := ts.getValue(ctx, k)
	if exists {
		if err := ts.checkScope(k, state.Write); err != nil {
			return err
		}
	} else if !ts.scope[k].Has(state.Allocate) {
		return fmt.Errorf("%w: %x", ErrAllocationDisabled, k)
	}
	ts.pendingChangedKeys[k] = maybe.Some(value)
	ts.ops = append(ts.ops, &op{
		k: k,

		pastExists:  exists,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// Remove deletes [key]. Removing a missing key is a no-op.
func (ts *TStateView) Remove(ctx context.Context, key []byte) error {
	k := string(key)
	if err := ts.checkScope(k, state.Write); err != nil {
		return err
	}
	past, changed, exists := ts.getValue(ctx, k)
	if !exists {
		return nil
	}
	ts.pendingChangedKeys[k] = maybe.Nothing[[]byte]()
	ts.ops = append(ts.ops, &op{
		k: k,

		pastExists:  true,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// PendingChanges returns the number of keys this view changed.
func (ts *TStateView) PendingChanges() int {
	return len(ts.pendingChangedKeys)
}

// Commit publishes the changes of the view to [TState].
func (ts *TStateView) Commit() {
	ts.ts.l.Lock()
	defer ts.ts.l.Unlock()

	for k, v := range ts.pendingChangedKeys {
		ts.ts.changedKeys[k] = v
	}
	ts.ts.ops += len(ts.ops)
}
