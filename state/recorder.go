// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
)

var _ Mutable = (*Recorder)(nil)

// Recorder wraps an [Immutable] state and records which keys are accessed
// and with what permissions. Writes are buffered and never reach the
// underlying state.
type Recorder struct {
	state Immutable
	// base caches values read from [state]. A nil value means the key was
	// not found.
	base    map[string][]byte
	changes map[string][]byte
	keys    Keys
}

func NewRecorder(db Immutable) *Recorder {
	return &Recorder{
		state:   db,
		base:    map[string][]byte{},
		changes: map[string][]byte{},
		keys:    Keys{},
	}
}

func (r *Recorder) load(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := r.base[string(key)]; ok {
		return v, nil
	}
	v, err := r.state.GetValue(ctx, key)
	switch {
	case err == nil:
		r.base[string(key)] = v
		return v, nil
	case errors.Is(err, database.ErrNotFound):
		r.base[string(key)] = nil
		return nil, nil
	default:
		return nil, err
	}
}

func (r *Recorder) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	v, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}
	k := string(key)
	r.keys[k] |= Read
	if changed, ok := r.changes[k]; ok {
		v = changed
	}
	if v == nil {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (r *Recorder) Insert(ctx context.Context, key []byte, value []byte) error {
	v, err := r.load(ctx, key)
	if err != nil {
		return err
	}
	k := string(key)
	if v != nil {
		r.keys[k] |= Write
	} else {
		r.keys[k] |= Allocate | Write
	}
	r.changes[k] = value
	return nil
}

func (r *Recorder) Remove(_ context.Context, key []byte) error {
	k := string(key)
	r.keys[k] |= Write
	r.changes[k] = nil
	return nil
}

// Keys returns the keys accessed so far.
func (r *Recorder) Keys() Keys {
	return r.keys
}
