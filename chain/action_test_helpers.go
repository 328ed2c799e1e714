// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/tstate"
)

// ActionTest is a single case of an [ActionTestSuite].
type ActionTest struct {
	Name string

	Action Action

	Rules     Rules
	State     state.Mutable
	Timestamp int64
	Actor     codec.Address
	ActionID  ids.ID

	ExpectedOutputs [][]byte
	ExpectedErr     error

	// Assertion runs against [State] after execution.
	Assertion func(context.Context, *testing.T, state.Mutable)
}

// ActionTestSuite executes each action the way the processor does: on a
// view scoped to the keys the action declares. Changes reach [State] only
// if the action succeeds.
type ActionTestSuite []ActionTest

func (suite ActionTestSuite) Run(t *testing.T) {
	for _, test := range suite {
		t.Run(test.Name, func(t *testing.T) {
			test.Run(context.Background(), t)
		})
	}
}

func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	require := require.New(t)

	keys, err := test.Action.StateKeys(test.Rules, test.Actor)
	if err != nil {
		// An action whose keys cannot be derived never executes.
		require.ErrorIs(err, test.ExpectedErr)
		require.NotNil(test.ExpectedErr)
		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
		return
	}
	storage := map[string][]byte{}
	for k := range keys {
		v, err := test.State.GetValue(ctx, []byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		require.NoError(err)
		storage[k] = v
	}

	ts := tstate.New(len(keys))
	view := ts.NewView(keys, storage)
	outputs, err := test.Action.Execute(ctx, test.Rules, view, test.Timestamp, test.Actor, test.ActionID)
	require.ErrorIs(err, test.ExpectedErr)
	if err == nil {
		require.Equal(test.ExpectedOutputs, outputs)
		view.Commit()
		_, err := ts.Flush(&stateWriter{ctx: ctx, mu: test.State})
		require.NoError(err)
	}

	if test.Assertion != nil {
		test.Assertion(ctx, t, test.State)
	}
}

// stateWriter writes flushed changes to a [state.Mutable].
type stateWriter struct {
	ctx context.Context
	mu  state.Mutable
}

func (w *stateWriter) Put(key []byte, value []byte) error {
	return w.mu.Insert(w.ctx, key, value)
}

func (w *stateWriter) Delete(key []byte) error {
	return w.mu.Remove(w.ctx, key)
}
