// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"
)

func TestPermissions(t *testing.T) {
	tests := []struct {
		name       string
		permission Permissions
		canRead    bool
		canAlloc   bool
		canWrite   bool
		mutates    bool
	}{
		{
			name:       "none",
			permission: None,
		},
		{
			name:       "read",
			permission: Read,
			canRead:    true,
		},
		{
			name:       "allocate",
			permission: Allocate,
			canRead:    true,
			canAlloc:   true,
			mutates:    true,
		},
		{
			name:       "write",
			permission: Write,
			canRead:    true,
			canWrite:   true,
			mutates:    true,
		},
		{
			name:       "all",
			permission: All,
			canRead:    true,
			canAlloc:   true,
			canWrite:   true,
			mutates:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.canRead, tt.permission.Has(Read))
			require.Equal(tt.canAlloc, tt.permission.Has(Allocate))
			require.Equal(tt.canWrite, tt.permission.Has(Write))
			require.Equal(tt.mutates, tt.permission.Mutates())
		})
	}
}

func TestKeysUnion(t *testing.T) {
	require := require.New(t)

	k := Keys{"a": Read}
	k.Add("a", Write)
	k.Union(Keys{"a": Allocate, "b": Read})
	require.Equal(All, k["a"])
	require.Equal(Read, k["b"])

	require.True(k.Covers(Keys{"a": Write, "b": Read}))
	require.False(k.Covers(Keys{"b": Write}))
	require.False(k.Covers(Keys{"c": Read}))
}

func TestRecorder(t *testing.T) {
	var (
		require = require.New(t)
		ctx     = context.Background()
		base    = ImmutableStorage{"existing": []byte{1}}
		r       = NewRecorder(base)
	)

	v, err := r.GetValue(ctx, []byte("existing"))
	require.NoError(err)
	require.Equal([]byte{1}, v)

	_, err = r.GetValue(ctx, []byte("missing"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(r.Insert(ctx, []byte("existing"), []byte{2}))
	require.NoError(r.Insert(ctx, []byte("new"), []byte{3}))
	require.NoError(r.Remove(ctx, []byte("gone")))

	v, err = r.GetValue(ctx, []byte("existing"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
	_, err = r.GetValue(ctx, []byte("gone"))
	require.ErrorIs(err, database.ErrNotFound)

	require.Equal(Keys{
		"existing": Read | Write,
		"missing":  Read,
		"new":      Allocate | Write,
		"gone":     Write,
	}, r.Keys())

	// The underlying state is untouched.
	require.Equal([]byte{1}, base["existing"])
}

func TestMutableStorage(t *testing.T) {
	var (
		require = require.New(t)
		ctx     = context.Background()
		m       = MutableStorage{}
	)
	require.NoError(m.Insert(ctx, []byte("k"), []byte{1}))
	v, err := m.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte{1}, v)
	require.NoError(m.Remove(ctx, []byte("k")))
	_, err = m.GetValue(ctx, []byte("k"))
	require.ErrorIs(err, database.ErrNotFound)
}
