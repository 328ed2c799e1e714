// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"container/heap"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/stretchr/testify/require"
)

type testTx struct {
	id ids.ID
	t  int64
}

func (tx *testTx) ID() ids.ID    { return tx.id }
func (tx *testTx) Expiry() int64 { return tx.t }

func newTx(t int64) *testTx {
	return &testTx{id: ids.GenerateTestID(), t: t}
}

func TestBucketHeapOrder(t *testing.T) {
	require := require.New(t)

	bh := &bucketHeap{}
	for _, ts := range []int64{5, 1, 3} {
		heap.Push(bh, &bucket{t: ts})
	}
	require.Equal(3, bh.Len())
	require.Equal(int64(1), heap.Pop(bh).(*bucket).t)
	require.Equal(int64(3), heap.Pop(bh).(*bucket).t)
	require.Equal(int64(5), heap.Pop(bh).(*bucket).t)
	require.Zero(bh.Len())
}

func TestAddSharesBucket(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	tx1, tx2 := newTx(1_000), newTx(1_000)
	e.Add([]*testTx{tx1})
	e.Add([]*testTx{tx2})

	require.True(e.seen.Contains(tx1.ID()))
	require.True(e.seen.Contains(tx2.ID()))
	b, ok := e.times[1_000]
	require.True(ok)
	require.Len(b.items, 2)
	require.Equal(1, e.bh.Len())
	require.Equal(2, e.Len())
}

func TestAddIgnoresDuplicate(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	tx := newTx(1_000)
	e.Add([]*testTx{tx})
	e.Add([]*testTx{{id: tx.ID(), t: 3_000}})

	_, ok := e.times[3_000]
	require.False(ok)
	require.Len(e.times[1_000].items, 1)
	require.Equal(1, e.Len())
}

func TestAnyAndContains(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	seen, unseen := newTx(1_000), newTx(2_000)
	e.Add([]*testTx{seen})

	require.True(e.Any([]*testTx{unseen, seen}))
	require.False(e.Any([]*testTx{unseen}))

	marker := e.Contains([]*testTx{unseen, seen, seen}, set.NewBits(), false)
	require.False(marker.Contains(0))
	require.True(marker.Contains(1))
	require.True(marker.Contains(2))

	marker = e.Contains([]*testTx{seen, seen}, set.NewBits(), true)
	require.True(marker.Contains(0))
	require.False(marker.Contains(1))
}

func TestSetMin(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	pushed := []ids.ID{}
	for ts := int64(1); ts < 6; ts++ {
		tx := newTx(ts)
		e.Add([]*testTx{tx})
		pushed = append(pushed, tx.ID())
	}

	evicted := e.SetMin(3)
	require.Equal(pushed[:2], evicted)
	for i, id := range pushed {
		require.Equal(i >= 2, e.seen.Contains(id))
	}
	_, ok := e.times[2]
	require.False(ok)
	_, ok = e.times[3]
	require.True(ok)

	// An evicted id may be tracked again.
	e.Add([]*testTx{{id: pushed[0], t: 10}})
	require.True(e.seen.Contains(pushed[0]))
}

func TestSetMinPopsAll(t *testing.T) {
	require := require.New(t)
	e := NewEMap[*testTx]()

	pushed := []ids.ID{}
	for ts := int64(1); ts < 6; ts++ {
		tx := newTx(ts)
		e.Add([]*testTx{tx})
		pushed = append(pushed, tx.ID())
	}
	require.Equal(pushed, e.SetMin(10))
	require.Zero(e.Len())
	require.Empty(e.times)
	require.Zero(e.bh.Len())
	require.Empty(e.SetMin(20))
}
