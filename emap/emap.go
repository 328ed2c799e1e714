// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"container/heap"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
)

// Item is anything tracked by an [EMap] until its expiry passes.
type Item interface {
	ID() ids.ID
	Expiry() int64
}

type bucket struct {
	t     int64
	items []ids.ID
}

type bucketHeap []*bucket

func (b bucketHeap) Len() int           { return len(b) }
func (b bucketHeap) Less(i, j int) bool { return b[i].t < b[j].t }
func (b bucketHeap) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

func (b *bucketHeap) Push(x any) {
	*b = append(*b, x.(*bucket))
}

func (b *bucketHeap) Pop() any {
	old := *b
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*b = old[:n-1]
	return x
}

// EMap remembers the ids of items until their expiry is older than the
// minimum set with [EMap.SetMin]. It is used to reject replays of
// transactions that are still within their validity window.
type EMap[T Item] struct {
	mu sync.RWMutex

	bh    bucketHeap
	seen  set.Set[ids.ID]
	times map[int64]*bucket
}

func NewEMap[T Item]() *EMap[T] {
	return &EMap[T]{
		seen:  set.Set[ids.ID]{},
		times: map[int64]*bucket{},
	}
}

// Add records [items]. Items already present are ignored.
func (e *EMap[T]) Add(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		e.add(item.ID(), item.Expiry())
	}
}

func (e *EMap[T]) add(id ids.ID, t int64) {
	if e.seen.Contains(id) {
		return
	}
	e.seen.Add(id)

	if b, ok := e.times[t]; ok {
		b.items = append(b.items, id)
		return
	}
	b := &bucket{t: t, items: []ids.ID{id}}
	e.times[t] = b
	heap.Push(&e.bh, b)
}

// SetMin evicts every item that expires before [t] and returns their ids.
func (e *EMap[T]) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	evicted := []ids.ID{}
	for len(e.bh) > 0 && e.bh[0].t < t {
		b := heap.Pop(&e.bh).(*bucket)
		for _, id := range b.items {
			e.seen.Remove(id)
			evicted = append(evicted, id)
		}
		delete(e.times, b.t)
	}
	return evicted
}

// Any returns true if any of [items] is tracked.
func (e *EMap[T]) Any(items []T) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, item := range items {
		if e.seen.Contains(item.ID()) {
			return true
		}
	}
	return false
}

// Contains marks the index of every tracked item in [marker]. Indices
// already in [marker] are skipped. If [stop] is set it returns after the
// first match.
func (e *EMap[T]) Contains(items []T, marker set.Bits, stop bool) set.Bits {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for i, item := range items {
		if marker.Contains(i) {
			continue
		}
		if e.seen.Contains(item.ID()) {
			marker.Add(i)
			if stop {
				return marker
			}
		}
	}
	return marker
}

func (e *EMap[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Len()
}
