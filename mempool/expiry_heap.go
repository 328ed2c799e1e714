// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

type expiryEntry[T Item] struct {
	id     ids.ID
	item   T
	expiry int64
	seq    uint64 // arrival order among equal expiries

	index int
}

// expiryHeap orders pending items by expiry. Items that expire together
// leave in the order they arrived.
type expiryHeap[T Item] struct {
	items  []*expiryEntry[T]
	lookup map[ids.ID]*expiryEntry[T]
}

func newExpiryHeap[T Item](items int) *expiryHeap[T] {
	return &expiryHeap[T]{
		items:  make([]*expiryEntry[T], 0, items),
		lookup: make(map[ids.ID]*expiryEntry[T], items),
	}
}

func (h expiryHeap[T]) Len() int { return len(h.items) }

func (h expiryHeap[T]) Less(i, j int) bool {
	if h.items[i].expiry != h.items[j].expiry {
		return h.items[i].expiry < h.items[j].expiry
	}
	return h.items[i].seq < h.items[j].seq
}

func (h expiryHeap[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *expiryHeap[T]) Push(x interface{}) {
	entry, ok := x.(*expiryEntry[T])
	if !ok {
		panic(fmt.Errorf("unexpected %T, expected *expiryEntry", x))
	}
	if h.has(entry.id) {
		return
	}
	entry.index = len(h.items)
	h.items = append(h.items, entry)
	h.lookup[entry.id] = entry
}

func (h *expiryHeap[T]) Pop() interface{} {
	n := len(h.items)
	item := h.items[n-1]
	h.items[n-1] = nil // avoid memory leak
	h.items = h.items[0 : n-1]
	delete(h.lookup, item.id)
	return item
}

func (h *expiryHeap[T]) get(id ids.ID) (*expiryEntry[T], bool) {
	entry, ok := h.lookup[id]
	return entry, ok
}

func (h *expiryHeap[T]) has(id ids.ID) bool {
	_, ok := h.lookup[id]
	return ok
}

func (h *expiryHeap[T]) peek() (*expiryEntry[T], bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0], true
}
