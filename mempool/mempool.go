// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"container/heap"
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/vaultvm/codec"
)

const maxPrealloc = 4_096

type Item interface {
	ID() ids.ID
	Sponsor() codec.Address
	Expiry() int64
	Size() int
}

// Mempool holds pending items until they are built into a batch. Items
// are released in order of expiry.
type Mempool[T Item] struct {
	mu sync.RWMutex

	maxSize        int
	maxSponsorSize int // Maximum items allowed by a single sponsor

	queue *expiryHeap[T]
	seq   uint64
	size  int // sum of item sizes

	// owned counts the pending items of each sponsor
	owned map[codec.Address]int

	// sponsors that are exempt from [maxSponsorSize]
	exemptSponsors set.Set[codec.Address]
}

// New creates a new [Mempool]. [maxSize] must be > 0 or else the
// implementation may panic.
func New[T Item](
	maxSize int,
	maxSponsorSize int,
	exemptSponsors []codec.Address,
) *Mempool[T] {
	m := &Mempool[T]{
		maxSize:        maxSize,
		maxSponsorSize: maxSponsorSize,
		queue:          newExpiryHeap[T](min(maxSize, maxPrealloc)),
		owned:          map[codec.Address]int{},
		exemptSponsors: set.Of(exemptSponsors...),
	}
	return m
}

// Has returns if [m] contains [itemID]
func (m *Mempool[T]) Has(_ context.Context, itemID ids.ID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.queue.has(itemID)
}

// Add pushes all new items from [items] to [m]. An item is dropped if
// [m] is full or its sponsor is not exempt and already has
// [maxSponsorSize] pending items.
func (m *Mempool[T]) Add(_ context.Context, items []T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		if m.queue.has(item.ID()) {
			continue
		}
		if m.queue.Len() >= m.maxSize {
			continue
		}
		sponsor := item.Sponsor()
		if !m.exemptSponsors.Contains(sponsor) && m.owned[sponsor] >= m.maxSponsorSize {
			continue // do nothing, wait for items to expire
		}
		m.seq++
		heap.Push(m.queue, &expiryEntry[T]{
			id:     item.ID(),
			item:   item,
			expiry: item.Expiry(),
			seq:    m.seq,
		})
		m.owned[sponsor]++
		m.size += item.Size()
	}
}

func (m *Mempool[T]) remove(id ids.ID) (T, bool) {
	entry, ok := m.queue.get(id)
	if !ok {
		var empty T
		return empty, false
	}
	heap.Remove(m.queue, entry.index)
	sponsor := entry.item.Sponsor()
	m.owned[sponsor]--
	if m.owned[sponsor] <= 0 {
		delete(m.owned, sponsor)
	}
	m.size -= entry.item.Size()
	return entry.item, true
}

// PeekNext returns the item that expires first.
func (m *Mempool[T]) PeekNext(_ context.Context) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.queue.peek()
	if !ok {
		var empty T
		return empty, false
	}
	return entry.item, true
}

// PopNext removes and returns the item that expires first.
func (m *Mempool[T]) PopNext(_ context.Context) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.queue.peek()
	if !ok {
		var empty T
		return empty, false
	}
	return m.remove(entry.id)
}

// Stream removes and returns up to [count] items in expiry order.
func (m *Mempool[T]) Stream(_ context.Context, count int) []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]T, 0, min(count, m.queue.Len()))
	for len(items) < count {
		entry, ok := m.queue.peek()
		if !ok {
			break
		}
		item, _ := m.remove(entry.id)
		items = append(items, item)
	}
	return items
}

// Remove removes [items] from [m].
func (m *Mempool[T]) Remove(_ context.Context, items []T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		m.remove(item.ID())
	}
}

// Len returns the number of items in [m].
func (m *Mempool[T]) Len(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.queue.Len()
}

// Size returns the sum of the sizes of the items in [m].
func (m *Mempool[T]) Size(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.size
}

// SetMinTimestamp removes all items with a lower expiry than [t] from [m].
// SetMinTimestamp returns the list of removed items.
func (m *Mempool[T]) SetMinTimestamp(_ context.Context, t int64) []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := []T{}
	for {
		entry, ok := m.queue.peek()
		if !ok || entry.expiry >= t {
			break
		}
		item, _ := m.remove(entry.id)
		removed = append(removed, item)
	}
	return removed
}
