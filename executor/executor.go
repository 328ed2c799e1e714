// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/ava-labs/vaultvm/state"
)

// Metrics is notified about how each task was scheduled.
type Metrics interface {
	RecordBlocked()
	RecordExecutable()
}

// Executor sequences the concurrent execution of
// tasks with arbitrary conflicts on-the-fly.
//
// A task that changes a key runs after every earlier task that touched
// that key. A task that only reads a key runs after the last earlier task
// that changed it, concurrently with other readers.
type Executor struct {
	metrics Metrics

	added int
	tasks []*task
	edges map[string]*edge
	slots chan struct{}

	outstanding sync.WaitGroup

	err atomic.Error
}

// edge tracks the last writer of a key and the readers enqueued since.
type edge struct {
	writer  int
	readers []int
}

type task struct {
	f func() error

	l        sync.Mutex
	waiters  []*sync.WaitGroup
	executed bool
}

// New creates an [Executor] that accepts up to [items] tasks and runs at
// most [concurrency] of them at once. [metrics] may be nil.
func New(items, concurrency int, metrics Metrics) *Executor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Executor{
		metrics: metrics,
		tasks:   make([]*task, items),
		edges:   make(map[string]*edge, items*2),
		slots:   make(chan struct{}, concurrency),
	}
}

// waitOn registers [wg] to be released when task [id] is executed.
func (e *Executor) waitOn(id int, wg *sync.WaitGroup, seen map[int]struct{}) {
	if _, ok := seen[id]; ok {
		return
	}
	seen[id] = struct{}{}
	t := e.tasks[id]
	t.l.Lock()
	defer t.l.Unlock()
	if !t.executed {
		wg.Add(1)
		t.waiters = append(t.waiters, wg)
	}
}

// Run executes [f] after every previously enqueued [f] it conflicts with
// has executed.
//
// Run is not safe to call concurrently.
func (e *Executor) Run(conflicts state.Keys, f func() error) {
	if e.added >= len(e.tasks) {
		e.err.CompareAndSwap(nil, ErrTooManyTasks)
		return
	}

	id := e.added
	e.added++
	t := &task{f: f}
	e.tasks[id] = t
	e.outstanding.Add(1)

	// Record dependencies
	var (
		wg   sync.WaitGroup
		seen = map[int]struct{}{}
	)
	for k, permission := range conflicts {
		ed, ok := e.edges[k]
		if !ok {
			ed = &edge{writer: -1}
			e.edges[k] = ed
		}
		if ed.writer >= 0 {
			e.waitOn(ed.writer, &wg, seen)
		}
		if !permission.Mutates() {
			ed.readers = append(ed.readers, id)
			continue
		}
		for _, reader := range ed.readers {
			e.waitOn(reader, &wg, seen)
		}
		ed.writer = id
		ed.readers = nil
	}
	if e.metrics != nil {
		if len(seen) > 0 {
			e.metrics.RecordBlocked()
		} else {
			e.metrics.RecordExecutable()
		}
	}

	go func() {
		// Block until our dependencies have been executed
		wg.Wait()

		// Ensure we unblock our dependents
		defer func() {
			t.l.Lock()
			for _, w := range t.waiters {
				w.Done()
			}
			t.waiters = nil
			t.executed = true
			t.l.Unlock()
			e.outstanding.Done()
		}()

		// Stop early if executor is stopped
		if e.err.Load() != nil {
			return
		}

		e.slots <- struct{}{}
		defer func() { <-e.slots }()
		if err := t.f(); err != nil {
			e.err.CompareAndSwap(nil, err)
		}
	}()
}

// Stop prevents tasks that have not started from running.
func (e *Executor) Stop() {
	e.err.CompareAndSwap(nil, ErrStopped)
}

// Wait returns as soon as all enqueued [f] are executed.
//
// You should not call [Run] after [Wait] is called.
func (e *Executor) Wait() error {
	e.outstanding.Wait()
	return e.err.Load()
}
