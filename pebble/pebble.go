// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

var _ database.Database = (*Database)(nil)

type Config struct {
	CacheSize                   int   `json:"cacheSize"`
	BytesPerSync                int   `json:"bytesPerSync"`
	WALBytesPerSync             int   `json:"walBytesPerSync"`
	MemTableStopWritesThreshold int   `json:"memTableStopWritesThreshold"`
	MemTableSize                int   `json:"memTableSize"`
	MaxOpenFiles                int   `json:"maxOpenFiles"`
	ConcurrentCompactions       int   `json:"concurrentCompactions"`
	Sync                        bool  `json:"sync"`
	MetricsInterval             int64 `json:"metricsInterval"` // seconds
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   256 * units.MiB,
		BytesPerSync:                1 * units.MiB,
		WALBytesPerSync:             1 * units.MiB,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * units.MiB,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
		Sync:                        true,
		MetricsInterval:             int64(defaultMetricsInterval / time.Second),
	}
}

// Database is a [database.Database] backed by pebble.
type Database struct {
	db      *pebble.DB
	metrics *metrics
	sync    bool

	lock   sync.RWMutex
	closed bool

	closing chan struct{}
	done    sync.WaitGroup
}

// New opens the database at [file] and returns the registry its metrics
// are reported to.
func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics: metrics,
		sync:    cfg.Sync,
		closing: make(chan struct{}),
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
		EventListener:               d.eventListener(),
	}
	defer opts.Cache.Unref()
	d.db, err = pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	interval := time.Duration(cfg.MetricsInterval) * time.Second
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	d.done.Add(1)
	go func() {
		defer d.done.Done()
		d.collectMetrics(interval)
	}()
	return d, registry, nil
}

func (d *Database) writeOptions() *pebble.WriteOptions {
	if d.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func (d *Database) Close() error {
	d.lock.Lock()
	if d.closed {
		d.lock.Unlock()
		return database.ErrClosed
	}
	d.closed = true
	close(d.closing)
	d.lock.Unlock()

	d.done.Wait()
	return updateError(d.db.Close())
}

func (d *Database) HealthCheck(context.Context) (interface{}, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed {
		return nil, database.ErrClosed
	}
	return nil, nil
}

func (d *Database) Has(key []byte) (bool, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed {
		return false, database.ErrClosed
	}
	_, closer, err := d.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

// Get returns a copy of the value of [key].
func (d *Database) Get(key []byte) ([]byte, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed {
		return nil, database.ErrClosed
	}
	start := time.Now()
	data, closer, err := d.db.Get(key)
	d.metrics.readLatency.Observe(float64(time.Since(start)))
	if err != nil {
		return nil, updateError(err)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, closer.Close()
}

func (d *Database) Put(key []byte, value []byte) error {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed {
		return database.ErrClosed
	}
	return d.db.Set(key, value, d.writeOptions())
}

func (d *Database) Delete(key []byte) error {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed {
		return database.ErrClosed
	}
	return d.db.Delete(key, d.writeOptions())
}

func (d *Database) Compact(start []byte, limit []byte) error {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.closed {
		return database.ErrClosed
	}
	if limit == nil {
		// Compact everything after [start].
		it, err := d.db.NewIter(&pebble.IterOptions{})
		if err != nil {
			return err
		}
		if it.Last() {
			limit = append([]byte{}, it.Key()...)
			limit = append(limit, 0)
		}
		if err := it.Close(); err != nil {
			return err
		}
		if limit == nil {
			return nil
		}
	}
	return d.db.Compact(start, limit, true)
}

func updateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pebble.ErrNotFound):
		return database.ErrNotFound
	case errors.Is(err, pebble.ErrClosed):
		return database.ErrClosed
	default:
		return err
	}
}
