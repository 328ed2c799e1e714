// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"strconv"
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultMetricsInterval = 10 * time.Second
	metricsNamespace       = "pebble"
)

// sampled is a gauge refreshed from [pebble.Metrics] on every tick.
type sampled struct {
	gauge prometheus.Gauge
	read  func(*pebble.Metrics) float64
}

var sampledGauges = []struct {
	name string
	help string
	read func(*pebble.Metrics) float64
}{
	{"disk_usage", "approximate bytes on disk", func(m *pebble.Metrics) float64 { return float64(m.DiskSpaceUsage()) }},
	{"tombstones", "approximate count of internal tombstones", func(m *pebble.Metrics) float64 { return float64(m.Keys.TombstoneCount) }},
	{"memtable_size", "bytes held by memtables", func(m *pebble.Metrics) float64 { return float64(m.MemTable.Size) }},
	{"cache_hits", "block cache hits", func(m *pebble.Metrics) float64 { return float64(m.BlockCache.Hits) }},
	{"cache_misses", "block cache misses", func(m *pebble.Metrics) float64 { return float64(m.BlockCache.Misses) }},
	{"obsolete_table_bytes", "bytes in tables no longer referenced", func(m *pebble.Metrics) float64 { return float64(m.Table.ObsoleteSize) }},
	{"zombie_table_bytes", "bytes in unreferenced tables still held by iterators", func(m *pebble.Metrics) float64 { return float64(m.Table.ZombieSize) }},
	{"obsolete_wal_bytes", "bytes in WAL files no longer needed", func(m *pebble.Metrics) float64 { return float64(m.WAL.ObsoletePhysicalSize) }},
}

type metrics struct {
	readLatency metric.Averager

	stallStart    time.Time
	stallDuration metric.Averager
	stalls        prometheus.Counter

	// compactions is labelled by the first input level.
	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge
	flushes           prometheus.Counter

	sampled []sampled
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	errs := wrappers.Errs{}
	readLatency, err := metric.NewAverager(metricsNamespace+"_read_latency", "time spent in db get", r)
	errs.Add(err)
	stallDuration, err := metric.NewAverager(metricsNamespace+"_write_stall", "time writes were stalled", r)
	errs.Add(err)
	if errs.Errored() {
		return nil, nil, errs.Err
	}

	m := &metrics{
		readLatency:   readLatency,
		stallDuration: stallDuration,
		stalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "write_stalls",
			Help:      "number of write stalls",
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "compactions",
			Help:      "number of compactions started",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_compactions",
			Help:      "number of running compactions",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "flushes",
			Help:      "number of memtable flushes",
		}),
	}
	errs.Add(
		r.Register(m.stalls),
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(m.flushes),
	)
	for _, g := range sampledGauges {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      g.name,
			Help:      g.help,
		})
		errs.Add(r.Register(gauge))
		m.sampled = append(m.sampled, sampled{gauge: gauge, read: g.read})
	}
	return r, m, errs.Err
}

func (d *Database) eventListener() *pebble.EventListener {
	return &pebble.EventListener{
		CompactionBegin: func(info pebble.CompactionInfo) {
			d.metrics.activeCompactions.Inc()
			level := 0
			if len(info.Input) > 0 {
				level = info.Input[0].Level
			}
			d.metrics.compactions.WithLabelValues(strconv.Itoa(level)).Inc()
		},
		CompactionEnd: func(pebble.CompactionInfo) {
			d.metrics.activeCompactions.Dec()
		},
		FlushEnd: func(pebble.FlushInfo) {
			d.metrics.flushes.Inc()
		},
		WriteStallBegin: func(pebble.WriteStallBeginInfo) {
			d.metrics.stalls.Inc()
			d.metrics.stallStart = time.Now()
		},
		WriteStallEnd: func() {
			d.metrics.stallDuration.Observe(float64(time.Since(d.metrics.stallStart)))
		},
	}
}

// sample refreshes every sampled gauge.
func (d *Database) sample() {
	m := d.db.Metrics()
	for _, s := range d.metrics.sampled {
		s.gauge.Set(s.read(m))
	}
}

func (d *Database) collectMetrics(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			d.sample()
		case <-d.closing:
			return
		}
	}
}
