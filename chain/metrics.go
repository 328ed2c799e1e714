// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/vaultvm/executor"
)

var _ executor.Metrics = (*executorMetrics)(nil)

type Metrics struct {
	txsExecuted  prometheus.Counter
	txsFailed    prometheus.Counter
	stateChanges prometheus.Counter
	batchLatency prometheus.Histogram

	executor *executorMetrics
}

type executorMetrics struct {
	blocked    prometheus.Counter
	executable prometheus.Counter
}

func (em *executorMetrics) RecordBlocked() {
	em.blocked.Inc()
}

func (em *executorMetrics) RecordExecutable() {
	em.executable.Inc()
}

// NewMetrics registers the processor metrics with [r].
func NewMetrics(r prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		txsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_executed",
			Help:      "number of transactions executed successfully",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of transactions that failed and were discarded",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_changes",
			Help:      "number of keys written to the database",
		}),
		batchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chain",
			Name:      "batch_latency",
			Help:      "seconds spent executing and persisting a batch",
			Buckets:   prometheus.DefBuckets,
		}),
		executor: &executorMetrics{
			blocked: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "chain",
				Name:      "executor_blocked",
				Help:      "executor tasks blocked during processing",
			}),
			executable: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "chain",
				Name:      "executor_executable",
				Help:      "executor tasks executable during processing",
			}),
		},
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsExecuted),
		r.Register(m.txsFailed),
		r.Register(m.stateChanges),
		r.Register(m.batchLatency),
		r.Register(m.executor.blocked),
		r.Register(m.executor.executable),
	)
	return m, errs.Err
}
