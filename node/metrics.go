// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	txsSubmitted prometheus.Counter
	txsRejected  prometheus.Counter
	txsExpired   prometheus.Counter
	batches      prometheus.Counter
	batchSize    prometheus.Histogram
	mempoolSize  prometheus.Gauge
	faucet       prometheus.Counter
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "node",
			Name:      "txs_submitted",
			Help:      "number of transactions accepted into the mempool",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "node",
			Name:      "txs_rejected",
			Help:      "number of transactions rejected before execution",
		}),
		txsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "node",
			Name:      "txs_expired",
			Help:      "number of transactions that expired in the mempool",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "node",
			Name:      "batches_built",
			Help:      "number of batches executed",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "node",
			Name:      "batch_size",
			Help:      "number of transactions in each batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		mempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "node",
			Name:      "mempool_size",
			Help:      "number of transactions waiting to be built",
		}),
		faucet: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "node",
			Name:      "faucet_requests",
			Help:      "number of faucet requests served",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsRejected),
		r.Register(m.txsExpired),
		r.Register(m.batches),
		r.Register(m.batchSize),
		r.Register(m.mempoolSize),
		r.Register(m.faucet),
	)
	return m, errs.Err
}
