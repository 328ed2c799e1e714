// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/vaultvm/executor"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/tstate"
)

// Processor executes batches of transactions against a database.
//
// Each transaction runs on its own [tstate.TStateView]. A transaction that
// fails leaves no changes behind. The changes of every successful
// transaction are written to the database in a single batch.
type Processor struct {
	log      logging.Logger
	rules    Rules
	registry *Registry
	db       state.Database
	metrics  *Metrics
	cores    int
}

func NewProcessor(
	log logging.Logger,
	rules Rules,
	registry *Registry,
	db state.Database,
	metrics *Metrics,
	cores int,
) *Processor {
	return &Processor{
		log:      log,
		rules:    rules,
		registry: registry,
		db:       db,
		metrics:  metrics,
		cores:    cores,
	}
}

func failure(err error) *Result {
	return &Result{Error: []byte(err.Error())}
}

// Execute executes [txs] at [timestamp] in order of conflict and persists
// the result. The returned results are in the order of [txs].
func (p *Processor) Execute(ctx context.Context, timestamp int64, txs []*Transaction) ([]*Result, error) {
	return p.ExecuteAndApply(ctx, timestamp, txs, nil)
}

// ExecuteAndApply is [Execute] followed by [finalize], which sees the
// changes of every successful transaction. Both are persisted in the same
// batch, and nothing is persisted if [finalize] fails.
func (p *Processor) ExecuteAndApply(
	ctx context.Context,
	timestamp int64,
	txs []*Transaction,
	finalize func(context.Context, state.Mutable) error,
) ([]*Result, error) {
	start := time.Now()
	var (
		results   = make([]*Result, len(txs))
		stateKeys = make([]state.Keys, len(txs))
		seen      = set.NewSet[ids.ID](len(txs))
		scope     = state.Keys{}
	)
	for i, err := range p.verifyAuth(ctx, txs) {
		if err != nil {
			results[i] = failure(fmt.Errorf("%w: %w", ErrAuthFailed, err))
		}
	}
	for i, tx := range txs {
		if results[i] != nil {
			continue
		}
		if seen.Contains(tx.ID()) {
			results[i] = failure(ErrDuplicateTx)
			continue
		}
		seen.Add(tx.ID())
		keys, err := tx.StateKeys(p.rules)
		if err != nil {
			results[i] = failure(err)
			continue
		}
		stateKeys[i] = keys
		scope.Union(keys)
	}

	storage, err := p.fetch(scope)
	if err != nil {
		return nil, err
	}

	var (
		ts = tstate.New(len(scope))
		e  = executor.New(len(txs), p.cores, p.executorMetrics())
	)
	for i, tx := range txs {
		if results[i] != nil {
			continue
		}
		i, tx := i, tx
		e.Run(stateKeys[i], func() error {
			view := ts.NewView(stateKeys[i], storage)
			outputs, err := tx.Execute(ctx, p.rules, view, timestamp)
			if err != nil {
				p.log.Debug("transaction failed",
					zap.Stringer("txID", tx.ID()),
					zap.Error(err),
				)
				results[i] = failure(err)
				return nil
			}
			view.Commit()
			results[i] = &Result{Success: true, Outputs: outputs}
			return nil
		})
	}
	if err := e.Wait(); err != nil {
		return nil, err
	}
	if finalize != nil {
		if err := p.stage(ctx, ts, finalize); err != nil {
			return nil, err
		}
	}

	batch := p.db.NewBatch()
	changes, err := ts.Flush(batch)
	if err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, err
	}

	var executed int
	for _, result := range results {
		if result.Success {
			executed++
		}
	}
	if p.metrics != nil {
		p.metrics.txsExecuted.Add(float64(executed))
		p.metrics.txsFailed.Add(float64(len(txs) - executed))
		p.metrics.stateChanges.Add(float64(changes))
		p.metrics.batchLatency.Observe(time.Since(start).Seconds())
	}
	p.log.Debug("executed batch",
		zap.Int("txs", len(txs)),
		zap.Int("successful", executed),
		zap.Int("changes", changes),
		zap.Duration("t", time.Since(start)),
	)
	return results, nil
}

// Apply runs [f] outside of any transaction and persists its changes in a
// single batch. The keys [f] touches are found with a dry run over a
// [state.Recorder], so [f] must be deterministic.
func (p *Processor) Apply(ctx context.Context, f func(context.Context, state.Mutable) error) error {
	ts := tstate.New(0)
	if err := p.stage(ctx, ts, f); err != nil {
		return err
	}

	batch := p.db.NewBatch()
	changes, err := ts.Flush(batch)
	if err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	p.log.Debug("applied changes", zap.Int("changes", changes))
	return nil
}

// stage runs [f] on a view of [ts] scoped to the keys a dry run of [f]
// touches and commits it.
func (p *Processor) stage(ctx context.Context, ts *tstate.TState, f func(context.Context, state.Mutable) error) error {
	recorder := state.NewRecorder(stagedReader{ts: ts, db: p.db})
	if err := f(ctx, recorder); err != nil {
		return err
	}
	scope := recorder.Keys()
	storage, err := p.fetch(scope)
	if err != nil {
		return err
	}
	view := ts.NewView(scope, storage)
	if err := f(ctx, view); err != nil {
		return err
	}
	view.Commit()
	return nil
}

// stagedReader reads the changes committed to [ts] before [db].
type stagedReader struct {
	ts *tstate.TState
	db database.KeyValueReader
}

func (r stagedReader) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if v, changed, exists := r.ts.GetChangedValue(ctx, key); changed {
		if !exists {
			return nil, database.ErrNotFound
		}
		return v, nil
	}
	return r.db.Get(key)
}

func (p *Processor) executorMetrics() executor.Metrics {
	if p.metrics == nil {
		return nil
	}
	return p.metrics.executor
}

// fetch reads the persisted value of every key in [scope].
func (p *Processor) fetch(scope state.Keys) (map[string][]byte, error) {
	keys := maps.Keys(scope)
	slices.Sort(keys)
	storage := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := p.db.Get([]byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		storage[k] = v
	}
	return storage, nil
}

// verifyAuth checks the signature of every transaction, batching those
// whose [Auth] type has an [AuthEngine].
func (p *Processor) verifyAuth(ctx context.Context, txs []*Transaction) []error {
	var (
		errs   = make([]error, len(txs))
		groups = map[uint8][]int{}
	)
	for i, tx := range txs {
		typeID := tx.Auth.GetTypeID()
		groups[typeID] = append(groups[typeID], i)
	}
	for typeID, indices := range groups {
		if engine, ok := p.registry.AuthEngine(typeID); ok {
			verifier := engine.GetBatchVerifier(len(indices))
			var addErr error
			for _, i := range indices {
				if err := verifier.Add(txs[i].digest, txs[i].Auth); err != nil {
					addErr = err
					break
				}
			}
			if addErr == nil && verifier.Verify() == nil {
				continue
			}
		}
		// Fall back to verifying each signature on its own to find the
		// invalid ones.
		for _, i := range indices {
			errs[i] = txs[i].Auth.Verify(ctx, txs[i].digest)
		}
	}
	return errs
}
