// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	avametrics "github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/config"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/emap"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/mempool"
	"github.com/ava-labs/vaultvm/rpc"
	"github.com/ava-labs/vaultvm/server"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

var (
	_ rpc.Node = (*Node)(nil)

	ErrNodeStopped = errors.New("node stopped")
)

// Node executes submitted transactions in batches and serves the API.
type Node struct {
	log logging.Logger
	cfg *config.Config

	genesis  *genesis.Genesis
	rules    *genesis.Rules
	registry *chain.Registry

	gatherer  avametrics.MultiGatherer
	metrics   *metrics
	db        database.Database
	processor *chain.Processor

	// execL serializes every write to [db].
	execL  sync.Mutex
	height uint64

	mempool *mempool.Mempool[*chain.Transaction]

	// seen holds executed transactions until they can no longer be
	// included.
	seen *emap.EMap[*chain.Transaction]

	waitersL sync.Mutex
	waiters  map[ids.ID]chan *chain.Result

	stop     chan struct{}
	stopOnce sync.Once
}

// New opens the database described by [cfg] and loads [genesisBytes] if
// it has not been loaded before. Metrics are registered with [gatherer].
func New(
	log logging.Logger,
	cfg *config.Config,
	genesisBytes []byte,
	gatherer avametrics.MultiGatherer,
) (*Node, error) {
	g, err := genesis.New(genesisBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to read genesis: %w", err)
	}
	chainID := cfg.ChainID
	if chainID == ids.Empty {
		chainID = hashing.ComputeHash256Array(genesisBytes)
	}
	log.Info("loaded genesis", zap.Stringer("chainID", chainID), zap.Any("genesis", g))

	registry := chain.NewRegistry()
	if err := actions.Register(registry); err != nil {
		return nil, err
	}
	if err := auth.Register(registry); err != nil {
		return nil, err
	}

	r := prometheus.NewRegistry()
	m, err := newMetrics(r)
	if err != nil {
		return nil, err
	}
	chainMetrics, err := chain.NewMetrics(r)
	if err != nil {
		return nil, err
	}
	if err := gatherer.Register(consts.Name, r); err != nil {
		return nil, err
	}

	var db database.Database
	switch cfg.Database {
	case config.MemoryDatabase:
		db = memdb.New()
	default:
		db, err = storage.New(cfg.Pebble, cfg.DataDir, "db", gatherer)
		if err != nil {
			return nil, err
		}
	}

	rules := g.Rules(chainID)
	n := &Node{
		log:       log,
		cfg:       cfg,
		genesis:   g,
		rules:     rules,
		registry:  registry,
		gatherer:  gatherer,
		metrics:   m,
		db:        db,
		processor: chain.NewProcessor(log, rules, registry, db, chainMetrics, cfg.ExecutionCores),
		mempool:   mempool.New[*chain.Transaction](cfg.MempoolSize, cfg.MempoolSponsorSize, nil),
		seen:      emap.NewEMap[*chain.Transaction](),
		waiters:   map[ids.ID]chan *chain.Result{},
		stop:      make(chan struct{}),
	}
	if err := n.loadGenesis(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) loadGenesis(ctx context.Context) error {
	n.execL.Lock()
	defer n.execL.Unlock()

	m, exists, err := storage.GetMetadata(ctx, n.State())
	if err != nil {
		return err
	}
	if exists {
		n.height = m.Height
		n.log.Info("genesis already loaded",
			zap.Uint64("height", m.Height),
			zap.Int64("timestamp", m.Timestamp),
		)
		return nil
	}
	if err := n.processor.Apply(ctx, func(ctx context.Context, mu state.Mutable) error {
		if err := n.genesis.Load(ctx, mu); err != nil {
			return err
		}
		return storage.SetMetadata(ctx, mu, &storage.Metadata{})
	}); err != nil {
		return fmt.Errorf("unable to load genesis allocations: %w", err)
	}
	n.log.Info("genesis allocations loaded",
		zap.Int("native", len(n.genesis.CustomAllocation)),
		zap.Int("tokens", len(n.genesis.TokenAllocation)),
	)
	return nil
}

func (n *Node) Genesis() *genesis.Genesis { return n.genesis }

func (n *Node) Rules() chain.Rules { return n.rules }

func (n *Node) Registry() *chain.Registry { return n.registry }

// State reads persisted state. Batches are written atomically, so a
// reader never observes part of one.
func (n *Node) State() state.Immutable { return storage.NewReader(n.db) }

// Run serves the API on [listener] and builds batches until [ctx] is
// cancelled.
func (n *Node) Run(ctx context.Context, listener net.Listener) error {
	api := server.New(n.log, listener, server.NewDefaultHTTPConfig(), n.cfg.AllowedOrigins)
	handler, err := rpc.NewJSONRPCHandler(rpc.Name, rpc.NewJSONRPCServer(n))
	if err != nil {
		return err
	}
	if err := api.AddRoute(handler, rpc.JSONRPCEndpoint); err != nil {
		return err
	}
	if err := api.AddRoute(promhttp.HandlerFor(n.gatherer, promhttp.HandlerOpts{}), rpc.MetricsEndpoint); err != nil {
		return err
	}

	// Each goroutine lives for the life of the node.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(api.Dispatch)
	g.Go(func() error {
		defer n.stopOnce.Do(func() { close(n.stop) })
		return n.build(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return api.Shutdown()
	})
	err = g.Wait()
	n.abort(ErrNodeStopped)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the database. [Run] must have returned.
func (n *Node) Close() error {
	n.stopOnce.Do(func() { close(n.stop) })
	return n.db.Close()
}

func (n *Node) build(ctx context.Context) error {
	t := time.NewTicker(n.cfg.BuildInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := n.buildBatch(ctx); err != nil {
				n.log.Error("unable to build batch", zap.Error(err))
				return err
			}
		}
	}
}

func (n *Node) buildBatch(ctx context.Context) error {
	now := time.Now().UnixMilli()
	expired := n.mempool.SetMinTimestamp(ctx, now)
	for _, tx := range expired {
		n.resolve(tx.ID(), &chain.Result{Error: []byte(chain.ErrTimestampTooLate.Error())})
	}
	n.metrics.txsExpired.Add(float64(len(expired)))

	txs := n.mempool.Stream(ctx, n.cfg.MaxBatchSize)
	n.metrics.mempoolSize.Set(float64(n.mempool.Len(ctx)))
	if len(txs) == 0 {
		return nil
	}

	n.seen.SetMin(now)
	dups := n.seen.Contains(txs, set.NewBits(), false)
	batch := make([]*chain.Transaction, 0, len(txs))
	for i, tx := range txs {
		if dups.Contains(i) {
			n.resolve(tx.ID(), &chain.Result{Error: []byte(chain.ErrDuplicateTx.Error())})
			continue
		}
		batch = append(batch, tx)
	}
	if len(batch) == 0 {
		return nil
	}

	n.execL.Lock()
	defer n.execL.Unlock()

	height := n.height + 1
	results, err := n.processor.ExecuteAndApply(ctx, now, batch, func(ctx context.Context, mu state.Mutable) error {
		return storage.SetMetadata(ctx, mu, &storage.Metadata{Height: height, Timestamp: now})
	})
	if err != nil {
		return err
	}
	n.height = height

	n.seen.Add(batch)
	for i, tx := range batch {
		n.resolve(tx.ID(), results[i])
	}
	n.metrics.batches.Inc()
	n.metrics.batchSize.Observe(float64(len(batch)))
	n.log.Debug("built batch",
		zap.Uint64("height", height),
		zap.Int("txs", len(batch)),
		zap.Int("duplicates", len(txs)-len(batch)),
	)
	return nil
}

// Submit queues [tx] and blocks until it is executed.
func (n *Node) Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	if err := tx.Base.Execute(n.rules, time.Now().UnixMilli()); err != nil {
		n.metrics.txsRejected.Inc()
		return nil, err
	}
	if n.seen.Any([]*chain.Transaction{tx}) {
		n.metrics.txsRejected.Inc()
		return nil, chain.ErrDuplicateTx
	}

	txID := tx.ID()
	ch := make(chan *chain.Result, 1)
	n.waitersL.Lock()
	if _, ok := n.waiters[txID]; ok {
		n.waitersL.Unlock()
		n.metrics.txsRejected.Inc()
		return nil, chain.ErrDuplicateTx
	}
	n.waiters[txID] = ch
	n.waitersL.Unlock()

	n.mempool.Add(ctx, []*chain.Transaction{tx})
	if !n.mempool.Has(ctx, txID) {
		n.waitersL.Lock()
		delete(n.waiters, txID)
		n.waitersL.Unlock()
		n.metrics.txsRejected.Inc()
		return nil, chain.ErrTooManyTxs
	}
	n.metrics.txsSubmitted.Inc()

	select {
	case result := <-ch:
		return result, nil
	case <-ctx.Done():
		// The transaction may still be executed.
		n.waitersL.Lock()
		delete(n.waiters, txID)
		n.waitersL.Unlock()
		return nil, ctx.Err()
	case <-n.stop:
		return nil, ErrNodeStopped
	}
}

func (n *Node) resolve(txID ids.ID, result *chain.Result) {
	n.waitersL.Lock()
	ch, ok := n.waiters[txID]
	delete(n.waiters, txID)
	n.waitersL.Unlock()
	if ok {
		ch <- result
	}
}

// abort fails every pending submission with [err].
func (n *Node) abort(err error) {
	n.waitersL.Lock()
	defer n.waitersL.Unlock()

	for txID, ch := range n.waiters {
		ch <- &chain.Result{Error: []byte(err.Error())}
		delete(n.waiters, txID)
	}
}

// Fund credits the configured faucet amounts of native balance and tokens
// to [addr].
func (n *Node) Fund(ctx context.Context, addr codec.Address) (uint64, uint64, error) {
	if !n.cfg.FaucetEnabled {
		return 0, 0, rpc.ErrFaucetDisabled
	}
	n.execL.Lock()
	defer n.execL.Unlock()

	if err := n.processor.Apply(ctx, func(ctx context.Context, mu state.Mutable) error {
		if n.cfg.FaucetAmount > 0 {
			if _, err := storage.AddBalance(ctx, mu, addr, n.cfg.FaucetAmount); err != nil {
				return err
			}
		}
		if n.cfg.FaucetTokenAmount > 0 {
			return genesis.MintTokens(ctx, n.rules.GetDeriver(), mu, addr, n.cfg.FaucetTokenAmount)
		}
		return nil
	}); err != nil {
		return 0, 0, err
	}
	n.metrics.faucet.Inc()
	n.log.Info("funded account",
		zap.Stringer("address", addr),
		zap.Uint64("native", n.cfg.FaucetAmount),
		zap.Uint64("tokens", n.cfg.FaucetTokenAmount),
	)
	return n.cfg.FaucetAmount, n.cfg.FaucetTokenAmount, nil
}
