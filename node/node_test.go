// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"testing"
	"time"

	avametrics "github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/config"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/rpc"
)

const (
	faucetAmount      = 1_000_000
	faucetTokenAmount = 10_000
)

type testKey struct {
	addr    codec.Address
	bech32  string
	factory chain.AuthFactory
}

func newTestKey(t *testing.T) *testKey {
	pk, err := auth.GenerateED25519()
	require.NoError(t, err)
	factory, err := auth.GetFactory(pk)
	require.NoError(t, err)
	return &testKey{
		addr:    pk.Address,
		bech32:  codec.MustAddressBech32(consts.HRP, pk.Address),
		factory: factory,
	}
}

func newTestConfig(t *testing.T, overrides string) *config.Config {
	cfg, err := config.New([]byte(overrides))
	require.NoError(t, err)
	cfg.BuildInterval = 10_000_000 // 10ms
	cfg.FaucetAmount = faucetAmount
	cfg.FaucetTokenAmount = faucetTokenAmount
	return cfg
}

type testNode struct {
	*Node
	uri  string
	cli  *rpc.JSONRPCClient
	stop func()
}

func startNode(t *testing.T, cfg *config.Config, genesisBytes []byte) *testNode {
	require := require.New(t)
	n, err := New(logging.NoLog{}, cfg, genesisBytes, avametrics.NewPrefixGatherer())
	require.NoError(err)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx, listener) }()

	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		require.NoError(<-done)
		require.NoError(n.Close())
	}
	t.Cleanup(stop)

	uri := "http://" + listener.Addr().String()
	return &testNode{Node: n, uri: uri, cli: rpc.NewJSONRPCClient(uri), stop: stop}
}

func TestGenesisAllocations(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	key := newTestKey(t)

	g := genesis.Default()
	g.CustomAllocation = []*genesis.CustomAllocation{{Address: key.bech32, Balance: 42}}
	g.TokenAllocation = []*genesis.CustomAllocation{{Address: key.bech32, Balance: 7}}
	genesisBytes, err := json.Marshal(g)
	require.NoError(err)

	n := startNode(t, newTestConfig(t, `{"database": "memdb"}`), genesisBytes)
	bal, err := n.cli.Balance(ctx, key.bech32)
	require.NoError(err)
	require.Equal(uint64(42), bal)

	account, err := n.cli.TokenAccount(ctx, key.bech32)
	require.NoError(err)
	require.Equal(uint64(7), account.Amount)

	height, _, err := n.cli.Accepted(ctx)
	require.NoError(err)
	require.Zero(height)
}

func TestSubmitAndReplay(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := startNode(t, newTestConfig(t, `{"database": "memdb", "faucetEnabled": true}`), nil)

	alice := newTestKey(t)
	bob := newTestKey(t)
	nativeAmount, tokens, err := n.cli.Fund(ctx, alice.bech32)
	require.NoError(err)
	require.Equal(uint64(faucetAmount), nativeAmount)
	require.Equal(uint64(faucetTokenAmount), tokens)

	submit, tx, err := n.cli.GenerateTransaction(ctx, n.Registry(), &actions.Transfer{To: bob.addr, Value: 250}, alice.factory)
	require.NoError(err)
	reply, err := submit(ctx)
	require.NoError(err)
	require.Equal(tx.ID(), reply.TxID)

	balances, err := n.cli.Balances(ctx, []string{alice.bech32, bob.bech32})
	require.NoError(err)
	require.Equal([]uint64{faucetAmount - 250, 250}, balances)

	// Executed transactions cannot be included again while they are valid.
	_, err = n.cli.SubmitTx(ctx, tx.Bytes())
	require.ErrorContains(err, chain.ErrDuplicateTx.Error())

	height, timestamp, err := n.cli.Accepted(ctx)
	require.NoError(err)
	require.Equal(uint64(1), height)
	require.Positive(timestamp)

	// A failed transaction is reported with its error.
	submit, _, err = n.cli.GenerateTransaction(ctx, n.Registry(), &actions.Transfer{To: alice.addr, Value: 251}, bob.factory)
	require.NoError(err)
	reply, err = submit(ctx)
	require.ErrorIs(err, rpc.ErrTxFailed)
	require.False(reply.Success)
}

func TestRunSingleProcessor(t *testing.T) {
	require := require.New(t)
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(1))

	n := startNode(t, newTestConfig(t, `{"database": "memdb", "faucetEnabled": true}`), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice := newTestKey(t)
	_, _, err := n.cli.Fund(ctx, alice.bech32)
	require.NoError(err)

	// The builder must run alongside the API server.
	submit, _, err := n.cli.GenerateTransaction(ctx, n.Registry(), &actions.Transfer{To: newTestKey(t).addr, Value: 1}, alice.factory)
	require.NoError(err)
	_, err = submit(ctx)
	require.NoError(err)

	height, _, err := n.cli.Accepted(ctx)
	require.NoError(err)
	require.Equal(uint64(1), height)
}

func TestFaucetDisabled(t *testing.T) {
	n := startNode(t, newTestConfig(t, `{"database": "memdb"}`), nil)
	_, _, err := n.cli.Fund(context.Background(), newTestKey(t).bech32)
	require.ErrorContains(t, err, rpc.ErrFaucetDisabled.Error())
}

func TestMetricsEndpoint(t *testing.T) {
	require := require.New(t)
	n := startNode(t, newTestConfig(t, `{"database": "memdb", "faucetEnabled": true}`), nil)
	_, _, err := n.cli.Fund(context.Background(), newTestKey(t).bech32)
	require.NoError(err)

	resp, err := http.Get(n.uri + rpc.MetricsEndpoint)
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.Contains(string(body), "node_faucet_requests")
	require.Contains(string(body), "chain_txs_executed")
}

func TestRestart(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	key := newTestKey(t)

	g := genesis.Default()
	g.CustomAllocation = []*genesis.CustomAllocation{{Address: key.bech32, Balance: 500}}
	genesisBytes, err := json.Marshal(g)
	require.NoError(err)

	overrides := fmt.Sprintf(`{"database": "pebble", "dataDir": %q, "faucetEnabled": true}`, t.TempDir())
	n := startNode(t, newTestConfig(t, overrides), genesisBytes)
	_, _, err = n.cli.Fund(ctx, key.bech32)
	require.NoError(err)
	n.stop()

	// Genesis allocations are not credited twice.
	n = startNode(t, newTestConfig(t, overrides), genesisBytes)
	bal, err := n.cli.Balance(ctx, key.bech32)
	require.NoError(err)
	require.Equal(uint64(500+faucetAmount), bal)
}
