// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

const (
	testFundNative = 100_000
	testFundTokens = 5_000
)

// testNode executes every submitted transaction in its own batch.
type testNode struct {
	g         *genesis.Genesis
	rules     *genesis.Rules
	registry  *chain.Registry
	db        *memdb.Database
	processor *chain.Processor

	l sync.Mutex
}

func newTestNode(t *testing.T) *testNode {
	registry := chain.NewRegistry()
	require.NoError(t, actions.Register(registry))
	require.NoError(t, auth.Register(registry))
	metrics, err := chain.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	g := genesis.Default()
	n := &testNode{
		g:        g,
		rules:    g.Rules(ids.GenerateTestID()),
		registry: registry,
		db:       memdb.New(),
	}
	n.processor = chain.NewProcessor(logging.NoLog{}, n.rules, registry, n.db, metrics, 2)
	return n
}

func (n *testNode) Genesis() *genesis.Genesis { return n.g }
func (n *testNode) Rules() chain.Rules        { return n.rules }
func (n *testNode) Registry() *chain.Registry { return n.registry }
func (n *testNode) State() state.Immutable    { return storage.NewReader(n.db) }

func (n *testNode) Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	n.l.Lock()
	defer n.l.Unlock()

	results, err := n.processor.Execute(ctx, time.Now().UnixMilli(), []*chain.Transaction{tx})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func (n *testNode) Fund(ctx context.Context, addr codec.Address) (uint64, uint64, error) {
	n.l.Lock()
	defer n.l.Unlock()

	return testFundNative, testFundTokens, n.processor.Apply(ctx, func(ctx context.Context, mu state.Mutable) error {
		if _, err := storage.AddBalance(ctx, mu, addr, testFundNative); err != nil {
			return err
		}
		return genesis.MintTokens(ctx, n.rules.GetDeriver(), mu, addr, testFundTokens)
	})
}

func newTestClient(t *testing.T, n Node) *JSONRPCClient {
	handler, err := NewJSONRPCHandler(Name, NewJSONRPCServer(n))
	require.NoError(t, err)
	router := mux.NewRouter()
	router.Handle(JSONRPCEndpoint, handler)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return NewJSONRPCClient(srv.URL)
}

func newKey(t *testing.T) (string, chain.AuthFactory) {
	pk, err := auth.GenerateED25519()
	require.NoError(t, err)
	factory, err := auth.GetFactory(pk)
	require.NoError(t, err)
	return codec.MustAddressBech32(genesis.Default().HRP, pk.Address), factory
}

func TestNetwork(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newTestNode(t)
	cli := newTestClient(t, n)

	ok, err := cli.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	chainID, _, hrp, err := cli.Network(ctx)
	require.NoError(err)
	require.Equal(n.rules.GetChainID(), chainID)
	require.Equal(n.g.HRP, hrp)

	g, err := cli.Genesis(ctx)
	require.NoError(err)
	require.Equal(n.g.ValidityWindow, g.ValidityWindow)
	require.Equal(n.g.VaultReserve, g.VaultReserve)

	height, _, err := cli.Accepted(ctx)
	require.NoError(err)
	require.Zero(height)
}

func TestVaultFlow(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newTestNode(t)
	cli := newTestClient(t, n)

	authority, authorityFactory := newKey(t)
	depositor, depositorFactory := newKey(t)
	for _, addr := range []string{authority, depositor} {
		nativeAmount, tokens, err := cli.Fund(ctx, addr)
		require.NoError(err)
		require.Equal(uint64(testFundNative), nativeAmount)
		require.Equal(uint64(testFundTokens), tokens)
	}
	balances, err := cli.Balances(ctx, []string{authority, depositor})
	require.NoError(err)
	require.Equal([]uint64{testFundNative, testFundNative}, balances)

	_, err = cli.Vault(ctx, authority, "savings")
	require.ErrorContains(err, ledger.ErrVaultNotFound.Error())

	submit, _, err := cli.GenerateTransaction(ctx, n.registry, &actions.CreateVault{Name: "savings"}, authorityFactory)
	require.NoError(err)
	reply, err := submit(ctx)
	require.NoError(err)
	require.True(reply.Success)
	require.Len(reply.Outputs, 2)

	account, err := cli.TokenAccount(ctx, depositor)
	require.NoError(err)
	require.Equal(depositor, account.Owner)
	require.Equal(uint64(testFundTokens), account.Amount)
	from, err := codec.ParseAddress(n.g.HRP, account.Address)
	require.NoError(err)

	authorityAddr, err := codec.ParseAddress(n.g.HRP, authority)
	require.NoError(err)
	submit, _, err = cli.GenerateTransaction(ctx, n.registry, &actions.Deposit{
		Authority: authorityAddr,
		Name:      "savings",
		Amount:    1_200,
		From:      from,
	}, depositorFactory)
	require.NoError(err)
	_, err = submit(ctx)
	require.NoError(err)

	vault, err := cli.Vault(ctx, authority, "savings")
	require.NoError(err)
	require.Equal(uint64(1_200), vault.Custodied)
	require.Equal(n.g.VaultReserve, vault.Balance)

	user, err := cli.User(ctx, authority, "savings", depositor)
	require.NoError(err)
	require.Equal(uint64(1_200), user.Available)

	_, err = cli.User(ctx, authority, "savings", authority)
	require.ErrorContains(err, ledger.ErrUserNotFound.Error())

	// Withdrawing more than was deposited is reported as a failed tx.
	submit, _, err = cli.GenerateTransaction(ctx, n.registry, &actions.Withdraw{
		Authority: authorityAddr,
		Name:      "savings",
		Amount:    1_201,
		To:        from,
	}, depositorFactory)
	require.NoError(err)
	reply, err = submit(ctx)
	require.ErrorIs(err, ErrTxFailed)
	require.False(reply.Success)
	require.NotEmpty(reply.Error)
}

func TestInvalidArguments(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, newTestNode(t))

	_, err := cli.Balance(ctx, "not-an-address")
	require.Error(err)

	_, err = cli.SubmitTx(ctx, []byte{0xff})
	require.Error(err)

	_, err = cli.Ledger(ctx, codec.MustAddressBech32(genesis.Default().HRP, codec.EmptyAddress))
	require.ErrorContains(err, ledger.ErrVaultNotFound.Error())
}

func TestNodeErrors(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	g := genesis.Default()
	registry := chain.NewRegistry()
	require.NoError(actions.Register(registry))
	require.NoError(auth.Register(registry))

	node := NewMockNode(ctrl)
	node.EXPECT().Genesis().Return(g).AnyTimes()
	node.EXPECT().Rules().Return(g.Rules(ids.GenerateTestID())).AnyTimes()
	node.EXPECT().Registry().Return(registry).AnyTimes()
	cli := newTestClient(t, node)

	addr, factory := newKey(t)
	node.EXPECT().Fund(gomock.Any(), gomock.Any()).Return(uint64(0), uint64(0), ErrFaucetDisabled)
	_, _, err := cli.Fund(ctx, addr)
	require.ErrorContains(err, ErrFaucetDisabled.Error())

	node.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, chain.ErrDuplicateTx)
	submit, _, err := cli.GenerateTransaction(ctx, registry, &actions.Transfer{To: codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID()), Value: 1}, factory)
	require.NoError(err)
	_, err = submit(ctx)
	require.ErrorContains(err, chain.ErrDuplicateTx.Error())
}
