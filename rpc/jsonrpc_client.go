// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/neilotoole/errgroup"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/requester"
	"github.com/ava-labs/vaultvm/utils"
)

const (
	waitSleep = 500 * time.Millisecond

	// maxBalanceRequests bounds the concurrent requests issued by [Balances].
	maxBalanceRequests = 8
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	l       sync.Mutex
	chainID ids.ID
	g       *genesis.Genesis
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	req := requester.New(uri, Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Network(ctx context.Context) (ids.ID, ids.ID, string, error) {
	resp := new(NetworkReply)
	err := cli.requester.SendRequest(
		ctx,
		"network",
		nil,
		resp,
	)
	if err != nil {
		return ids.Empty, ids.Empty, "", err
	}
	cli.l.Lock()
	cli.chainID = resp.ChainID
	cli.l.Unlock()
	return resp.ChainID, resp.ProgramID, resp.HRP, nil
}

// Genesis is fetched once and cached for the lifetime of the client.
func (cli *JSONRPCClient) Genesis(ctx context.Context) (*genesis.Genesis, error) {
	cli.l.Lock()
	g := cli.g
	cli.l.Unlock()
	if g != nil {
		return g, nil
	}

	resp := new(GenesisReply)
	err := cli.requester.SendRequest(
		ctx,
		"genesis",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	cli.l.Lock()
	cli.g = resp.Genesis
	cli.l.Unlock()
	return resp.Genesis, nil
}

func (cli *JSONRPCClient) Accepted(ctx context.Context) (uint64, int64, error) {
	resp := new(LastAcceptedReply)
	err := cli.requester.SendRequest(
		ctx,
		"lastAccepted",
		nil,
		resp,
	)
	return resp.Height, resp.Timestamp, err
}

// SubmitTx blocks until [d] is executed and returns its result.
func (cli *JSONRPCClient) SubmitTx(ctx context.Context, d []byte) (*SubmitTxReply, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: d},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) Vault(ctx context.Context, authority string, name string) (*VaultReply, error) {
	resp := new(VaultReply)
	err := cli.requester.SendRequest(
		ctx,
		"vault",
		&VaultArgs{Authority: authority, Name: name},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) User(ctx context.Context, authority string, name string, depositor string) (*UserReply, error) {
	resp := new(UserReply)
	err := cli.requester.SendRequest(
		ctx,
		"user",
		&UserArgs{Authority: authority, Name: name, Depositor: depositor},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) Balance(ctx context.Context, addr string) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"balance",
		&BalanceArgs{Address: addr},
		resp,
	)
	return resp.Amount, err
}

// Balances fetches the native balance of each of [addrs] concurrently.
func (cli *JSONRPCClient) Balances(ctx context.Context, addrs []string) ([]uint64, error) {
	balances := make([]uint64, len(addrs))
	g, gctx := errgroup.WithContextN(ctx, maxBalanceRequests, len(addrs))
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			bal, err := cli.Balance(gctx, addr)
			if err != nil {
				return fmt.Errorf("%w: %s", err, addr)
			}
			balances[i] = bal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return balances, nil
}

func (cli *JSONRPCClient) TokenAccount(ctx context.Context, owner string) (*TokenAccountReply, error) {
	resp := new(TokenAccountReply)
	err := cli.requester.SendRequest(
		ctx,
		"tokenAccount",
		&TokenAccountArgs{Owner: owner},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) Ledger(ctx context.Context, payer string) (*LedgerReply, error) {
	resp := new(LedgerReply)
	err := cli.requester.SendRequest(
		ctx,
		"ledger",
		&LedgerArgs{Payer: payer},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) Fund(ctx context.Context, addr string) (uint64, uint64, error) {
	resp := new(FundReply)
	err := cli.requester.SendRequest(
		ctx,
		"fund",
		&FundArgs{Address: addr},
		resp,
	)
	return resp.Native, resp.Tokens, err
}

type Modifier interface {
	Base(*chain.Base)
}

// GenerateTransaction signs [action] with the latest chain parameters. The
// returned function submits the transaction and fails with [ErrTxFailed]
// if it did not succeed.
func (cli *JSONRPCClient) GenerateTransaction(
	ctx context.Context,
	registry *chain.Registry,
	action chain.Action,
	authFactory chain.AuthFactory,
	modifiers ...Modifier,
) (func(context.Context) (*SubmitTxReply, error), *chain.Transaction, error) {
	g, err := cli.Genesis(ctx)
	if err != nil {
		return nil, nil, err
	}
	cli.l.Lock()
	chainID := cli.chainID
	cli.l.Unlock()
	if chainID == ids.Empty {
		chainID, _, _, err = cli.Network(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	base := &chain.Base{
		Timestamp: utils.UnixRMilli(-1, g.ValidityWindow),
		ChainID:   chainID,
	}
	for _, m := range modifiers {
		m.Base(base)
	}

	tx, err := chain.NewTx(base, action).Sign(authFactory, registry)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to sign transaction", err)
	}
	return func(ictx context.Context) (*SubmitTxReply, error) {
		reply, err := cli.SubmitTx(ictx, tx.Bytes())
		if err != nil {
			return nil, err
		}
		if !reply.Success {
			return reply, fmt.Errorf("%w: %s", ErrTxFailed, reply.Error)
		}
		return reply, nil
	}, tx, nil
}

func (cli *JSONRPCClient) WaitForBalance(ctx context.Context, addr string, min uint64) error {
	return Wait(ctx, func(ctx context.Context) (bool, error) {
		bal, err := cli.Balance(ctx, addr)
		if err != nil {
			return false, err
		}
		return bal >= min, nil
	})
}

func Wait(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	for ctx.Err() == nil {
		exit, err := check(ctx)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
		time.Sleep(waitSleep)
	}
	return ctx.Err()
}
