// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/native"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

// Node is the part of a running node the API depends on.
type Node interface {
	Genesis() *genesis.Genesis
	Rules() chain.Rules
	Registry() *chain.Registry
	State() state.Immutable

	// Submit blocks until [tx] is executed in a batch.
	Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error)
	// Fund credits the faucet amounts to [addr].
	Fund(ctx context.Context, addr codec.Address) (native uint64, tokens uint64, err error)
}

type JSONRPCServer struct {
	node Node
}

func NewJSONRPCServer(node Node) *JSONRPCServer {
	return &JSONRPCServer{node: node}
}

func (j *JSONRPCServer) parseAddress(s string) (codec.Address, error) {
	return codec.ParseAddress(j.node.Genesis().HRP, s)
}

func (j *JSONRPCServer) formatAddress(a codec.Address) string {
	return codec.MustAddressBech32(j.node.Genesis().HRP, a)
}

type PingReply struct {
	Success bool `json:"success"`
}

func (*JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	reply.Success = true
	return nil
}

type NetworkReply struct {
	ChainID   ids.ID `json:"chainId"`
	ProgramID ids.ID `json:"programId"`
	HRP       string `json:"hrp"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) error {
	g := j.node.Genesis()
	reply.ChainID = j.node.Rules().GetChainID()
	reply.ProgramID = g.ProgramID
	reply.HRP = g.HRP
	return nil
}

type GenesisReply struct {
	Genesis *genesis.Genesis `json:"genesis"`
}

func (j *JSONRPCServer) Genesis(_ *http.Request, _ *struct{}, reply *GenesisReply) error {
	reply.Genesis = j.node.Genesis()
	return nil
}

type LastAcceptedReply struct {
	Height    uint64 `json:"height"`
	Timestamp int64  `json:"timestamp"`
}

func (j *JSONRPCServer) LastAccepted(req *http.Request, _ *struct{}, reply *LastAcceptedReply) error {
	m, exists, err := storage.GetMetadata(req.Context(), j.node.State())
	if err != nil {
		return err
	}
	if exists {
		reply.Height = m.Height
		reply.Timestamp = m.Timestamp
	}
	return nil
}

type SubmitTxArgs struct {
	Tx []byte `json:"tx"`
}

type SubmitTxReply struct {
	TxID    ids.ID   `json:"txId"`
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Outputs [][]byte `json:"outputs"`
}

func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *SubmitTxReply) error {
	tx, err := chain.ParseTx(args.Tx, j.node.Registry())
	if err != nil {
		return err
	}
	result, err := j.node.Submit(req.Context(), tx)
	if err != nil {
		return err
	}
	reply.TxID = tx.ID()
	reply.Success = result.Success
	reply.Error = string(result.Error)
	reply.Outputs = result.Outputs
	return nil
}

type VaultArgs struct {
	Authority string `json:"authority"`
	Name      string `json:"name"`
}

type VaultReply struct {
	Address   string        `json:"address"`
	Custody   string        `json:"custody"`
	Vault     *ledger.Vault `json:"vault"`
	Custodied uint64        `json:"custodied"`
	Balance   uint64        `json:"balance"`
}

func (j *JSONRPCServer) findVault(ctx context.Context, authority string, name string) (codec.Address, *ledger.Vault, error) {
	addr, err := j.parseAddress(authority)
	if err != nil {
		return codec.EmptyAddress, nil, err
	}
	if err := ledger.ValidateName(name); err != nil {
		return codec.EmptyAddress, nil, err
	}
	vaultAddr, _, err := j.node.Rules().GetDeriver().FindVault(addr, name)
	if err != nil {
		return codec.EmptyAddress, nil, err
	}
	vault, exists, err := storage.GetVault(ctx, j.node.State(), vaultAddr)
	if err != nil {
		return codec.EmptyAddress, nil, err
	}
	if !exists {
		return codec.EmptyAddress, nil, fmt.Errorf("%w: %s", ledger.ErrVaultNotFound, j.formatAddress(vaultAddr))
	}
	return vaultAddr, vault, nil
}

func (j *JSONRPCServer) Vault(req *http.Request, args *VaultArgs, reply *VaultReply) error {
	ctx := req.Context()
	vaultAddr, vault, err := j.findVault(ctx, args.Authority, args.Name)
	if err != nil {
		return err
	}
	custody, _, err := j.node.Rules().GetDeriver().FindCustody(vaultAddr)
	if err != nil {
		return err
	}
	account, exists, err := storage.GetTokenAccount(ctx, j.node.State(), custody)
	if err != nil {
		return err
	}
	if exists {
		reply.Custodied = account.Amount
	}
	balance, err := storage.GetBalance(ctx, j.node.State(), vaultAddr)
	if err != nil {
		return err
	}
	reply.Address = j.formatAddress(vaultAddr)
	reply.Custody = j.formatAddress(custody)
	reply.Vault = vault
	reply.Balance = balance
	return nil
}

type UserArgs struct {
	Authority string `json:"authority"`
	Name      string `json:"name"`
	Depositor string `json:"depositor"`
}

type UserReply struct {
	Address   string       `json:"address"`
	User      *ledger.User `json:"user"`
	Available uint64       `json:"available"`
}

func (j *JSONRPCServer) User(req *http.Request, args *UserArgs, reply *UserReply) error {
	ctx := req.Context()
	vaultAddr, vault, err := j.findVault(ctx, args.Authority, args.Name)
	if err != nil {
		return err
	}
	depositor, err := j.parseAddress(args.Depositor)
	if err != nil {
		return err
	}
	userAddr, _, err := j.node.Rules().GetDeriver().FindUser(vaultAddr, depositor)
	if err != nil {
		return err
	}
	user, exists, err := storage.GetUser(ctx, j.node.State(), userAddr)
	if err != nil {
		return err
	}
	// Records left by a closed incarnation of the vault are not reported.
	if !exists || user.VaultCreation != vault.Creation {
		return fmt.Errorf("%w: %s", ledger.ErrUserNotFound, j.formatAddress(userAddr))
	}
	reply.Address = j.formatAddress(userAddr)
	reply.User = user
	reply.Available = user.Available()
	return nil
}

type BalanceArgs struct {
	Address string `json:"address"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	addr, err := j.parseAddress(args.Address)
	if err != nil {
		return err
	}
	balance, err := storage.GetBalance(req.Context(), j.node.State(), addr)
	if err != nil {
		return err
	}
	reply.Amount = balance
	return nil
}

type TokenAccountArgs struct {
	// Owner is resolved to its associated token account.
	Owner string `json:"owner"`
}

type TokenAccountReply struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Amount  uint64 `json:"amount"`
}

func (j *JSONRPCServer) TokenAccount(req *http.Request, args *TokenAccountArgs, reply *TokenAccountReply) error {
	owner, err := j.parseAddress(args.Owner)
	if err != nil {
		return err
	}
	addr, _, err := j.node.Rules().GetDeriver().FindTokenAccount(owner)
	if err != nil {
		return err
	}
	account, exists, err := storage.GetTokenAccount(req.Context(), j.node.State(), addr)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, j.formatAddress(addr))
	}
	reply.Address = j.formatAddress(addr)
	reply.Owner = j.formatAddress(account.Owner)
	reply.Amount = account.Amount
	return nil
}

type LedgerArgs struct {
	Payer string `json:"payer"`
}

type LedgerReply struct {
	Address        string `json:"address"`
	TotalDeposited uint64 `json:"totalDeposited"`
	Balance        uint64 `json:"balance"`
}

func (j *JSONRPCServer) Ledger(req *http.Request, args *LedgerArgs, reply *LedgerReply) error {
	ctx := req.Context()
	payer, err := j.parseAddress(args.Payer)
	if err != nil {
		return err
	}
	addr, _, err := j.node.Rules().GetDeriver().FindLedger(payer)
	if err != nil {
		return err
	}
	account, exists, err := native.LoadAccount(ctx, j.node.State(), addr)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ledger.ErrVaultNotFound, j.formatAddress(addr))
	}
	balance, err := storage.GetBalance(ctx, j.node.State(), addr)
	if err != nil {
		return err
	}
	reply.Address = j.formatAddress(addr)
	reply.TotalDeposited = account.TotalDeposited()
	reply.Balance = balance
	return nil
}

type FundArgs struct {
	Address string `json:"address"`
}

type FundReply struct {
	Native uint64 `json:"native"`
	Tokens uint64 `json:"tokens"`
}

func (j *JSONRPCServer) Fund(req *http.Request, args *FundArgs, reply *FundReply) error {
	addr, err := j.parseAddress(args.Address)
	if err != nil {
		return err
	}
	nativeAmount, tokens, err := j.node.Fund(req.Context(), addr)
	if err != nil {
		return err
	}
	reply.Native = nativeAmount
	reply.Tokens = tokens
	return nil
}
