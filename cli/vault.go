// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"fmt"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/instruction"
	"github.com/ava-labs/vaultvm/rpc"
	"github.com/ava-labs/vaultvm/utils"
)

// Actor is the default key connected to the default chain.
type Actor struct {
	Key     *auth.PrivateKey
	Address string
	Factory chain.AuthFactory
	Client  *rpc.JSONRPCClient
}

func (h *Handler) DefaultActor() (*Actor, error) {
	pk, err := h.GetDefaultKey(true)
	if err != nil {
		return nil, err
	}
	factory, err := auth.GetFactory(pk)
	if err != nil {
		return nil, err
	}
	cli, err := h.Client(true)
	if err != nil {
		return nil, err
	}
	return &Actor{
		Key:     pk,
		Address: codec.MustAddressBech32(h.hrp, pk.Address),
		Factory: factory,
		Client:  cli,
	}, nil
}

// Deriver returns the address deriver of the chain [cli] is connected to.
func Deriver(ctx context.Context, cli *rpc.JSONRPCClient) (*derive.Deriver, error) {
	chainID, _, _, err := cli.Network(ctx)
	if err != nil {
		return nil, err
	}
	g, err := cli.Genesis(ctx)
	if err != nil {
		return nil, err
	}
	return g.Rules(chainID).GetDeriver(), nil
}

// Send signs [action] with [a] and waits for its result.
func (h *Handler) Send(ctx context.Context, a *Actor, action chain.Action, modifiers ...rpc.Modifier) (*rpc.SubmitTxReply, error) {
	submit, tx, err := a.Client.GenerateTransaction(ctx, h.registry, action, a.Factory, modifiers...)
	if err != nil {
		return nil, err
	}
	reply, err := submit(ctx)
	if err != nil {
		utils.Outf("{{red}}transaction failed:{{/}} %s {{red}}txID:{{/}} %s\n", err, tx.ID())
		return reply, err
	}
	utils.Outf("{{green}}transaction succeeded:{{/}} %s\n", tx.ID())
	return reply, nil
}

// Fund asks the node faucet to credit [a].
func (*Handler) Fund(ctx context.Context, a *Actor) error {
	nativeAmount, tokens, err := a.Client.Fund(ctx, a.Address)
	if err != nil {
		return err
	}
	utils.Outf(
		"{{green}}funded:{{/}} %s {{green}}tokens:{{/}} %d\n",
		utils.FormatBalance(nativeAmount),
		tokens,
	)
	return nil
}

func (h *Handler) Transfer(ctx context.Context, a *Actor, to codec.Address, amount uint64, memo []byte) error {
	_, err := h.Send(ctx, a, &actions.Transfer{To: to, Value: amount, Memo: memo})
	return err
}

// CreateVault creates the vault [name] owned by [a] and returns its
// address and custody account.
func (h *Handler) CreateVault(ctx context.Context, a *Actor, name string, depositLimit uint64) (codec.Address, codec.Address, error) {
	reply, err := h.Send(ctx, a, &actions.CreateVault{Name: name, DepositLimit: depositLimit})
	if err != nil {
		return codec.EmptyAddress, codec.EmptyAddress, err
	}
	vault, err := codec.ToAddress(reply.Outputs[0])
	if err != nil {
		return codec.EmptyAddress, codec.EmptyAddress, err
	}
	custody, err := codec.ToAddress(reply.Outputs[1])
	if err != nil {
		return codec.EmptyAddress, codec.EmptyAddress, err
	}
	utils.Outf(
		"{{cyan}}vault:{{/}} %s {{cyan}}custody:{{/}} %s\n",
		codec.MustAddressBech32(h.hrp, vault),
		codec.MustAddressBech32(h.hrp, custody),
	)
	return vault, custody, nil
}

// Deposit moves [amount] tokens from the token account of [a] into the
// vault ([authority], [name]).
func (h *Handler) Deposit(ctx context.Context, a *Actor, authority codec.Address, name string, amount uint64) error {
	d, err := Deriver(ctx, a.Client)
	if err != nil {
		return err
	}
	from, _, err := d.FindTokenAccount(a.Key.Address)
	if err != nil {
		return err
	}
	_, err = h.Send(ctx, a, &actions.Deposit{
		Authority: authority,
		Name:      name,
		Amount:    amount,
		From:      from,
	})
	return err
}

// Withdraw returns [amount] tokens from the vault ([authority], [name]) to
// the token account of [a].
func (h *Handler) Withdraw(ctx context.Context, a *Actor, authority codec.Address, name string, amount uint64) error {
	d, err := Deriver(ctx, a.Client)
	if err != nil {
		return err
	}
	to, _, err := d.FindTokenAccount(a.Key.Address)
	if err != nil {
		return err
	}
	_, err = h.Send(ctx, a, &actions.Withdraw{
		Authority: authority,
		Name:      name,
		Amount:    amount,
		To:        to,
	})
	return err
}

// CloseVault closes the vault [name] owned by [a] and returns the refunded
// reserve.
func (h *Handler) CloseVault(ctx context.Context, a *Actor, name string) (uint64, error) {
	reply, err := h.Send(ctx, a, &actions.CloseVault{Authority: a.Key.Address, Name: name})
	if err != nil {
		return 0, err
	}
	p := codec.NewReader(reply.Outputs[0], len(reply.Outputs[0]))
	refund := p.UnpackUint64(false)
	if err := p.Err(); err != nil {
		return 0, err
	}
	utils.Outf("{{cyan}}refunded:{{/}} %s\n", utils.FormatBalance(refund))
	return refund, nil
}

func (h *Handler) ShowVault(ctx context.Context, cli *rpc.JSONRPCClient, authority codec.Address, name string) (*rpc.VaultReply, error) {
	reply, err := cli.Vault(ctx, codec.MustAddressBech32(h.hrp, authority), name)
	if err != nil {
		return nil, err
	}
	utils.Outf(
		"{{cyan}}vault:{{/}} %s {{cyan}}custody:{{/}} %s\n",
		reply.Address,
		reply.Custody,
	)
	utils.Outf(
		"{{cyan}}custodied:{{/}} %d {{cyan}}deposit limit:{{/}} %d {{cyan}}net deposits:{{/}} %s {{cyan}}net withdraws:{{/}} %s {{cyan}}balance:{{/}} %s\n",
		reply.Custodied,
		reply.Vault.DepositLimit,
		reply.Vault.NetDeposits,
		reply.Vault.NetWithdraws,
		utils.FormatBalance(reply.Balance),
	)
	return reply, nil
}

func (h *Handler) ShowUser(ctx context.Context, cli *rpc.JSONRPCClient, authority codec.Address, name string, depositor codec.Address) (*rpc.UserReply, error) {
	reply, err := cli.User(
		ctx,
		codec.MustAddressBech32(h.hrp, authority),
		name,
		codec.MustAddressBech32(h.hrp, depositor),
	)
	if err != nil {
		return nil, err
	}
	utils.Outf(
		"{{cyan}}user:{{/}} %s {{cyan}}available:{{/}} %d\n",
		reply.Address,
		reply.Available,
	)
	return reply, nil
}

// InitLedger creates the aggregate ledger paid for by [a].
func (h *Handler) InitLedger(ctx context.Context, a *Actor) (codec.Address, error) {
	d, err := Deriver(ctx, a.Client)
	if err != nil {
		return codec.EmptyAddress, err
	}
	addr, _, err := d.FindLedger(a.Key.Address)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if err := h.invoke(ctx, a, addr, codec.EmptyAddress, instruction.Initialize{}); err != nil {
		return codec.EmptyAddress, err
	}
	utils.Outf("{{cyan}}ledger:{{/}} %s\n", codec.MustAddressBech32(h.hrp, addr))
	return addr, nil
}

// LedgerDeposit moves [amount] of the native balance of [a] into
// [ledgerAddr].
func (h *Handler) LedgerDeposit(ctx context.Context, a *Actor, ledgerAddr codec.Address, amount uint64) error {
	return h.invoke(ctx, a, ledgerAddr, codec.EmptyAddress, instruction.Deposit{Amount: amount})
}

// LedgerWithdraw pays a share of the deposits in [ledgerAddr] to
// [recipient].
func (h *Handler) LedgerWithdraw(ctx context.Context, a *Actor, ledgerAddr codec.Address, recipient codec.Address) error {
	return h.invoke(ctx, a, ledgerAddr, recipient, instruction.Withdraw{})
}

func (h *Handler) invoke(ctx context.Context, a *Actor, ledgerAddr codec.Address, recipient codec.Address, i instruction.Instruction) error {
	b, err := instruction.Encode(i)
	if err != nil {
		return err
	}
	_, err = h.Send(ctx, a, &actions.Invoke{Ledger: ledgerAddr, Recipient: recipient, Instruction: b})
	return err
}

func (*Handler) ShowLedger(ctx context.Context, cli *rpc.JSONRPCClient, payer string) (*rpc.LedgerReply, error) {
	reply, err := cli.Ledger(ctx, payer)
	if err != nil {
		return nil, fmt.Errorf("%w: payer %s", err, payer)
	}
	utils.Outf(
		"{{cyan}}ledger:{{/}} %s {{cyan}}total deposited:{{/}} %s {{cyan}}balance:{{/}} %s\n",
		reply.Address,
		utils.FormatBalance(reply.TotalDeposited),
		utils.FormatBalance(reply.Balance),
	)
	return reply, nil
}
