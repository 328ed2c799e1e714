// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/instruction"
	"github.com/ava-labs/vaultvm/native"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

var _ chain.Action = (*Invoke)(nil)

// Invoke runs a raw instruction of the aggregate ledger program.
type Invoke struct {
	// Ledger is the account the instruction operates on.
	Ledger codec.Address `json:"ledger"`

	// Recipient is credited by a withdrawal. It is ignored otherwise and
	// may be empty.
	Recipient codec.Address `json:"recipient"`

	// Instruction is the encoded instruction.
	Instruction []byte `json:"instruction"`
}

func (*Invoke) GetTypeID() uint8 {
	return consts.InvokeID
}

func (i *Invoke) StateKeys(_ chain.Rules, actor codec.Address) (state.Keys, error) {
	keys := make(state.Keys, 4)
	keys.Add(string(storage.LedgerKey(i.Ledger)), state.All)
	keys.Add(string(storage.BalanceKey(i.Ledger)), state.All)
	keys.Add(string(storage.BalanceKey(actor)), state.Read|state.Write)
	keys.Add(string(storage.BalanceKey(i.Recipient)), state.All)
	return keys, nil
}

func (i *Invoke) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([][]byte, error) {
	if len(i.Instruction) == 0 {
		return nil, ErrOutputInstructionEmpty
	}
	instr, err := instruction.Decode(i.Instruction)
	if err != nil {
		return nil, err
	}
	return native.Process(ctx, r, mu, actor, i.Ledger, i.Recipient, instr)
}

func (i *Invoke) Size() int {
	return 2*codec.AddressLen + codec.BytesLen(i.Instruction)
}

func (i *Invoke) Marshal(p *codec.Packer) {
	p.PackAddress(i.Ledger)
	p.PackAddress(i.Recipient)
	p.PackBytes(i.Instruction)
}

func UnmarshalInvoke(p *codec.Packer) (chain.Action, error) {
	var invoke Invoke
	p.UnpackAddress(&invoke.Ledger)
	var recipient []byte
	p.UnpackFixedBytes(codec.AddressLen, &recipient)
	copy(invoke.Recipient[:], recipient)
	p.UnpackBytes(MaxInstructionSize, true, &invoke.Instruction)
	return &invoke, p.Err()
}
