// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/ledger"
)

var _ chain.Rules = (*Rules)(nil)

type Rules struct {
	g *Genesis

	chainID ids.ID
	deriver *derive.Deriver
}

func (g *Genesis) Rules(chainID ids.ID) *Rules {
	return &Rules{
		g:       g,
		chainID: chainID,
		deriver: derive.New(g.ProgramID),
	}
}

func (r *Rules) GetChainID() ids.ID {
	return r.chainID
}

func (r *Rules) GetValidityWindow() int64 {
	return r.g.ValidityWindow
}

func (r *Rules) GetDeriver() *derive.Deriver {
	return r.deriver
}

func (r *Rules) GetVaultReserve() uint64 {
	return r.g.VaultReserve
}

func (r *Rules) GetWithdrawalLimit() ledger.WithdrawalLimit {
	return ledger.WithdrawalLimit{
		Amount: r.g.WithdrawalLimit,
		Window: r.g.WithdrawalWindow,
	}
}

func (r *Rules) GetLedgerWithdrawOwnerOnly() bool {
	return r.g.LedgerWithdrawOwnerOnly
}
