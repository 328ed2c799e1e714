// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/consts"
)

// Register adds every action to [r].
func Register(r *chain.Registry) error {
	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		r.RegisterAction(consts.CreateVaultID, UnmarshalCreateVault),
		r.RegisterAction(consts.DepositID, UnmarshalDeposit),
		r.RegisterAction(consts.WithdrawID, UnmarshalWithdraw),
		r.RegisterAction(consts.CloseVaultID, UnmarshalCloseVault),
		r.RegisterAction(consts.TransferID, UnmarshalTransfer),
		r.RegisterAction(consts.InvokeID, UnmarshalInvoke),
	)
	return errs.Err
}
