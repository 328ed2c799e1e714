// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/transfer"
)

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	missing := newFixture(t, nil)

	f := newFixture(t, nil)
	f.create(t)

	full := newFixture(t, nil)
	full.create(t)
	vault := getVault(ctx, t, full.store, full.vault)
	vault.NetDeposits = ledger.MaxCounter
	vault.NetWithdraws = ledger.MaxCounter
	require.NoError(t, storage.SetVault(ctx, full.store, full.vault, vault))

	capped := newFixture(t, nil)
	capped.exec(t, capped.authority, &CreateVault{Name: testName, DepositLimit: 100})

	deposit := func(f *fixture, amount uint64) *Deposit {
		return &Deposit{Authority: f.authority, Name: testName, Amount: amount, From: f.from}
	}

	tests := []chain.ActionTest{
		{
			Name:        "zero amount",
			Action:      deposit(f, 0),
			Rules:       f.rules,
			State:       f.store,
			Actor:       f.depositor,
			ExpectedErr: ledger.ErrInvalidAmount,
			Assertion:   unchanged(maps.Clone(f.store)),
		},
		{
			Name:        "vault not found",
			Action:      deposit(missing, 1),
			Rules:       missing.rules,
			State:       missing.store,
			Actor:       missing.depositor,
			ExpectedErr: ledger.ErrVaultNotFound,
		},
		{
			Name:        "source not owned by depositor",
			Action:      deposit(f, 1),
			Rules:       f.rules,
			State:       f.store,
			Actor:       f.authority,
			ExpectedErr: transfer.ErrTokenAccountMismatch,
		},
		{
			Name:        "deposit from custody",
			Action:      &Deposit{Authority: f.authority, Name: testName, Amount: 1, From: f.custody},
			Rules:       f.rules,
			State:       f.store,
			Actor:       f.depositor,
			ExpectedErr: ledger.ErrOperationNotAllowed,
		},
		{
			Name:        "insufficient tokens",
			Action:      deposit(f, initialTokens+1),
			Rules:       f.rules,
			State:       f.store,
			Actor:       f.depositor,
			ExpectedErr: transfer.ErrTransferFailed,
			Assertion:   unchanged(maps.Clone(f.store)),
		},
		{
			Name:        "counter overflow",
			Action:      deposit(full, 1),
			Rules:       full.rules,
			State:       full.store,
			Actor:       full.depositor,
			ExpectedErr: ledger.ErrOverflow,
			Assertion:   unchanged(maps.Clone(full.store)),
		},
		{
			Name:        "deposit limit",
			Action:      deposit(capped, 101),
			Rules:       capped.rules,
			State:       capped.store,
			Actor:       capped.depositor,
			ExpectedErr: ledger.ErrDepositLimitExceeded,
		},
		{
			Name:            "first deposit",
			Action:          deposit(f, scenarioAmount),
			Rules:           f.rules,
			State:           f.store,
			Timestamp:       testTimestamp,
			Actor:           f.depositor,
			ExpectedOutputs: [][]byte{f.user[:]},
			Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
				require := require.New(t)
				vault := getVault(ctx, t, mu, f.vault)
				require.Equal(0, vault.NetDeposits.Cmp(ledger.NewCounter(scenarioAmount)))
				require.True(vault.NetWithdraws.IsZero())

				user := getUser(ctx, t, mu, f.user)
				require.Equal(uint64(scenarioAmount), user.NetDeposit)
				require.Zero(user.NetWithdraw)
				require.Equal(f.depositor, user.Authority)
				require.Equal(f.vault, user.Vault)
				require.Equal(vault.Creation, user.VaultCreation)
				require.Equal(int64(testTimestamp), user.CreatedAt)
				require.Equal(int64(testTimestamp), user.LastActivityAt)

				require.Equal(uint64(initialTokens-scenarioAmount), getTokens(ctx, t, mu, f.from))
				require.Equal(uint64(scenarioAmount), getTokens(ctx, t, mu, f.custody))
			},
		},
		{
			Name:            "second deposit",
			Action:          deposit(f, 5),
			Rules:           f.rules,
			State:           f.store,
			Timestamp:       testTimestamp + 1,
			Actor:           f.depositor,
			ExpectedOutputs: [][]byte{f.user[:]},
			Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
				require := require.New(t)
				user := getUser(ctx, t, mu, f.user)
				require.Equal(uint64(scenarioAmount+5), user.NetDeposit)
				require.Equal(int64(testTimestamp), user.CreatedAt)
				require.Equal(int64(testTimestamp+1), user.LastActivityAt)
			},
		},
	}
	chain.ActionTestSuite(tests).Run(t)
}

func TestDepositResetsStaleUser(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t, nil)

	f.create(t)
	f.deposit(t, 10)
	f.withdraw(t, 10)
	f.exec(t, f.authority, &CloseVault{Authority: f.authority, Name: testName})
	stale := getUser(ctx, t, f.store, f.user)
	require.Equal(uint64(10), stale.NetDeposit)

	f.create(t)
	f.deposit(t, 3)
	user := getUser(ctx, t, f.store, f.user)
	require.NotEqual(stale.VaultCreation, user.VaultCreation)
	require.Equal(uint64(3), user.NetDeposit)
	require.Zero(user.NetWithdraw)
}
