// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

func testVault() *Vault {
	return &Vault{
		Nonce:     254,
		Authority: codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID()),
		Name:      "treasury",
		CreatedAt: 1_700_000_000_000,
		Creation:  ids.GenerateTestID(),
	}
}

func TestCounterAdd(t *testing.T) {
	require := require.New(t)

	c := NewCounter(consts.MaxUint64)
	c, err := c.Add(consts.MaxUint64)
	require.NoError(err)
	_, fits := c.Uint64()
	require.False(fits)
	require.Equal("36893488147419103230", c.String())

	_, err = MaxCounter.Add(1)
	require.ErrorIs(err, ErrOverflow)

	same, err := MaxCounter.Add(0)
	require.NoError(err)
	require.Equal(0, same.Cmp(MaxCounter))
}

func TestCounterEncoding(t *testing.T) {
	require := require.New(t)

	c, err := NewCounter(consts.MaxUint64).Add(5)
	require.NoError(err)
	b := c.Bytes()
	parsed, err := CounterFromBytes(b[:])
	require.NoError(err)
	require.Equal(0, c.Cmp(parsed))

	j, err := json.Marshal(c)
	require.NoError(err)
	var fromJSON Counter
	require.NoError(json.Unmarshal(j, &fromJSON))
	require.Equal(0, c.Cmp(fromJSON))

	_, err = CounterFromBytes([]byte{1, 2})
	require.ErrorIs(err, ErrInvalidRecord)
}

func TestValidateName(t *testing.T) {
	require := require.New(t)
	require.NoError(ValidateName("treasury"))
	require.NoError(ValidateName(strings.Repeat("a", MaxVaultNameLen)))
	require.ErrorIs(ValidateName(""), ErrInvalidVaultName)
	require.ErrorIs(ValidateName(strings.Repeat("a", MaxVaultNameLen+1)), ErrInvalidVaultName)
	require.ErrorIs(ValidateName(string([]byte{0xff})), ErrInvalidVaultName)
}

func TestVaultCounters(t *testing.T) {
	require := require.New(t)
	v := testVault()

	require.ErrorIs(v.Deposit(0), ErrInvalidAmount)
	require.NoError(v.Deposit(1_000_000))
	require.NoError(v.Withdraw(400_000))
	require.ErrorIs(v.Withdraw(600_001), ErrInsufficientFunds)
	require.ErrorIs(v.Closable(), ErrVaultNotEmpty)

	outstanding, err := v.Outstanding()
	require.NoError(err)
	require.Equal(0, outstanding.Cmp(NewCounter(600_000)))

	require.NoError(v.Withdraw(600_000))
	require.NoError(v.Closable())
	require.NoError(v.Verify())
}

func TestVaultDepositOverflowLeavesRecord(t *testing.T) {
	require := require.New(t)
	v := testVault()
	v.NetDeposits = MaxCounter

	require.ErrorIs(v.Deposit(1), ErrOverflow)
	require.Equal(0, v.NetDeposits.Cmp(MaxCounter))
}

func TestVaultDepositLimit(t *testing.T) {
	require := require.New(t)
	v := testVault()
	v.DepositLimit = 100

	require.NoError(v.Deposit(60))
	require.ErrorIs(v.Deposit(41), ErrDepositLimitExceeded)
	require.NoError(v.Withdraw(50))
	require.NoError(v.Deposit(90))
	require.Equal(0, v.NetDeposits.Cmp(NewCounter(150)))
}

func TestVaultEncoding(t *testing.T) {
	require := require.New(t)
	v := testVault()
	v.Reserve = 5
	require.NoError(v.Deposit(consts.MaxUint64))
	require.NoError(v.Deposit(7))
	require.NoError(v.Withdraw(3))
	v.DepositLimit = 10

	b := v.Bytes()
	require.LessOrEqual(len(b), VaultSize)
	parsed, err := UnmarshalVault(b)
	require.NoError(err)
	require.Equal(v, parsed)

	_, err = UnmarshalVault(append(b, 0))
	require.ErrorIs(err, ErrInvalidRecord)
	_, err = UnmarshalVault(b[:10])
	require.ErrorIs(err, ErrInvalidRecord)

	// A record with more withdrawn than deposited is rejected.
	v.NetWithdraws, v.NetDeposits = v.NetDeposits, v.NetWithdraws
	_, err = UnmarshalVault(v.Bytes())
	require.ErrorIs(err, ErrInvariantViolated)
}

func TestUserInsufficientFunds(t *testing.T) {
	require := require.New(t)
	u := NewUser(255, codec.EmptyAddress, codec.EmptyAddress, ids.Empty, 0)

	require.NoError(u.Deposit(100, 1))
	require.NoError(u.Withdraw(100, 2, WithdrawalLimit{}))
	require.ErrorIs(u.Withdraw(1, 3, WithdrawalLimit{}), ErrInsufficientFunds)
	require.Equal(uint64(100), u.NetDeposit)
	require.Equal(uint64(100), u.NetWithdraw)
	require.Equal(int64(2), u.LastActivityAt)
}

func TestUserDepositOverflow(t *testing.T) {
	require := require.New(t)
	u := NewUser(255, codec.EmptyAddress, codec.EmptyAddress, ids.Empty, 0)
	u.NetDeposit = consts.MaxUint64

	require.ErrorIs(u.Deposit(1, 1), ErrOverflow)
	require.Equal(consts.MaxUint64, u.NetDeposit)
	require.Zero(u.LastActivityAt)
}

func TestUserWithdrawalLimit(t *testing.T) {
	require := require.New(t)
	u := NewUser(255, codec.EmptyAddress, codec.EmptyAddress, ids.Empty, 0)
	require.NoError(u.Deposit(1_000, 0))

	limit := WithdrawalLimit{Amount: 100, Window: 1_000}
	require.NoError(u.Withdraw(60, 10, limit))
	require.ErrorIs(u.Withdraw(41, 20, limit), ErrWithdrawalLimitExceeded)
	require.Equal(uint64(60), u.NetWithdraw)
	require.NoError(u.Withdraw(40, 30, limit))

	// A new window starts once the previous one has elapsed.
	require.NoError(u.Withdraw(100, 1_010, limit))
	require.Equal(int64(1_010), u.WindowStart)
	require.Equal(uint64(100), u.WindowWithdrawn)

	// Without a window the cap applies to each withdrawal.
	perTx := WithdrawalLimit{Amount: 100}
	require.NoError(u.Withdraw(100, 1_020, perTx))
	require.ErrorIs(u.Withdraw(101, 1_030, perTx), ErrWithdrawalLimitExceeded)
}

func TestUserEncoding(t *testing.T) {
	require := require.New(t)
	u := NewUser(
		200,
		codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID()),
		codec.CreateAddress(consts.DerivedID, ids.GenerateTestID()),
		ids.GenerateTestID(),
		5,
	)
	require.NoError(u.Deposit(50, 6))
	require.NoError(u.Withdraw(20, 7, WithdrawalLimit{Amount: 30, Window: 10}))

	parsed, err := UnmarshalUser(u.Bytes())
	require.NoError(err)
	require.Equal(u, parsed)

	u.NetWithdraw = 51
	_, err = UnmarshalUser(u.Bytes())
	require.ErrorIs(err, ErrInvariantViolated)
}
