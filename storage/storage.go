// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/keys"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// State
// 0x0/ (vault)
//   -> [vault] => vault record
// 0x1/ (user)
//   -> [user] => user record
// 0x2/ (token)
//   -> [token account] => owner|amount
// 0x3/ (balance)
//   -> [owner] => native balance
// 0x4/ (ledger)
//   -> [ledger] => total_deposited (8 bytes, little endian)
// 0x5/ (metadata)
//   -> height|timestamp of the last executed batch

const (
	vaultPrefix byte = iota
	userPrefix
	tokenPrefix
	balancePrefix
	ledgerPrefix
	metadataPrefix
)

// LedgerSize is the size of the raw aggregate ledger buffer.
const LedgerSize = consts.Uint64Len

var (
	VaultChunks   = chunks(ledger.VaultSize)
	UserChunks    = chunks(ledger.UserSize)
	TokenChunks   = chunks(TokenAccountSize)
	BalanceChunks = chunks(consts.Uint64Len)
	LedgerChunks  = chunks(LedgerSize)
)

func chunks(size int) uint16 {
	return uint16((size + keys.ChunkSize - 1) / keys.ChunkSize)
}

// [prefix] + [address] + [chunks]
func addressKey(prefix byte, addr codec.Address, maxChunks uint16) []byte {
	k := make([]byte, consts.ByteLen+codec.AddressLen+consts.Uint16Len)
	k[0] = prefix
	copy(k[1:], addr[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen:], maxChunks)
	return k
}

func VaultKey(addr codec.Address) []byte {
	return addressKey(vaultPrefix, addr, VaultChunks)
}

func UserKey(addr codec.Address) []byte {
	return addressKey(userPrefix, addr, UserChunks)
}

func TokenAccountKey(addr codec.Address) []byte {
	return addressKey(tokenPrefix, addr, TokenChunks)
}

func BalanceKey(addr codec.Address) []byte {
	return addressKey(balancePrefix, addr, BalanceChunks)
}

func LedgerKey(addr codec.Address) []byte {
	return addressKey(ledgerPrefix, addr, LedgerChunks)
}

// VaultPrefix is the key prefix shared by every vault record.
func VaultPrefix() []byte {
	return []byte{vaultPrefix}
}

// AddressFromKey returns the address a record key was built from.
func AddressFromKey(k []byte) (codec.Address, error) {
	if len(k) != consts.ByteLen+codec.AddressLen+consts.Uint16Len {
		return codec.EmptyAddress, fmt.Errorf("%w: key length %d", codec.ErrInvalidSize, len(k))
	}
	var addr codec.Address
	copy(addr[:], k[1:])
	return addr, nil
}

func get(ctx context.Context, im state.Immutable, key []byte) ([]byte, bool, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetVault returns the vault record at [addr], if any.
func GetVault(ctx context.Context, im state.Immutable, addr codec.Address) (*ledger.Vault, bool, error) {
	v, exists, err := get(ctx, im, VaultKey(addr))
	if err != nil || !exists {
		return nil, false, err
	}
	vault, err := ledger.UnmarshalVault(v)
	if err != nil {
		return nil, false, err
	}
	return vault, true, nil
}

func SetVault(ctx context.Context, mu state.Mutable, addr codec.Address, vault *ledger.Vault) error {
	return mu.Insert(ctx, VaultKey(addr), vault.Bytes())
}

func RemoveVault(ctx context.Context, mu state.Mutable, addr codec.Address) error {
	return mu.Remove(ctx, VaultKey(addr))
}

// GetUser returns the user record at [addr], if any.
func GetUser(ctx context.Context, im state.Immutable, addr codec.Address) (*ledger.User, bool, error) {
	v, exists, err := get(ctx, im, UserKey(addr))
	if err != nil || !exists {
		return nil, false, err
	}
	user, err := ledger.UnmarshalUser(v)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func SetUser(ctx context.Context, mu state.Mutable, addr codec.Address, user *ledger.User) error {
	return mu.Insert(ctx, UserKey(addr), user.Bytes())
}

// GetTokenAccount returns the token account at [addr], if any.
func GetTokenAccount(ctx context.Context, im state.Immutable, addr codec.Address) (*TokenAccount, bool, error) {
	v, exists, err := get(ctx, im, TokenAccountKey(addr))
	if err != nil || !exists {
		return nil, false, err
	}
	account, err := UnmarshalTokenAccount(v)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func SetTokenAccount(ctx context.Context, mu state.Mutable, addr codec.Address, account *TokenAccount) error {
	return mu.Insert(ctx, TokenAccountKey(addr), account.Bytes())
}

func RemoveTokenAccount(ctx context.Context, mu state.Mutable, addr codec.Address) error {
	return mu.Remove(ctx, TokenAccountKey(addr))
}

// GetLedger returns a copy of the raw aggregate ledger buffer at [addr].
func GetLedger(ctx context.Context, im state.Immutable, addr codec.Address) ([]byte, bool, error) {
	v, exists, err := get(ctx, im, LedgerKey(addr))
	if err != nil || !exists {
		return nil, false, err
	}
	if len(v) != LedgerSize {
		return nil, false, fmt.Errorf("%w: length %d", ErrInvalidLedger, len(v))
	}
	return append([]byte(nil), v...), true, nil
}

func SetLedger(ctx context.Context, mu state.Mutable, addr codec.Address, buf []byte) error {
	if len(buf) != LedgerSize {
		return fmt.Errorf("%w: length %d", ErrInvalidLedger, len(buf))
	}
	return mu.Insert(ctx, LedgerKey(addr), append([]byte(nil), buf...))
}

// GetBalance returns the native balance of [addr]. A missing balance is 0.
func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error) {
	_, bal, _, err := getBalance(ctx, im, addr)
	return bal, err
}

func getBalance(ctx context.Context, im state.Immutable, addr codec.Address) ([]byte, uint64, bool, error) {
	k := BalanceKey(addr)
	v, exists, err := get(ctx, im, k)
	if err != nil || !exists {
		return k, 0, false, err
	}
	bal, err := database.ParseUInt64(v)
	if err != nil {
		return k, 0, false, err
	}
	return k, bal, true, nil
}

func SetBalance(ctx context.Context, mu state.Mutable, addr codec.Address, balance uint64) error {
	return setBalance(ctx, mu, BalanceKey(addr), balance)
}

func setBalance(ctx context.Context, mu state.Mutable, key []byte, balance uint64) error {
	return mu.Insert(ctx, key, binary.BigEndian.AppendUint64(nil, balance))
}

func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) (uint64, error) {
	key, bal, _, err := getBalance(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	nbal, err := smath.Add64(bal, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not add balance (bal=%d, addr=%s, amount=%d)",
			ErrInvalidBalance,
			bal,
			addr,
			amount,
		)
	}
	return nbal, setBalance(ctx, mu, key, nbal)
}

func SubBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) (uint64, error) {
	key, bal, _, err := getBalance(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	nbal, err := smath.Sub(bal, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not subtract balance (bal=%d, addr=%s, amount=%d)",
			ErrInvalidBalance,
			bal,
			addr,
			amount,
		)
	}
	if nbal == 0 {
		// If there is no balance left, we should delete the record instead of
		// setting it to 0.
		return 0, mu.Remove(ctx, key)
	}
	return nbal, setBalance(ctx, mu, key, nbal)
}
