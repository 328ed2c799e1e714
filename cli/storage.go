// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/utils"
)

const (
	defaultPrefix = 0x0
	keyPrefix     = 0x1
	chainPrefix   = 0x2

	defaultKeyKey   = "key"
	defaultChainKey = "chain"
)

func (h *Handler) StoreDefault(key string, value []byte) error {
	k := make([]byte, 1+len(key))
	k[0] = defaultPrefix
	copy(k[1:], []byte(key))
	return h.db.Put(k, value)
}

func (h *Handler) GetDefault(key string) ([]byte, error) {
	k := make([]byte, 1+len(key))
	k[0] = defaultPrefix
	copy(k[1:], []byte(key))
	v, err := h.db.Get(k)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *Handler) StoreDefaultChain(chainID ids.ID) error {
	return h.StoreDefault(defaultChainKey, chainID[:])
}

// GetDefaultChain returns the default chain and every uri stored for it.
func (h *Handler) GetDefaultChain(log bool) (ids.ID, []string, error) {
	v, err := h.GetDefault(defaultChainKey)
	if err != nil {
		return ids.Empty, nil, err
	}
	if len(v) == 0 {
		return ids.Empty, nil, ErrNoChains
	}
	chainID := ids.ID(v)
	uris, err := h.GetChain(chainID)
	if err != nil {
		return ids.Empty, nil, err
	}
	if len(uris) == 0 {
		return ids.Empty, nil, ErrNoChains
	}
	if log {
		utils.Outf("{{yellow}}chainID:{{/}} %s\n", chainID)
	}
	return chainID, uris, nil
}

func keyStoreKey(addr codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = keyPrefix
	copy(k[1:], addr[:])
	return k
}

// StoreKey adds [pk] to the keystore. A key can only be stored once.
func (h *Handler) StoreKey(pk *auth.PrivateKey) error {
	k := keyStoreKey(pk.Address)
	has, err := h.db.Has(k)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", ErrDuplicate, codec.MustAddressBech32(h.hrp, pk.Address))
	}
	return h.db.Put(k, pk.Bytes)
}

func (h *Handler) GetKey(addr codec.Address) (*auth.PrivateKey, error) {
	v, err := h.db.Get(keyStoreKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, codec.MustAddressBech32(h.hrp, addr))
	}
	if err != nil {
		return nil, err
	}
	return auth.LoadED25519(v)
}

// GetKeys returns every stored key ordered by address.
func (h *Handler) GetKeys() ([]*auth.PrivateKey, error) {
	iter := h.db.NewIteratorWithPrefix([]byte{keyPrefix})
	defer iter.Release()

	keys := []*auth.PrivateKey{}
	for iter.Next() {
		// The database copies the iterator value for us.
		pk, err := auth.LoadED25519(iter.Value())
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, iter.Error()
}

func (h *Handler) StoreDefaultKey(addr codec.Address) error {
	return h.StoreDefault(defaultKeyKey, addr[:])
}

func (h *Handler) GetDefaultKey(log bool) (*auth.PrivateKey, error) {
	v, err := h.GetDefault(defaultKeyKey)
	if err != nil {
		return nil, err
	}
	if len(v) != codec.AddressLen {
		return nil, ErrNoKeys
	}
	addr := codec.Address(v)
	pk, err := h.GetKey(addr)
	if err != nil {
		return nil, err
	}
	if log {
		utils.Outf("{{yellow}}address:{{/}} %s\n", codec.MustAddressBech32(h.hrp, addr))
	}
	return pk, nil
}

func chainStoreKey(chainID ids.ID, uri string) []byte {
	k := make([]byte, 1+consts.IDLen*2)
	k[0] = chainPrefix
	copy(k[1:], chainID[:])
	uriID := hashing.ComputeHash256Array([]byte(uri))
	copy(k[1+consts.IDLen:], uriID[:])
	return k
}

// StoreChain records [uri] as an endpoint of [chainID].
func (h *Handler) StoreChain(chainID ids.ID, uri string) error {
	k := chainStoreKey(chainID, uri)
	has, err := h.db.Has(k)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", ErrDuplicate, uri)
	}
	return h.db.Put(k, []byte(uri))
}

func (h *Handler) GetChain(chainID ids.ID) ([]string, error) {
	k := make([]byte, 1+consts.IDLen)
	k[0] = chainPrefix
	copy(k[1:], chainID[:])

	uris := []string{}
	iter := h.db.NewIteratorWithPrefix(k)
	defer iter.Release()
	for iter.Next() {
		uris = append(uris, string(iter.Value()))
	}
	return uris, iter.Error()
}

func (h *Handler) GetChains() (map[ids.ID][]string, error) {
	iter := h.db.NewIteratorWithPrefix([]byte{chainPrefix})
	defer iter.Release()

	chains := map[ids.ID][]string{}
	for iter.Next() {
		k := iter.Key()
		chainID := ids.ID(k[1 : 1+consts.IDLen])
		chains[chainID] = append(chains[chainID], string(iter.Value()))
	}
	return chains, iter.Error()
}

// DeleteChains removes every stored chain and returns their ids.
func (h *Handler) DeleteChains() ([]ids.ID, error) {
	chains, err := h.GetChains()
	if err != nil {
		return nil, err
	}
	chainIDs := make([]ids.ID, 0, len(chains))
	for chainID, uris := range chains {
		for _, uri := range uris {
			if err := h.db.Delete(chainStoreKey(chainID, uri)); err != nil {
				return nil, err
			}
		}
		chainIDs = append(chainIDs, chainID)
	}
	return chainIDs, nil
}

func (h *Handler) CloseDatabase() error {
	if h.db == nil {
		return nil
	}
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("unable to close database: %w", err)
	}
	// Allow DB to be closed multiple times
	h.db = nil
	return nil
}
