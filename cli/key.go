// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/rpc"
	"github.com/ava-labs/vaultvm/utils"
)

// GenerateKey stores a new key and makes it the default.
func (h *Handler) GenerateKey() (codec.Address, error) {
	pk, err := auth.GenerateED25519()
	if err != nil {
		return codec.EmptyAddress, err
	}
	if err := h.storeAndSetDefault(pk); err != nil {
		return codec.EmptyAddress, err
	}
	utils.Outf(
		"{{green}}created address:{{/}} %s\n",
		codec.MustAddressBech32(h.hrp, pk.Address),
	)
	return pk.Address, nil
}

// ImportKey loads a base58 encoded private key from [keyPath] and makes it
// the default.
func (h *Handler) ImportKey(keyPath string) (codec.Address, error) {
	raw, err := utils.LoadBytes(keyPath, -1)
	if err != nil {
		return codec.EmptyAddress, err
	}
	b, err := base58.Decode(strings.TrimSpace(string(raw)))
	if err != nil {
		return codec.EmptyAddress, err
	}
	pk, err := auth.LoadED25519(b)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if err := h.storeAndSetDefault(pk); err != nil {
		return codec.EmptyAddress, err
	}
	utils.Outf(
		"{{green}}imported address:{{/}} %s\n",
		codec.MustAddressBech32(h.hrp, pk.Address),
	)
	return pk.Address, nil
}

// ExportKey writes the default key to [keyPath] in the format read by
// [ImportKey].
func (h *Handler) ExportKey(keyPath string) error {
	pk, err := h.GetDefaultKey(true)
	if err != nil {
		return err
	}
	if err := utils.SaveBytes(keyPath, []byte(base58.Encode(pk.Bytes))); err != nil {
		return err
	}
	utils.Outf("{{green}}exported key:{{/}} %s\n", keyPath)
	return nil
}

func (h *Handler) storeAndSetDefault(pk *auth.PrivateKey) error {
	if err := h.StoreKey(pk); err != nil {
		return err
	}
	return h.StoreDefaultKey(pk.Address)
}

func (h *Handler) SetKey(ctx context.Context) error {
	keys, err := h.GetKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		utils.Outf("{{red}}no stored keys{{/}}\n")
		return nil
	}
	cli, err := h.Client(false)
	if err != nil {
		return err
	}
	addrs := make([]string, len(keys))
	for i, key := range keys {
		addrs[i] = codec.MustAddressBech32(h.hrp, key.Address)
	}
	balances, err := cli.Balances(ctx, addrs)
	if err != nil {
		return err
	}
	utils.Outf("{{cyan}}stored keys:{{/}} %d\n", len(keys))
	for i, addr := range addrs {
		utils.Outf(
			"%d) {{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s\n",
			i,
			addr,
			utils.FormatBalance(balances[i]),
		)
	}

	keyIndex, err := prompt.Choice("set default key", len(keys))
	if err != nil {
		return err
	}
	return h.StoreDefaultKey(keys[keyIndex].Address)
}

// Balance prints the native balance and token account of the default key
// on the first (or every, if [checkAllChains]) uri of the default chain.
func (h *Handler) Balance(ctx context.Context, checkAllChains bool) error {
	pk, err := h.GetDefaultKey(true)
	if err != nil {
		return err
	}
	_, uris, err := h.GetDefaultChain(true)
	if err != nil {
		return err
	}
	if !checkAllChains {
		uris = uris[:1]
	}
	addr := codec.MustAddressBech32(h.hrp, pk.Address)
	for _, uri := range uris {
		utils.Outf("{{yellow}}uri:{{/}} %s\n", uri)
		cli := rpc.NewJSONRPCClient(uri)
		balance, err := cli.Balance(ctx, addr)
		if err != nil {
			return err
		}
		utils.Outf(
			"{{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s\n",
			addr,
			utils.FormatBalance(balance),
		)
		account, err := cli.TokenAccount(ctx, addr)
		if isNotFound(err, rpc.ErrAccountNotFound) {
			utils.Outf("{{yellow}}token account:{{/}} none\n")
			continue
		}
		if err != nil {
			return err
		}
		utils.Outf(
			"{{cyan}}token account:{{/}} %s {{cyan}}tokens:{{/}} %d\n",
			account.Address,
			account.Amount,
		)
	}
	return nil
}

// isNotFound reports whether a JSON-RPC error carries [target]. Errors
// crossing the wire only keep their message.
func isNotFound(err error, target error) bool {
	return err != nil && strings.Contains(err.Error(), target.Error())
}
