// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/rpc"
	"github.com/ava-labs/vaultvm/utils"
)

// Client connects to the first uri of the default chain.
func (h *Handler) Client(log bool) (*rpc.JSONRPCClient, error) {
	_, uris, err := h.GetDefaultChain(log)
	if err != nil {
		return nil, err
	}
	if log {
		utils.Outf("{{yellow}}uri:{{/}} %s\n", uris[0])
	}
	return rpc.NewJSONRPCClient(uris[0]), nil
}

// ImportChain asks the node at [uri] for its chain id, stores the endpoint
// and makes the chain the default.
func (h *Handler) ImportChain(ctx context.Context, uri string) (ids.ID, error) {
	chainID, _, _, err := rpc.NewJSONRPCClient(uri).Network(ctx)
	if err != nil {
		return ids.Empty, err
	}
	if err := h.StoreChain(chainID, uri); err != nil {
		return ids.Empty, err
	}
	if err := h.StoreDefaultChain(chainID); err != nil {
		return ids.Empty, err
	}
	utils.Outf(
		"{{yellow}}stored chainID:{{/}} %s {{yellow}}uri:{{/}} %s\n",
		chainID,
		uri,
	)
	return chainID, nil
}

// Settings describes a wallet in YAML.
type Settings struct {
	// ChainID is checked against every uri when set.
	ChainID  string   `yaml:"chain_id"`
	URIs     []string `yaml:"uris"`
	KeyFiles []string `yaml:"key_files"`
}

// ImportSettings replaces the stored chains with the ones in the settings
// file at [settingsPath] and imports its keys. The last imported key
// becomes the default.
func (h *Handler) ImportSettings(ctx context.Context, settingsPath string) error {
	yamlFile, err := os.ReadFile(settingsPath)
	if err != nil {
		return err
	}
	var settings Settings
	if err := yaml.UnmarshalStrict(yamlFile, &settings); err != nil {
		return err
	}
	if len(settings.URIs) == 0 {
		return fmt.Errorf("%w: no uris", ErrInvalidSettings)
	}
	expected := ids.Empty
	if len(settings.ChainID) > 0 {
		expected, err = ids.FromString(settings.ChainID)
		if err != nil {
			return err
		}
	}

	oldChains, err := h.DeleteChains()
	if err != nil {
		return err
	}
	if len(oldChains) > 0 {
		utils.Outf("{{yellow}}deleted old chains:{{/}} %+v\n", oldChains)
	}
	for _, uri := range settings.URIs {
		chainID, _, _, err := rpc.NewJSONRPCClient(uri).Network(ctx)
		if err != nil {
			return err
		}
		if expected == ids.Empty {
			expected = chainID
		}
		if chainID != expected {
			return fmt.Errorf("%w: %s serves %s, expected %s", ErrChainMismatch, uri, chainID, expected)
		}
		if err := h.StoreChain(chainID, uri); err != nil {
			return err
		}
		utils.Outf(
			"{{yellow}}stored chainID:{{/}} %s {{yellow}}uri:{{/}} %s\n",
			chainID,
			uri,
		)
	}
	if err := h.StoreDefaultChain(expected); err != nil {
		return err
	}
	for _, keyFile := range settings.KeyFiles {
		if _, err := h.ImportKey(keyFile); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) SetDefaultChain() error {
	chains, err := h.GetChains()
	if err != nil {
		return err
	}
	if len(chains) == 0 {
		return ErrNoChains
	}
	chainID, _, err := prompt.SelectChain("set default chain", chains)
	if err != nil {
		return err
	}
	return h.StoreDefaultChain(chainID)
}

func (h *Handler) PrintChainInfo(ctx context.Context) error {
	cli, err := h.Client(true)
	if err != nil {
		return err
	}
	chainID, programID, hrp, err := cli.Network(ctx)
	if err != nil {
		return err
	}
	g, err := cli.Genesis(ctx)
	if err != nil {
		return err
	}
	height, timestamp, err := cli.Accepted(ctx)
	if err != nil {
		return err
	}
	utils.Outf(
		"{{cyan}}chainID:{{/}} %s {{cyan}}programID:{{/}} %s {{cyan}}hrp:{{/}} %s\n",
		chainID,
		programID,
		hrp,
	)
	utils.Outf(
		"{{cyan}}validity window:{{/}} %dms {{cyan}}vault reserve:{{/}} %s {{cyan}}withdrawal limit:{{/}} %d per %dms\n",
		g.ValidityWindow,
		utils.FormatBalance(g.VaultReserve),
		g.WithdrawalLimit,
		g.WithdrawalWindow,
	)
	utils.Outf(
		"{{cyan}}height:{{/}} %d {{cyan}}timestamp:{{/}} %s\n",
		height,
		time.UnixMilli(timestamp).UTC().Format(time.RFC3339),
	)
	return nil
}

// WatchChain polls the default chain every [interval] and prints each new
// batch until [ctx] is done.
func (h *Handler) WatchChain(ctx context.Context, interval time.Duration) error {
	cli, err := h.Client(true)
	if err != nil {
		return err
	}
	utils.Outf("{{green}}watching for new batches{{/}}\n")
	var (
		lastHeight uint64
		lastSeen   time.Time
		ticker     = time.NewTicker(interval)
	)
	defer ticker.Stop()
	for {
		height, timestamp, err := cli.Accepted(ctx)
		if err != nil {
			return err
		}
		if height != lastHeight || lastSeen.IsZero() {
			now := time.Now()
			if lastSeen.IsZero() {
				utils.Outf("{{green}}height:{{/}}%d\n", height)
			} else {
				utils.Outf(
					"{{green}}height:{{/}}%d {{green}}batches:{{/}}%d {{green}}latency:{{/}}%dms {{green}}gap:{{/}}%dms\n",
					height,
					height-lastHeight,
					now.UnixMilli()-timestamp,
					now.Sub(lastSeen).Milliseconds(),
				)
			}
			lastHeight = height
			lastSeen = now
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
