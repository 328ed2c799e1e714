// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cli implements the wallet behind vault-cli: a local keystore of
// signing keys and known chains, and the commands that drive a node over
// JSON-RPC.
package cli

import (
	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/pebble"
)

type Handler struct {
	hrp      string
	registry *chain.Registry

	db database.Database
}

// New opens the keystore at [dbPath]. Addresses are rendered with [hrp].
func New(dbPath string, hrp string) (*Handler, error) {
	registry := chain.NewRegistry()
	if err := actions.Register(registry); err != nil {
		return nil, err
	}
	if err := auth.Register(registry); err != nil {
		return nil, err
	}
	db, _, err := pebble.New(dbPath, pebble.NewDefaultConfig())
	if err != nil {
		return nil, err
	}
	return &Handler{
		hrp:      hrp,
		registry: registry,
		db:       db,
	}, nil
}

func (h *Handler) HRP() string {
	return h.hrp
}

func (h *Handler) Registry() *chain.Registry {
	return h.registry
}
