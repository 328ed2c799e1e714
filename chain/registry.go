// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
)

// Registry holds the decoders of every [Action] and [Auth] a chain
// accepts, along with the batch verification engines of each [Auth].
type Registry struct {
	actions *codec.TypeParser[Action]
	auths   *codec.TypeParser[Auth]
	engines map[uint8]AuthEngine
}

func NewRegistry() *Registry {
	return &Registry{
		actions: codec.NewTypeParser[Action](),
		auths:   codec.NewTypeParser[Auth](),
		engines: map[uint8]AuthEngine{},
	}
}

func (r *Registry) RegisterAction(typeID uint8, f func(*codec.Packer) (Action, error)) error {
	return r.actions.Register(typeID, f)
}

// RegisterAuth registers an [Auth] type. [engine] may be nil if the type
// cannot be batch verified.
func (r *Registry) RegisterAuth(typeID uint8, f func(*codec.Packer) (Auth, error), engine AuthEngine) error {
	if err := r.auths.Register(typeID, f); err != nil {
		return err
	}
	if engine != nil {
		r.engines[typeID] = engine
	}
	return nil
}

func (r *Registry) UnmarshalAction(p *codec.Packer) (Action, error) {
	action, err := r.actions.Unpack(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal action", err)
	}
	return action, nil
}

func (r *Registry) UnmarshalAuth(p *codec.Packer) (Auth, error) {
	auth, err := r.auths.Unpack(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal auth", err)
	}
	return auth, nil
}

// AuthEngine returns the batch engine of [typeID], if one is registered.
func (r *Registry) AuthEngine(typeID uint8) (AuthEngine, bool) {
	engine, ok := r.engines[typeID]
	return engine, ok
}
