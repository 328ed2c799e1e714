// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "fmt"

// TypeParser maps type ids to the decoders of their payloads.
type TypeParser[T any] struct {
	decoders map[uint8]func(*Packer) (T, error)
}

func NewTypeParser[T any]() *TypeParser[T] {
	return &TypeParser[T]{decoders: map[uint8]func(*Packer) (T, error){}}
}

// Register assigns [typeID] to [f]. Ids are assigned explicitly so that a
// reordering of registrations cannot remap them.
func (p *TypeParser[T]) Register(typeID uint8, f func(*Packer) (T, error)) error {
	if _, ok := p.decoders[typeID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateItem, typeID)
	}
	p.decoders[typeID] = f
	return nil
}

func (p *TypeParser[T]) LookupIndex(typeID uint8) (func(*Packer) (T, error), bool) {
	f, ok := p.decoders[typeID]
	return f, ok
}

// Unpack reads a type id and decodes the payload registered for it.
func (p *TypeParser[T]) Unpack(packer *Packer) (T, error) {
	var empty T
	typeID := packer.UnpackByte()
	if err := packer.Err(); err != nil {
		return empty, err
	}
	f, ok := p.decoders[typeID]
	if !ok {
		return empty, fmt.Errorf("%w: %d", ErrUnknownType, typeID)
	}
	return f(packer)
}
