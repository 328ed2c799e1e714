// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Keys maps each state key an operation touches to the permissions it
// needs on that key.
type Keys map[string]Permissions

// Permissions is a bitset of [Read], [Allocate] and [Write].
type Permissions byte

// Add unions [permission] into the permissions already held for [name].
func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Union adds every key of [o] to [k].
func (k Keys) Union(o Keys) {
	for name, permission := range o {
		k.Add(name, permission)
	}
}

// Covers reports whether [k] grants every permission requested in [o].
func (k Keys) Covers(o Keys) bool {
	for name, permission := range o {
		if !k[name].Has(permission) {
			return false
		}
	}
	return true
}

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}

// Mutates reports whether [p] allows a key to be changed.
func (p Permissions) Mutates() bool {
	return p&(Allocate|Write)&^Read != 0
}
