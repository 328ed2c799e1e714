// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
)

// RequireAuthority fails with [ErrUnauthorized] unless [actor] is
// [authority].
func RequireAuthority(actor codec.Address, authority codec.Address) error {
	if actor != authority {
		return fmt.Errorf("%w: %s is not %s", ErrUnauthorized, actor, authority)
	}
	return nil
}
