// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import "errors"

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidKeyType        = errors.New("invalid key type")
	ErrInvalidPrivateKeySize = errors.New("invalid private key size")
)
