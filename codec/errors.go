// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrTooLarge           = errors.New("too large")
	ErrFieldNotPopulated  = errors.New("field is not populated")
	ErrInsufficientLength = errors.New("insufficient length")
	ErrInvalidSize        = errors.New("invalid size")
	ErrIncorrectHRP       = errors.New("incorrect hrp")
	ErrInvalidUTF8        = errors.New("invalid utf8")
	ErrDuplicateItem      = errors.New("duplicate item")
	ErrUnknownType        = errors.New("unknown type")
)
