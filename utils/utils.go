// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/onsi/ginkgo/v2/formatter"

	"github.com/ava-labs/vaultvm/consts"
)

// NativeDecimals is the number of decimals shown for native balances.
const NativeDecimals = 9

var (
	ErrInvalidSize    = errors.New("invalid size")
	ErrInvalidBalance = errors.New("invalid balance")
)

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := path.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outf writes a colored message to stdout.
//
// e.g.,
//
//	Outf("{{green}}{{bold}}hi there %q{{/}}", "aa")
//	Outf("{{magenta}}{{bold}}hi therea{{/}} {{cyan}}{{underline}}b{{/}}")
//
// ref.
// https://github.com/onsi/ginkgo/blob/v2.0.0/formatter/formatter.go#L52-L73
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

// FormatBalance renders [bal] with [NativeDecimals] decimals.
func FormatBalance(bal uint64) string {
	s := strconv.FormatUint(bal, 10)
	if len(s) <= NativeDecimals {
		s = strings.Repeat("0", NativeDecimals-len(s)+1) + s
	}
	return s[:len(s)-NativeDecimals] + "." + s[len(s)-NativeDecimals:]
}

// ParseBalance is the inverse of [FormatBalance]. Fewer decimals are
// accepted.
func ParseBalance(bal string) (uint64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(bal), ".")
	if len(frac) > NativeDecimals {
		return 0, fmt.Errorf("%w: more than %d decimals", ErrInvalidBalance, NativeDecimals)
	}
	if len(whole) == 0 {
		whole = "0"
	}
	v, err := strconv.ParseUint(whole+frac+strings.Repeat("0", NativeDecimals-len(frac)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidBalance, err)
	}
	return v, nil
}

// UnixRMilli returns the current unix time in milliseconds, rounded
// down to the nearsest second.
//
// [now] is used as the current unix time in milliseconds if >= 0.
//
// [add] (in ms) is added to the unix time before it is rounded (typically
// used when generating an expiry time with a validity window).
func UnixRMilli(now, add int64) int64 {
	if now < 0 {
		now = time.Now().UnixMilli()
	}
	t := now + add
	return t - t%consts.MillisecondsPerSecond
}

// SaveBytes writes [b] to [filename], readable only by the owner.
func SaveBytes(filename string, b []byte) error {
	return os.WriteFile(filename, b, perms.ReadWrite)
}

// LoadBytes reads [filename] and checks that it holds [expectedSize]
// bytes. A negative size skips the check.
func LoadBytes(filename string, expectedSize int) ([]byte, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if expectedSize >= 0 && len(b) != expectedSize {
		return nil, fmt.Errorf("%w: expected=%d found=%d", ErrInvalidSize, expectedSize, len(b))
	}
	return b, nil
}
