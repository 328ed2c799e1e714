// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/manifoldco/promptui"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/utils"
)

var (
	ErrInputEmpty          = errors.New("input is empty")
	ErrInputTooLarge       = errors.New("input is too large")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrIndexOutOfRange     = errors.New("index out-of-range")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Address reads a bech32 (with [hrp]) or hex address.
func Address(label string, hrp string) (codec.Address, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := codec.ParseAddress(hrp, strings.TrimSpace(input))
			return err
		},
	}
	recipient, err := promptText.Run()
	if err != nil {
		return codec.EmptyAddress, err
	}
	return codec.ParseAddress(hrp, strings.TrimSpace(recipient))
}

func String(label string, minLen int, maxLen int) (string, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) < minLen {
				return ErrInputEmpty
			}
			if len(input) > maxLen {
				return ErrInputTooLarge
			}
			return nil
		},
	}
	text, err := promptText.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// VaultName reads a name accepted by [ledger.ValidateName].
func VaultName(label string) (string, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			return ledger.ValidateName(strings.TrimSpace(input))
		},
	}
	name, err := promptText.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// Amount reads a decimal native amount no larger than [balance]. [f], if
// provided, applies additional checks.
func Amount(
	label string,
	balance uint64,
	f func(input uint64) error,
) (uint64, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			amount, err := utils.ParseBalance(input)
			if err != nil {
				return err
			}
			if amount > balance {
				return ErrInsufficientBalance
			}
			if f != nil {
				return f(amount)
			}
			return nil
		},
	}
	rawAmount, err := promptText.Run()
	if err != nil {
		return 0, err
	}
	return utils.ParseBalance(strings.TrimSpace(rawAmount))
}

// Uint64 reads a whole number no larger than [maxValue].
func Uint64(
	label string,
	maxValue uint64,
) (uint64, error) {
	stringToUint := func(input string) (uint64, error) {
		input = strings.TrimSpace(input)
		if len(input) == 0 {
			return 0, ErrInputEmpty
		}
		amount, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		if amount > maxValue {
			return 0, fmt.Errorf("%d must be <= %d", amount, maxValue)
		}
		return amount, nil
	}

	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := stringToUint(input)
			return err
		},
	}
	rawAmount, err := promptText.Run()
	if err != nil {
		return 0, err
	}
	return stringToUint(rawAmount)
}

func Choice(label string, maxChoice int) (int, error) {
	if maxChoice == 1 {
		utils.Outf("{{yellow}}%s:{{/}} 0 [auto-selected]\n", label)
		return 0, nil
	}
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			index, err := strconv.Atoi(input)
			if err != nil {
				return err
			}
			if index >= maxChoice || index < 0 {
				return ErrIndexOutOfRange
			}
			return nil
		},
	}
	rawIndex, err := promptText.Run()
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(rawIndex)
}

func Continue() (bool, error) {
	cont, err := Bool("continue")
	if err != nil {
		return false, err
	}
	if !cont {
		utils.Outf("{{red}}exiting...{{/}}\n")
	}
	return cont, nil
}

func Bool(label string) (bool, error) {
	promptText := promptui.Prompt{
		Label: label + " (y/n)",
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			lower := strings.ToLower(input)
			if lower == "y" || lower == "n" {
				return nil
			}
			return ErrInvalidChoice
		},
	}
	rawContinue, err := promptText.Run()
	if err != nil {
		return false, err
	}
	return strings.ToLower(rawContinue) == "y", nil
}

// SelectChain lists [chainToURIs] and returns the chosen chain.
func SelectChain(label string, chainToURIs map[ids.ID][]string) (ids.ID, []string, error) {
	utils.Outf(
		"{{cyan}}available chains:{{/}} %d\n",
		len(chainToURIs),
	)
	keys := make([]ids.ID, 0, len(chainToURIs))
	for chainID, uris := range chainToURIs {
		utils.Outf(
			"%d) {{cyan}}chainID:{{/}} %s {{cyan}}uris:{{/}} %d\n",
			len(keys),
			chainID,
			len(uris),
		)
		keys = append(keys, chainID)
	}

	chainIndex, err := Choice(label, len(keys))
	if err != nil {
		return ids.Empty, nil, err
	}
	chainID := keys[chainIndex]
	return chainID, chainToURIs[chainID], nil
}
