// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package utils contains internal helper functions for pns commands.
package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/gpns/internal/flags"
	"github.com/tos-network/gpns/params"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
var (
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.ChainCategory,
	}
	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for the chain database",
		Value:    "pns-data",
		Category: flags.ChainCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to the database cache",
		Value:    16,
		Category: flags.ChainCategory,
	}
	TimeFlag = &cli.Uint64Flag{
		Name:     "time",
		Usage:    "Block timestamp to apply actions at (default = wall clock)",
		Category: flags.ChainCategory,
	}
	FromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "Sender address of the action",
		Category: flags.AccountCategory,
	}
	OwnerFlag = &cli.StringFlag{
		Name:     "owner",
		Usage:    "Owner address (default = sender)",
		Category: flags.AccountCategory,
	}
	YearsFlag = &cli.Uint64Flag{
		Name:     "years",
		Usage:    "Rental duration in years",
		Value:    1,
		Category: flags.AccountCategory,
	}
	ValueFlag = &cli.StringFlag{
		Name:     "value",
		Usage:    "Native amount to send, in wei or with a 'milli' or 'tos' suffix",
		Category: flags.PaymentCategory,
	}
	TokenFlag = &cli.StringFlag{
		Name:     "token",
		Usage:    "Token contract address",
		Category: flags.PaymentCategory,
	}
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
)

// ParseAddress parses a hex address, rejecting malformed input.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses an integer amount in wei. The suffixes "milli" and
// "tos" scale it to the named denomination.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := big.NewInt(params.Wei)
	switch {
	case strings.HasSuffix(s, "milli"):
		s, unit = strings.TrimSuffix(s, "milli"), big.NewInt(params.Milli)
	case strings.HasSuffix(s, "tos"):
		s, unit = strings.TrimSuffix(s, "tos"), big.NewInt(params.TOS)
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v.Mul(v, unit), nil
}

// MustAddress parses the address flag, exiting the process on failure.
func MustAddress(ctx *cli.Context, flag *cli.StringFlag) common.Address {
	s := ctx.String(flag.Name)
	if s == "" {
		Fatalf("Missing --%s", flag.Name)
	}
	addr, err := ParseAddress(s)
	if err != nil {
		Fatalf("Invalid --%s: %v", flag.Name, err)
	}
	return addr
}
