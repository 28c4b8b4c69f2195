// Copyright 2024 The gtos Authors
// This file is part of the gtos library.
//
// The gtos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gtos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gtos library. If not, see <http://www.gnu.org/licenses/>.

package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PNS system addresses: fixed, well-known addresses of the naming contracts.
var (
	// SystemActionAddress is the sentinel To-address for system action messages.
	SystemActionAddress = common.HexToAddress("0x00000000000000000000000000000000504E5330") // "PNS0"

	// RegistryAddress stores the name registry records (owner, resolver, ttl).
	RegistryAddress = common.HexToAddress("0x00000000000000000000000000000000504E5331") // "PNS1"

	// PublicResolverAddress stores node -> payout address records.
	PublicResolverAddress = common.HexToAddress("0x00000000000000000000000000000000504E5332") // "PNS2"

	// TokenRegistrarAddress stores the proof-of-ownership tokens of domains.
	TokenRegistrarAddress = common.HexToAddress("0x00000000000000000000000000000000504E5333") // "PNS3"

	// RegistrarAddress stores rental state and holds registration fees.
	RegistrarAddress = common.HexToAddress("0x00000000000000000000000000000000504E5334") // "PNS4"

	// PaymentRouterAddress stores router configuration and escrows native
	// payments for the duration of a single action.
	PaymentRouterAddress = common.HexToAddress("0x00000000000000000000000000000000504E5335") // "PNS5"

	// PointsLedgerAddress stores loyalty points balances.
	PointsLedgerAddress = common.HexToAddress("0x00000000000000000000000000000000504E5336") // "PNS6"
)

// Registrar parameters.
const (
	// DefaultTLD is the label whose node the registrar is delegated at genesis.
	DefaultTLD = "pns"

	// MinNameLength is the minimum domain length, in code points.
	MinNameLength = 3

	// RentYear is the flat registration year. Leap years are ignored.
	RentYear = 365 * Day
)

// Default per-year rent prices by name length tier.
var (
	DefaultPrice3Char    = new(big.Int).Mul(big.NewInt(50), big.NewInt(Milli))
	DefaultPrice4To5Char = new(big.Int).Mul(big.NewInt(20), big.NewInt(Milli))
	DefaultPrice6To9Char = new(big.Int).Mul(big.NewInt(10), big.NewInt(Milli))
	DefaultPrice10Plus   = new(big.Int).Mul(big.NewInt(5), big.NewInt(Milli))
)

// Payment router parameters.
const (
	// MaxFeeBPS caps the router fee at 10%.
	MaxFeeBPS uint64 = 1_000

	// BPSDenominator is the basis-point scale.
	BPSDenominator uint64 = 10_000

	// MaxBatchSize bounds the number of legs in one batched payment.
	MaxBatchSize = 64
)

// Points awarded by the token registrar hook.
const (
	PointsForMint uint64 = 10
	PointsForBurn uint64 = 2
)
