// Package nft implements the token registrar: one non-fungible
// proof-of-ownership token per domain, carrying a metadata URI and the name
// of the domain it stands for.
package nft

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/gpns/fault"
)

var (
	ErrAlreadyInitialized = fault.New(fault.ErrConflict, "nft: already initialized")
	ErrNotMinter          = fault.New(fault.ErrNotAuthorized, "nft: caller is not the minter")
	ErrTokenExists        = fault.New(fault.ErrConflict, "nft: token already minted")
	ErrTokenNotFound      = fault.New(fault.ErrNotFound, "nft: token does not exist")
	ErrZeroAddress        = fault.New(fault.ErrInvalidInput, "nft: zero address")
	ErrInvalidTokenID     = fault.New(fault.ErrInvalidInput, "nft: invalid token id")
)

const EventTransfer = "Transfer(address,address,uint256)"

// TransferEvent is emitted on mint (From is zero) and burn (To is zero).
type TransferEvent struct {
	From    common.Address
	To      common.Address
	TokenID *big.Int
}
