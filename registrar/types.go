// Package registrar implements the domain rental registrar: pricing by name
// length, registration, renewal, expiry and ownership transfer, kept
// consistent with the name registry and the token registrar.
package registrar

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/gpns/fault"
)

// State is the lifecycle state of a domain.
type State uint8

const (
	// Unregistered is the default state of a name never registered.
	Unregistered State = iota
	// Active means the domain has an owner and is not past its expiry.
	Active
	// Expired means the domain is past its expiry and may be registered again.
	Expired
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Active:
		return "active"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Domain is the rental record of a domain name.
type Domain struct {
	Owner   common.Address
	Expires uint64
}

// Config is the immutable deployment configuration plus the administrator.
type Config struct {
	Admin          common.Address
	Registry       common.Address
	TokenRegistrar common.Address
	RootNode       common.Hash
}

// Sentinel errors returned by registrar operations.
var (
	ErrAlreadyInitialized   = fault.New(fault.ErrConflict, "registrar: already initialized")
	ErrNotInitialized       = fault.New(fault.ErrNotFound, "registrar: not initialized")
	ErrZeroAddress          = fault.New(fault.ErrInvalidInput, "registrar: zero address")
	ErrInvalidRootNode      = fault.New(fault.ErrInvalidInput, "registrar: zero root node")
	ErrRootNotOwned         = fault.New(fault.ErrNotAuthorized, "registrar: root node not owned by registrar")
	ErrNotAuthorized        = fault.New(fault.ErrNotAuthorized, "registrar: caller is not admin")
	ErrNameTooShort         = fault.New(fault.ErrInvalidInput, "registrar: name too short")
	ErrInvalidName          = fault.New(fault.ErrInvalidInput, "registrar: name is not a valid label")
	ErrInsufficientDuration = fault.New(fault.ErrInvalidInput, "registrar: duration must be at least one year")
	ErrDurationOverflow     = fault.New(fault.ErrInvalidInput, "registrar: expiry out of range")
	ErrInvalidNewOwner      = fault.New(fault.ErrInvalidInput, "registrar: zero owner")
	ErrDomainNotAvailable   = fault.New(fault.ErrConflict, "registrar: domain not available")
	ErrDomainNotRegistered  = fault.New(fault.ErrNotFound, "registrar: domain not registered")
	ErrNotDomainOwner       = fault.New(fault.ErrNotAuthorized, "registrar: caller is not domain owner")
	ErrDomainExpired        = fault.New(fault.ErrExpired, "registrar: domain expired")
	ErrInsufficientPayment  = fault.New(fault.ErrInsufficientFunds, "registrar: insufficient payment")
	ErrInvalidPriceAmount   = fault.New(fault.ErrInvalidInput, "registrar: price must be nonzero")
	ErrNoFundsToWithdraw    = fault.New(fault.ErrInsufficientFunds, "registrar: no funds to withdraw")
	ErrTransferFailed       = fault.New(fault.ErrExternalCallFailed, "registrar: transfer failed")
)

// InsufficientPaymentError reports the price of a registration or renewal
// together with the value that was offered.
type InsufficientPaymentError struct {
	Required *big.Int
	Provided *big.Int
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("registrar: insufficient payment: required %v, provided %v", e.Required, e.Provided)
}

func (e *InsufficientPaymentError) Unwrap() error { return ErrInsufficientPayment }

// Event signatures.
const (
	EventNameRegistered    = "NameRegistered(string,address,uint64,uint256)"
	EventNameRenewed       = "NameRenewed(string,address,uint64)"
	EventDomainTransferred = "DomainTransferred(string,address,address,uint256)"
	EventPriceUpdated      = "PriceUpdated(uint256,uint256,uint256,uint256)"
	EventFundsWithdrawn    = "FundsWithdrawn(address,uint256)"
)

type NameRegisteredEvent struct {
	Name    string
	Owner   common.Address
	Expires uint64
	TokenID *big.Int
}

type NameRenewedEvent struct {
	Name    string
	Owner   common.Address
	Expires uint64
}

type DomainTransferredEvent struct {
	Name          string
	PreviousOwner common.Address
	NewOwner      common.Address
	TokenID       *big.Int
}

type PriceUpdatedEvent struct {
	Price3      *big.Int
	Price4To5   *big.Int
	Price6To9   *big.Int
	Price10Plus *big.Int
}

type FundsWithdrawnEvent struct {
	To     common.Address
	Amount *big.Int
}
