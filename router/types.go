// Package router implements the payment router: it resolves names to payout
// addresses and moves native value or fungible tokens to them, deducting a
// basis-point fee for the fee collector.
package router

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/gpns/fault"
)

// FeeOutcome tells what happened to the fee leg of a payment.
type FeeOutcome uint8

const (
	// FeeNone means no fee was due.
	FeeNone FeeOutcome = iota
	// FeeSent means the fee reached the fee collector.
	FeeSent
	// FeeRecoveredToRecipient means the collector refused the fee and the
	// recipient received it instead.
	FeeRecoveredToRecipient
)

func (o FeeOutcome) String() string {
	switch o {
	case FeeNone:
		return "none"
	case FeeSent:
		return "sent"
	case FeeRecoveredToRecipient:
		return "recovered"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// Receipt describes one settled payment leg.
type Receipt struct {
	Token     common.Address // zero for native payments
	Recipient common.Address
	Amount    *big.Int // gross amount paid by the caller
	Fee       *big.Int
	Outcome   FeeOutcome
}

// Config is the router configuration.
type Config struct {
	Admin            common.Address
	Registry         common.Address
	FeeCollector     common.Address
	FeeBPS           uint64
	AllowlistEnabled bool
	Paused           bool
}

// Sentinel errors returned by router operations.
var (
	ErrAlreadyInitialized   = fault.New(fault.ErrConflict, "router: already initialized")
	ErrNotInitialized       = fault.New(fault.ErrNotFound, "router: not initialized")
	ErrNotAuthorized        = fault.New(fault.ErrNotAuthorized, "router: caller is not admin")
	ErrInvalidAmount        = fault.New(fault.ErrInvalidInput, "router: amount must be positive")
	ErrInvalidName          = fault.New(fault.ErrInvalidInput, "router: name does not resolve")
	ErrZeroAddress          = fault.New(fault.ErrInvalidInput, "router: zero address")
	ErrBatchArrayMismatch   = fault.New(fault.ErrInvalidInput, "router: batch arrays differ in length")
	ErrEmptyBatch           = fault.New(fault.ErrInvalidInput, "router: empty batch")
	ErrBatchTooLarge        = fault.New(fault.ErrInvalidInput, "router: batch too large")
	ErrContractPaused       = fault.New(fault.ErrPolicyViolation, "router: paused")
	ErrUnsupportedToken     = fault.New(fault.ErrPolicyViolation, "router: token not supported")
	ErrInvalidFeePercentage = fault.New(fault.ErrPolicyViolation, "router: fee percentage above ceiling")
	ErrTransferFailed       = fault.New(fault.ErrExternalCallFailed, "router: transfer failed")
	ErrNoFundsToWithdraw    = fault.New(fault.ErrInsufficientFunds, "router: no funds to withdraw")

	errTokenReturnedFalse = fault.New(fault.ErrExternalCallFailed, "router: token returned false")
)

// Event signatures.
const (
	EventPaymentSent          = "PaymentSent(address,address,string,uint256,uint256,uint8)"
	EventTokenPaymentSent     = "TokenPaymentSent(address,address,address,string,uint256,uint256,uint8)"
	EventBatchPaymentSent     = "BatchPaymentSent(address,uint256)"
	EventFeeCollectorUpdated  = "FeeCollectorUpdated(address,address)"
	EventFeePercentageUpdated = "FeePercentageUpdated(uint64,uint64)"
	EventTokenSupportUpdated  = "TokenSupportUpdated(address,bool)"
	EventAllowlistModeUpdated = "AllowlistModeUpdated(bool)"
	EventPauseStateUpdated    = "PauseStateUpdated(bool)"
	EventFundsWithdrawn       = "FundsWithdrawn(address,uint256)"
	EventTokenWithdrawn       = "TokenWithdrawn(address,address,uint256)"
)

// PaymentSentEvent is emitted for native payments. Name is empty for direct
// payments.
type PaymentSentEvent struct {
	From    common.Address
	To      common.Address
	Name    string
	Amount  *big.Int
	Fee     *big.Int
	Outcome uint8
}

type TokenPaymentSentEvent struct {
	From    common.Address
	To      common.Address
	Token   common.Address
	Name    string
	Amount  *big.Int
	Fee     *big.Int
	Outcome uint8
}

type BatchPaymentSentEvent struct {
	From  common.Address
	Count uint64
}

type FeeCollectorUpdatedEvent struct {
	Previous common.Address
	Current  common.Address
}

type FeePercentageUpdatedEvent struct {
	Previous uint64
	Current  uint64
}

type TokenSupportUpdatedEvent struct {
	Token   common.Address
	Allowed bool
}

type AllowlistModeUpdatedEvent struct {
	Enabled bool
}

type PauseStateUpdatedEvent struct {
	Paused bool
}

type FundsWithdrawnEvent struct {
	To     common.Address
	Amount *big.Int
}

type TokenWithdrawnEvent struct {
	Token  common.Address
	To     common.Address
	Amount *big.Int
}
