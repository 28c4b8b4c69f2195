// Package fault classifies the failures returned by the PNS system contracts.
//
// Every package defines its own sentinel errors with New, binding each one to
// exactly one kind below. Callers identify a specific failure with
// errors.Is(err, registrar.ErrDomainExpired) and classify any failure with
// errors.Is(err, fault.ErrExpired).
package fault

import "errors"

// Error kinds.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrExpired            = errors.New("expired")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrExternalCallFailed = errors.New("external call failed")
	ErrPolicyViolation    = errors.New("policy violation")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New returns a sentinel error of the given kind. The message is reported
// verbatim; the kind is only visible through errors.Is.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Kind returns the kind err belongs to, or nil if it is unclassified.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

var kinds = []error{
	ErrInvalidInput,
	ErrNotAuthorized,
	ErrNotFound,
	ErrConflict,
	ErrExpired,
	ErrInsufficientFunds,
	ErrExternalCallFailed,
	ErrPolicyViolation,
}
