package sysaction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tos-network/gpns/fault"
)

// MaxActionSize bounds the encoded size of one action.
const MaxActionSize = 64 * 1024

// ErrInvalidSysAction is returned when message data cannot be decoded as a SysAction.
var ErrInvalidSysAction = fault.New(fault.ErrInvalidInput, "invalid system action payload")

func strictUnmarshal(data []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after action")
	}
	return nil
}

// Decode parses the action envelope carried in message data.
func Decode(data []byte) (*SysAction, error) {
	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("%w: empty data", ErrInvalidSysAction)
	case len(data) > MaxActionSize:
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrInvalidSysAction, len(data), MaxActionSize)
	}
	sa := new(SysAction)
	if err := strictUnmarshal(data, sa); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSysAction, err)
	}
	if sa.Action == "" {
		return nil, fmt.Errorf("%w: missing action field", ErrInvalidSysAction)
	}
	return sa, nil
}

// DecodePayload decodes the payload of sa into dst. Unknown payload fields
// are rejected; an absent or null payload leaves dst untouched.
func DecodePayload(sa *SysAction, dst interface{}) error {
	if len(sa.Payload) == 0 || bytes.Equal(sa.Payload, []byte("null")) {
		return nil
	}
	if err := strictUnmarshal(sa.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSysAction, sa.Action, err)
	}
	return nil
}

// Encode serialises an action envelope into message data.
func Encode(sa *SysAction) ([]byte, error) {
	return json.Marshal(sa)
}

// MakeSysAction builds the message data of an action of kind. A nil payload
// is omitted.
func MakeSysAction(kind ActionKind, payload interface{}) ([]byte, error) {
	sa := &SysAction{Action: kind}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", kind, err)
		}
		sa.Payload = raw
	}
	return Encode(sa)
}
