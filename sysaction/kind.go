package sysaction

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tos-network/gpns/fault"
)

// ContractKind names the system contract deployed at an address.
type ContractKind string

const (
	KindRegistry  ContractKind = "registry"
	KindResolver  ContractKind = "resolver"
	KindNFT       ContractKind = "nft"
	KindToken     ContractKind = "token"
	KindPoints    ContractKind = "points"
	KindRegistrar ContractKind = "registrar"
	KindRouter    ContractKind = "router"
)

// ErrWrongContract is returned when an action is addressed to an account
// that does not hold the contract the action belongs to.
var ErrWrongContract = fault.New(fault.ErrPolicyViolation, "sysaction: target is not the contract owning the action")

var kindSlot = common.BytesToHash(crypto.Keccak256([]byte("sysaction\x00kind")))

// KindOf returns the contract kind claimed at addr, or "" if none.
func KindOf(db vm.StateDB, addr common.Address) ContractKind {
	word := db.GetState(addr, kindSlot)
	return ContractKind(bytes.TrimLeft(word[:], "\x00"))
}

// Claim marks addr as holding a contract of kind. Contracts claim their
// address on Init; an address claimed by another kind is refused.
func Claim(db vm.StateDB, addr common.Address, kind ContractKind) error {
	if len(kind) == 0 || len(kind) > common.HashLength {
		return fmt.Errorf("sysaction: invalid contract kind %q", kind)
	}
	switch cur := KindOf(db, addr); cur {
	case kind:
		return nil
	case "":
		db.SetState(addr, kindSlot, common.BytesToHash([]byte(kind)))
		return nil
	default:
		return fmt.Errorf("%w: %x holds %s, not %s", ErrWrongContract, addr, cur, kind)
	}
}

// RequireKind fails unless addr was claimed by a contract of kind.
func RequireKind(db vm.StateDB, addr common.Address, kind ContractKind) error {
	if cur := KindOf(db, addr); cur != kind {
		if cur == "" {
			cur = "nothing"
		}
		return fmt.Errorf("%w: %x holds %s, not %s", ErrWrongContract, addr, cur, kind)
	}
	return nil
}
