package sysaction

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tos-network/gpns/fault"
)

// ErrReentrantCall is returned when a guarded entry point is entered again
// before its first invocation returned.
var ErrReentrantCall = fault.New(fault.ErrConflict, "sysaction: reentrant call")

var lockSlot = common.BytesToHash(crypto.Keccak256([]byte("sysaction\x00lock")))

// EnterGuard takes the reentrancy lock of contract. The lock lives in the
// contract's storage so it is visible to every nested call of the action.
// The returned release func must be deferred by the caller.
func EnterGuard(db vm.StateDB, contract common.Address) (release func(), err error) {
	if db.GetState(contract, lockSlot) != (common.Hash{}) {
		return nil, ErrReentrantCall
	}
	db.SetState(contract, lockSlot, common.BytesToHash([]byte{1}))
	return func() { db.SetState(contract, lockSlot, common.Hash{}) }, nil
}

// Locked reports whether contract currently holds its reentrancy lock.
func Locked(db vm.StateDB, contract common.Address) bool {
	return db.GetState(contract, lockSlot) != (common.Hash{})
}
