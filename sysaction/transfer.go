package sysaction

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/gpns/fault"
)

var (
	ErrInsufficientBalance = fault.New(fault.ErrInsufficientFunds, "sysaction: balance below transfer amount")
	ErrTransferRefused     = fault.New(fault.ErrExternalCallFailed, "sysaction: recipient refused transfer")
)

// Transfer moves amount of native value from one account to another and runs
// the recipient's receive hook. If the hook refuses, every change made by the
// transfer, including those of the hook itself, is undone before the error
// is returned; the caller decides whether that aborts its action.
func Transfer(ctx *Context, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	db := ctx.StateDB
	if have := db.GetBalance(from); have.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %v want %v", ErrInsufficientBalance, have, amount)
	}
	snap := db.Snapshot()
	db.SubBalance(from, amount)
	db.AddBalance(to, amount)
	if r, ok := ctx.Host.Receiver(to); ok {
		if err := r.Receive(ctx.Nested(from), from, amount); err != nil {
			db.RevertToSnapshot(snap)
			return fmt.Errorf("%w: %v", ErrTransferRefused, err)
		}
	}
	return nil
}

// CollectValue moves the value attached to the action from the caller into
// contract. It returns the collected amount.
func CollectValue(ctx *Context, contract common.Address) (*big.Int, error) {
	value := ctx.value()
	if value.Sign() == 0 {
		return value, nil
	}
	db := ctx.StateDB
	if have := db.GetBalance(ctx.From); have.Cmp(value) < 0 {
		return nil, fmt.Errorf("%w: have %v want %v", ErrInsufficientBalance, have, value)
	}
	db.SubBalance(ctx.From, value)
	db.AddBalance(contract, value)
	return value, nil
}
