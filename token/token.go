// Package token implements a fungible token contract the payment router can
// move value through.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/fault"
	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/sysaction"
)

var (
	ErrAlreadyInitialized = fault.New(fault.ErrConflict, "token: already initialized")
	ErrInvalidAmount      = fault.New(fault.ErrInvalidInput, "token: invalid amount")
)

const (
	EventTransfer = "Transfer(address,address,uint256)"
	EventApproval = "Approval(address,address,uint256)"
)

type TransferEvent struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

type ApprovalEvent struct {
	Owner   common.Address
	Spender common.Address
	Amount  *big.Int
}

var (
	initSlot   = stateword.Slot("token", nil, "init")
	nameSlot   = stateword.Slot("token", nil, "name")
	symbolSlot = stateword.Slot("token", nil, "symbol")
	supplySlot = stateword.Slot("token", nil, "supply")
)

func balanceSlot(owner common.Address) common.Hash {
	return stateword.Slot("token-balance", owner.Bytes(), "")
}

func allowanceSlot(owner, spender common.Address) common.Hash {
	return stateword.Slot("token-allowance", append(owner.Bytes(), spender.Bytes()...), "")
}

// Token is a handle to a token deployed at an address.
type Token struct {
	addr common.Address
}

var _ sysaction.Token = (*Token)(nil)

func At(addr common.Address) *Token { return &Token{addr: addr} }

func (t *Token) Address() common.Address { return t.addr }

// Init deploys the token and credits supply to the caller.
func (t *Token) Init(ctx *sysaction.Context, name, symbol string, supply *big.Int) error {
	db := ctx.StateDB
	if stateword.ReadBool(db, t.addr, initSlot) {
		return ErrAlreadyInitialized
	}
	if supply == nil || supply.Sign() < 0 || supply.BitLen() > 256 {
		return ErrInvalidAmount
	}
	if err := sysaction.Claim(db, t.addr, sysaction.KindToken); err != nil {
		return err
	}
	stateword.WriteBool(db, t.addr, initSlot, true)
	stateword.WriteString(db, t.addr, nameSlot, name)
	stateword.WriteString(db, t.addr, symbolSlot, symbol)
	stateword.WriteBig(db, t.addr, supplySlot, supply)
	stateword.WriteBig(db, t.addr, balanceSlot(ctx.From), supply)
	return sysaction.Emit(ctx, t.addr, EventTransfer, &TransferEvent{To: ctx.From, Amount: supply})
}

func (t *Token) Name(db vm.StateDB) string   { return stateword.ReadString(db, t.addr, nameSlot) }
func (t *Token) Symbol(db vm.StateDB) string { return stateword.ReadString(db, t.addr, symbolSlot) }

func (t *Token) TotalSupply(db vm.StateDB) *big.Int {
	return stateword.ReadBig(db, t.addr, supplySlot)
}

func (t *Token) BalanceOf(db vm.StateDB, owner common.Address) *big.Int {
	return stateword.ReadBig(db, t.addr, balanceSlot(owner))
}

func (t *Token) Allowance(db vm.StateDB, owner, spender common.Address) *big.Int {
	return stateword.ReadBig(db, t.addr, allowanceSlot(owner, spender))
}

// Transfer moves amount from the caller to to. It reports false when the
// caller's balance is too low.
func (t *Token) Transfer(ctx *sysaction.Context, to common.Address, amount *big.Int) (bool, error) {
	return t.move(ctx, ctx.From, to, amount)
}

// Approve lets spender move up to amount of the caller's balance.
func (t *Token) Approve(ctx *sysaction.Context, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 256 {
		return ErrInvalidAmount
	}
	stateword.WriteBig(ctx.StateDB, t.addr, allowanceSlot(ctx.From, spender), amount)
	return sysaction.Emit(ctx, t.addr, EventApproval, &ApprovalEvent{Owner: ctx.From, Spender: spender, Amount: amount})
}

// TransferFrom moves amount from from to to, spending the caller's
// allowance. It reports false when the allowance or balance is too low.
func (t *Token) TransferFrom(ctx *sysaction.Context, from, to common.Address, amount *big.Int) (bool, error) {
	if amount == nil || amount.Sign() < 0 {
		return false, ErrInvalidAmount
	}
	db := ctx.StateDB
	slot := allowanceSlot(from, ctx.From)
	allowance := stateword.ReadBig(db, t.addr, slot)
	if allowance.Cmp(amount) < 0 {
		return false, nil
	}
	ok, err := t.move(ctx, from, to, amount)
	if !ok || err != nil {
		return ok, err
	}
	stateword.WriteBig(db, t.addr, slot, allowance.Sub(allowance, amount))
	return true, nil
}

func (t *Token) move(ctx *sysaction.Context, from, to common.Address, amount *big.Int) (bool, error) {
	if amount == nil || amount.Sign() < 0 {
		return false, ErrInvalidAmount
	}
	db := ctx.StateDB
	fromBal := t.BalanceOf(db, from)
	if fromBal.Cmp(amount) < 0 {
		return false, nil
	}
	stateword.WriteBig(db, t.addr, balanceSlot(from), fromBal.Sub(fromBal, amount))
	toBal := t.BalanceOf(db, to)
	stateword.WriteBig(db, t.addr, balanceSlot(to), toBal.Add(toBal, amount))
	ev := &TransferEvent{From: from, To: to, Amount: amount}
	if err := sysaction.Emit(ctx, t.addr, EventTransfer, ev); err != nil {
		return false, err
	}
	return true, nil
}
