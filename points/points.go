// Package points implements the loyalty ledger awarding points to accounts
// for token registrar activity.
package points

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/fault"
	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

// Activity identifies what an account is rewarded for.
type Activity uint8

const (
	ActivityMint Activity = iota + 1
	ActivityBurn
)

func (a Activity) String() string {
	switch a {
	case ActivityMint:
		return "mint"
	case ActivityBurn:
		return "burn"
	}
	return "unknown"
}

var (
	ErrAlreadyInitialized = fault.New(fault.ErrConflict, "points: already initialized")
	ErrLedgerDisabled     = fault.New(fault.ErrPolicyViolation, "points: ledger disabled")
	ErrUnknownActivity    = fault.New(fault.ErrInvalidInput, "points: unknown activity")
)

const EventPointsAwarded = "PointsAwarded(address,uint8,uint64)"

type PointsAwardedEvent struct {
	Account  common.Address
	Activity uint8
	Points   uint64
}

var (
	adminSlot   = stateword.Slot("points", nil, "admin")
	enabledSlot = stateword.Slot("points", nil, "enabled")
)

func balanceSlot(account common.Address) common.Hash {
	return stateword.Slot("points-balance", account.Bytes(), "")
}

// Reward returns the points granted for activity.
func Reward(activity Activity) (uint64, bool) {
	switch activity {
	case ActivityMint:
		return params.PointsForMint, true
	case ActivityBurn:
		return params.PointsForBurn, true
	}
	return 0, false
}

// Ledger is a handle to a points ledger deployed at an address.
type Ledger struct {
	addr common.Address
}

func At(addr common.Address) *Ledger { return &Ledger{addr: addr} }

func Default() *Ledger { return At(params.PointsLedgerAddress) }

func (l *Ledger) Address() common.Address { return l.addr }

// Init enables the ledger with the caller as administrator.
func (l *Ledger) Init(ctx *sysaction.Context) error {
	if l.Enabled(ctx.StateDB) {
		return ErrAlreadyInitialized
	}
	if err := sysaction.Claim(ctx.StateDB, l.addr, sysaction.KindPoints); err != nil {
		return err
	}
	stateword.WriteAddress(ctx.StateDB, l.addr, adminSlot, ctx.From)
	stateword.WriteBool(ctx.StateDB, l.addr, enabledSlot, true)
	return nil
}

func (l *Ledger) Enabled(db vm.StateDB) bool {
	return stateword.ReadBool(db, l.addr, enabledSlot)
}

// Award credits account with the points of activity.
func (l *Ledger) Award(ctx *sysaction.Context, account common.Address, activity Activity) error {
	if !l.Enabled(ctx.StateDB) {
		return ErrLedgerDisabled
	}
	pts, ok := Reward(activity)
	if !ok {
		return ErrUnknownActivity
	}
	slot := balanceSlot(account)
	bal := stateword.ReadBig(ctx.StateDB, l.addr, slot)
	stateword.WriteBig(ctx.StateDB, l.addr, slot, bal.Add(bal, new(big.Int).SetUint64(pts)))
	ev := &PointsAwardedEvent{Account: account, Activity: uint8(activity), Points: pts}
	return sysaction.Emit(ctx, l.addr, EventPointsAwarded, ev, common.BytesToHash(account.Bytes()))
}

// Balance returns the points held by account.
func (l *Ledger) Balance(db vm.StateDB, account common.Address) *big.Int {
	return stateword.ReadBig(db, l.addr, balanceSlot(account))
}
