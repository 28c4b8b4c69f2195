package router

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func (r *Router) SetFeeCollector(ctx *sysaction.Context, collector common.Address) error {
	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	if collector == (common.Address{}) {
		return ErrZeroAddress
	}
	prev := r.Config(ctx.StateDB).FeeCollector
	stateword.WriteAddress(ctx.StateDB, r.addr, collectorSlot, collector)
	return sysaction.Emit(ctx, r.addr, EventFeeCollectorUpdated, &FeeCollectorUpdatedEvent{Previous: prev, Current: collector})
}

func (r *Router) SetFeePercentage(ctx *sysaction.Context, bps uint64) error {
	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	if bps > params.MaxFeeBPS {
		return fmt.Errorf("%w: %d > %d", ErrInvalidFeePercentage, bps, params.MaxFeeBPS)
	}
	prev := r.Config(ctx.StateDB).FeeBPS
	stateword.WriteUint64(ctx.StateDB, r.addr, feeSlot, bps)
	return sysaction.Emit(ctx, r.addr, EventFeePercentageUpdated, &FeePercentageUpdatedEvent{Previous: prev, Current: bps})
}

// SetTokenSupport adds token to or removes it from the allow-list. The list
// only takes effect while allow-list mode is enabled.
func (r *Router) SetTokenSupport(ctx *sysaction.Context, token common.Address, allowed bool) error {
	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	if token == (common.Address{}) {
		return ErrZeroAddress
	}
	stateword.WriteBool(ctx.StateDB, r.addr, allowedSlot(token), allowed)
	return sysaction.Emit(ctx, r.addr, EventTokenSupportUpdated, &TokenSupportUpdatedEvent{Token: token, Allowed: allowed})
}

func (r *Router) SetAllowlistEnabled(ctx *sysaction.Context, enabled bool) error {
	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	stateword.WriteBool(ctx.StateDB, r.addr, allowlistSlot, enabled)
	return sysaction.Emit(ctx, r.addr, EventAllowlistModeUpdated, &AllowlistModeUpdatedEvent{Enabled: enabled})
}

func (r *Router) SetPaused(ctx *sysaction.Context, paused bool) error {
	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	stateword.WriteBool(ctx.StateDB, r.addr, pausedSlot, paused)
	log.Info("Payment router pause state changed", "paused", paused)
	return sysaction.Emit(ctx, r.addr, EventPauseStateUpdated, &PauseStateUpdatedEvent{Paused: paused})
}

// WithdrawNative sends the router's native balance to the administrator.
func (r *Router) WithdrawNative(ctx *sysaction.Context) error {
	release, err := sysaction.EnterGuard(ctx.StateDB, r.addr)
	if err != nil {
		return err
	}
	defer release()

	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	db := ctx.StateDB
	amount := new(big.Int).Set(db.GetBalance(r.addr))
	if amount.Sign() == 0 {
		return ErrNoFundsToWithdraw
	}
	admin := r.Config(db).Admin
	if err := sysaction.Transfer(ctx, r.addr, admin, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return sysaction.Emit(ctx, r.addr, EventFundsWithdrawn, &FundsWithdrawnEvent{To: admin, Amount: amount})
}

// WithdrawToken sends the router's whole balance of token to the administrator.
func (r *Router) WithdrawToken(ctx *sysaction.Context, token common.Address) error {
	release, err := sysaction.EnterGuard(ctx.StateDB, r.addr)
	if err != nil {
		return err
	}
	defer release()

	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	tok, err := r.token(ctx, token)
	if err != nil {
		return err
	}
	db := ctx.StateDB
	amount := tok.BalanceOf(db, r.addr)
	if amount.Sign() == 0 {
		return ErrNoFundsToWithdraw
	}
	admin := r.Config(db).Admin
	ok, err := tok.Transfer(ctx.Nested(r.addr), admin, amount)
	if err != nil || !ok {
		return fmt.Errorf("%w: token %x: ok=%v err=%v", ErrTransferFailed, token, ok, err)
	}
	return sysaction.Emit(ctx, r.addr, EventTokenWithdrawn, &TokenWithdrawnEvent{Token: token, To: admin, Amount: amount})
}
