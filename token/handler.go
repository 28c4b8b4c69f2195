package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/gpns/fault"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

var (
	// ErrTransferFailed is returned by token actions whose transfer reported false.
	ErrTransferFailed = fault.New(fault.ErrInsufficientFunds, "token: transfer failed")
	ErrNoTokenAddress = fault.New(fault.ErrInvalidInput, "token: action not addressed to a token")
)

func init() {
	sysaction.DefaultRegistry.Register(&tokenHandler{})
}

// tokenHandler dispatches token actions to the token the message is
// addressed to; tokens have no default address.
type tokenHandler struct{}

func (h *tokenHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionTokenInit,
		sysaction.ActionTokenTransfer,
		sysaction.ActionTokenApprove,
		sysaction.ActionTokenTransferFrom:
		return true
	}
	return false
}

func (h *tokenHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	if ctx.To == (common.Address{}) || ctx.To == params.SystemActionAddress {
		return ErrNoTokenAddress
	}
	if sa.Action != sysaction.ActionTokenInit {
		if err := sysaction.RequireKind(ctx.StateDB, ctx.To, sysaction.KindToken); err != nil {
			return err
		}
	}
	t := At(ctx.To)
	switch sa.Action {
	case sysaction.ActionTokenInit:
		var p sysaction.TokenInitPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return t.Init(ctx, p.Name, p.Symbol, p.Supply)
	case sysaction.ActionTokenTransfer:
		var p sysaction.TokenTransferPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return check(t.Transfer(ctx, p.To, p.Amount))
	case sysaction.ActionTokenApprove:
		var p sysaction.TokenApprovePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return t.Approve(ctx, p.Spender, p.Amount)
	case sysaction.ActionTokenTransferFrom:
		var p sysaction.TokenTransferFromPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return check(t.TransferFrom(ctx, p.From, p.To, p.Amount))
	}
	return nil
}

func check(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: balance or allowance too low", ErrTransferFailed)
	}
	return nil
}
