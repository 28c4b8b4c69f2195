package registrar

import (
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&registrarHandler{})
}

// registrarHandler implements sysaction.Handler for domain rental actions.
type registrarHandler struct{}

func (h *registrarHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionRegistrarInit,
		sysaction.ActionRegister,
		sysaction.ActionRenew,
		sysaction.ActionTransferDomain,
		sysaction.ActionRegistrarWithdraw,
		sysaction.ActionRegistrarSetPrices:
		return true
	}
	return false
}

func (h *registrarHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	addr := ctx.Target(params.RegistrarAddress)
	if sa.Action != sysaction.ActionRegistrarInit {
		if err := sysaction.RequireKind(ctx.StateDB, addr, sysaction.KindRegistrar); err != nil {
			return err
		}
	}
	r := At(addr)
	switch sa.Action {
	case sysaction.ActionRegistrarInit:
		var p sysaction.RegistrarInitPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Init(ctx, &p)
	case sysaction.ActionRegister:
		var p sysaction.RegisterPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Register(ctx, p.Name, p.Owner, p.Years, p.TokenURI)
	case sysaction.ActionRenew:
		var p sysaction.RenewPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Renew(ctx, p.Name, p.Years)
	case sysaction.ActionTransferDomain:
		var p sysaction.TransferDomainPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.TransferOwnership(ctx, p.Name, p.NewOwner)
	case sysaction.ActionRegistrarWithdraw:
		return r.Withdraw(ctx)
	case sysaction.ActionRegistrarSetPrices:
		var p sysaction.Prices
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetPrices(ctx, p)
	}
	return nil
}
