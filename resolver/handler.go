package resolver

import (
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&resolverHandler{})
}

type resolverHandler struct{}

func (h *resolverHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionResolverInit || kind == sysaction.ActionResolverSetAddr
}

func (h *resolverHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	addr := ctx.Target(params.PublicResolverAddress)
	if sa.Action != sysaction.ActionResolverInit {
		if err := sysaction.RequireKind(ctx.StateDB, addr, sysaction.KindResolver); err != nil {
			return err
		}
	}
	r := At(addr)
	switch sa.Action {
	case sysaction.ActionResolverInit:
		var p sysaction.ResolverInitPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Init(ctx, p.Registry)
	case sysaction.ActionResolverSetAddr:
		var p sysaction.SetAddrPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetAddr(ctx, p.Node, p.Addr)
	}
	return nil
}
