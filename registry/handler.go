package registry

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&registryHandler{})
}

// registryHandler implements sysaction.Handler for name registry actions.
type registryHandler struct{}

func (h *registryHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionRegistryInit,
		sysaction.ActionSetOwner,
		sysaction.ActionSetSubnodeOwner,
		sysaction.ActionSetResolver,
		sysaction.ActionSetTTL,
		sysaction.ActionSetRecord:
		return true
	}
	return false
}

func (h *registryHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	addr := ctx.Target(params.RegistryAddress)
	if sa.Action != sysaction.ActionRegistryInit {
		if err := sysaction.RequireKind(ctx.StateDB, addr, sysaction.KindRegistry); err != nil {
			return err
		}
	}
	r := At(addr)
	switch sa.Action {
	case sysaction.ActionRegistryInit:
		return r.Init(ctx)
	case sysaction.ActionSetOwner:
		var p sysaction.SetOwnerPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetOwner(ctx, p.Node, p.Owner)
	case sysaction.ActionSetSubnodeOwner:
		var p sysaction.SetSubnodeOwnerPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		child, err := r.SetSubnodeOwner(ctx, p.Node, p.Label, p.Owner)
		if err == nil {
			log.Debug("Subnode assigned", "parent", p.Node, "child", child, "owner", p.Owner)
		}
		return err
	case sysaction.ActionSetResolver:
		var p sysaction.SetResolverPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetResolver(ctx, p.Node, p.Resolver)
	case sysaction.ActionSetTTL:
		var p sysaction.SetTTLPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetTTL(ctx, p.Node, p.TTL)
	case sysaction.ActionSetRecord:
		var p sysaction.SetRecordPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetRecord(ctx, p.Node, p.Owner, p.Resolver, p.TTL)
	}
	return nil
}
