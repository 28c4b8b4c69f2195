package nft

import (
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&nftHandler{})
}

type nftHandler struct{}

func (h *nftHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionTokenRegistryInit, sysaction.ActionTokenMint, sysaction.ActionTokenBurn:
		return true
	}
	return false
}

func (h *nftHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	addr := ctx.Target(params.TokenRegistrarAddress)
	if sa.Action != sysaction.ActionTokenRegistryInit {
		if err := sysaction.RequireKind(ctx.StateDB, addr, sysaction.KindNFT); err != nil {
			return err
		}
	}
	r := At(addr)
	switch sa.Action {
	case sysaction.ActionTokenRegistryInit:
		var p sysaction.TokenRegistryInitPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Init(ctx, p.Minter, p.Points)
	case sysaction.ActionTokenMint:
		var p sysaction.MintPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Mint(ctx, p.To, p.TokenID, p.URI, p.Domain)
	case sysaction.ActionTokenBurn:
		var p sysaction.BurnPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Burn(ctx, p.TokenID)
	}
	return nil
}
