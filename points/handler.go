package points

import (
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&pointsHandler{})
}

type pointsHandler struct{}

func (h *pointsHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionPointsInit
}

func (h *pointsHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	return At(ctx.Target(params.PointsLedgerAddress)).Init(ctx)
}
