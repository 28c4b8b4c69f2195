package router

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&routerHandler{})
}

// routerHandler implements sysaction.Handler for payment router actions.
type routerHandler struct{}

func (h *routerHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionRouterInit,
		sysaction.ActionPayName,
		sysaction.ActionPayNameToken,
		sysaction.ActionPayDirect,
		sysaction.ActionPayDirectToken,
		sysaction.ActionPayBatchToken,
		sysaction.ActionSetFeeCollector,
		sysaction.ActionSetFeePercentage,
		sysaction.ActionSetTokenSupport,
		sysaction.ActionSetAllowlistEnabled,
		sysaction.ActionSetPaused,
		sysaction.ActionWithdrawNative,
		sysaction.ActionWithdrawToken:
		return true
	}
	return false
}

func (h *routerHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	addr := ctx.Target(params.PaymentRouterAddress)
	if sa.Action != sysaction.ActionRouterInit {
		if err := sysaction.RequireKind(ctx.StateDB, addr, sysaction.KindRouter); err != nil {
			return err
		}
	}
	r := At(addr)
	switch sa.Action {
	case sysaction.ActionRouterInit:
		var p sysaction.RouterInitPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.Init(ctx, p.Registry, p.FeeCollector, p.FeeBPS)
	case sysaction.ActionPayName:
		var p sysaction.PayNamePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return logReceipt(r.PayName(ctx, p.Name, p.Node))
	case sysaction.ActionPayNameToken:
		var p sysaction.PayNameTokenPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return logReceipt(r.PayNameToken(ctx, p.Token, p.Name, p.Node, p.Amount))
	case sysaction.ActionPayDirect:
		var p sysaction.PayDirectPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return logReceipt(r.PayDirect(ctx, p.Recipient))
	case sysaction.ActionPayDirectToken:
		var p sysaction.PayDirectTokenPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return logReceipt(r.PayDirectToken(ctx, p.Token, p.Recipient, p.Amount))
	case sysaction.ActionPayBatchToken:
		var p sysaction.PayBatchTokenPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		receipts, err := r.PayBatchToken(ctx, p.Tokens, p.Names, p.Amounts)
		if err != nil {
			return err
		}
		log.Debug("Batch payment settled", "from", ctx.From, "legs", len(receipts))
		return nil
	case sysaction.ActionSetFeeCollector:
		var p sysaction.SetFeeCollectorPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetFeeCollector(ctx, p.Collector)
	case sysaction.ActionSetFeePercentage:
		var p sysaction.SetFeePercentagePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetFeePercentage(ctx, p.BPS)
	case sysaction.ActionSetTokenSupport:
		var p sysaction.SetTokenSupportPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetTokenSupport(ctx, p.Token, p.Allowed)
	case sysaction.ActionSetAllowlistEnabled:
		var p sysaction.TogglePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetAllowlistEnabled(ctx, p.Enabled)
	case sysaction.ActionSetPaused:
		var p sysaction.TogglePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.SetPaused(ctx, p.Enabled)
	case sysaction.ActionWithdrawNative:
		return r.WithdrawNative(ctx)
	case sysaction.ActionWithdrawToken:
		var p sysaction.WithdrawTokenPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		return r.WithdrawToken(ctx, p.Token)
	}
	return nil
}

func logReceipt(receipt *Receipt, err error) error {
	if err != nil {
		return err
	}
	log.Debug("Payment settled", "recipient", receipt.Recipient, "amount", receipt.Amount, "fee", receipt.Fee, "outcome", receipt.Outcome)
	return nil
}
