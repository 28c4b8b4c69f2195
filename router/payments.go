package router

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

// token returns the token deployed at addr, checking the allow-list.
func (r *Router) token(ctx *sysaction.Context, addr common.Address) (sysaction.Token, error) {
	if addr == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if !r.IsTokenAllowed(ctx.StateDB, addr) {
		return nil, fmt.Errorf("%w: %x", ErrUnsupportedToken, addr)
	}
	tok, ok := ctx.Host.Token(addr)
	if !ok {
		return nil, fmt.Errorf("%w: no token at %x", ErrUnsupportedToken, addr)
	}
	return tok, nil
}

// checkPayable rejects payments while the router is unusable.
func (r *Router) checkPayable(ctx *sysaction.Context) error {
	if !r.initialized(ctx.StateDB) {
		return ErrNotInitialized
	}
	if r.Paused(ctx.StateDB) {
		return ErrContractPaused
	}
	return nil
}

func positive(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}

// leg moves amount to a destination and reports failure as an error.
type leg func(to common.Address, amount *big.Int) error

// settle pays amount minus fee to recipient, then the fee to the collector.
// A refused fee goes to the recipient instead; only a refused recovery fails
// the payment.
func (r *Router) settle(ctx *sysaction.Context, send leg, recipient common.Address, amount *big.Int) (*Receipt, error) {
	fee := r.CalculateFee(ctx.StateDB, amount)
	net := new(big.Int).Sub(amount, fee)
	if err := send(recipient, net); err != nil {
		return nil, fmt.Errorf("%w: to %x: %v", ErrTransferFailed, recipient, err)
	}
	receipt := &Receipt{Recipient: recipient, Amount: amount, Fee: fee, Outcome: FeeNone}
	if fee.Sign() == 0 {
		return receipt, nil
	}
	collector := r.Config(ctx.StateDB).FeeCollector
	if err := send(collector, fee); err != nil {
		log.Warn("Fee transfer refused, paying recipient", "collector", collector, "recipient", recipient, "fee", fee, "err", err)
		if err := send(recipient, fee); err != nil {
			return nil, fmt.Errorf("%w: fee recovery to %x: %v", ErrTransferFailed, recipient, err)
		}
		feeRecoveredMeter.Mark(1)
		receipt.Outcome = FeeRecoveredToRecipient
		return receipt, nil
	}
	feeSentMeter.Mark(1)
	receipt.Outcome = FeeSent
	return receipt, nil
}

// nativeLeg pays out of the router's escrow.
func (r *Router) nativeLeg(ctx *sysaction.Context) leg {
	return func(to common.Address, amount *big.Int) error {
		return sysaction.Transfer(ctx, r.addr, to, amount)
	}
}

// tokenLeg pulls from payer with the router as spender. Each call runs in
// its own snapshot so a refused leg leaves nothing behind.
func (r *Router) tokenLeg(ctx *sysaction.Context, tok sysaction.Token, payer common.Address) leg {
	rctx := ctx.Nested(r.addr)
	return func(to common.Address, amount *big.Int) error {
		if amount.Sign() == 0 {
			return nil
		}
		return sysaction.Atomic(ctx.StateDB, func() error {
			ok, err := tok.TransferFrom(rctx, payer, to, amount)
			if err != nil {
				return err
			}
			if !ok {
				return errTokenReturnedFalse
			}
			return nil
		})
	}
}

func (r *Router) payNative(ctx *sysaction.Context, name string, node *common.Hash, direct common.Address) (*Receipt, error) {
	release, err := sysaction.EnterGuard(ctx.StateDB, r.addr)
	if err != nil {
		return nil, err
	}
	defer release()

	amount := ctx.Value
	if !positive(amount) {
		return nil, ErrInvalidAmount
	}
	byName := direct == (common.Address{})
	if byName && name == "" && node == nil {
		return nil, ErrInvalidName
	}
	if err := r.checkPayable(ctx); err != nil {
		return nil, err
	}
	recipient := direct
	if byName {
		if recipient, err = r.ResolveName(ctx, name, node); err != nil {
			return nil, err
		}
	}
	var receipt *Receipt
	err = sysaction.Atomic(ctx.StateDB, func() error {
		if _, err := sysaction.CollectValue(ctx, r.addr); err != nil {
			return err
		}
		if receipt, err = r.settle(ctx, r.nativeLeg(ctx), recipient, amount); err != nil {
			return err
		}
		r.bumpCounter(ctx.StateDB, ctx.From)
		ev := &PaymentSentEvent{From: ctx.From, To: recipient, Name: name, Amount: amount, Fee: receipt.Fee, Outcome: uint8(receipt.Outcome)}
		return sysaction.Emit(ctx, r.addr, EventPaymentSent, ev, common.BytesToHash(ctx.From.Bytes()), common.BytesToHash(recipient.Bytes()))
	})
	if err != nil {
		return nil, err
	}
	paymentMeter.Mark(1)
	return receipt, nil
}

// PayName pays the attached value to the address name resolves to.
func (r *Router) PayName(ctx *sysaction.Context, name string, node *common.Hash) (*Receipt, error) {
	return r.payNative(ctx, name, node, common.Address{})
}

// PayDirect pays the attached value to recipient.
func (r *Router) PayDirect(ctx *sysaction.Context, recipient common.Address) (*Receipt, error) {
	if recipient == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return r.payNative(ctx, "", nil, recipient)
}

// payToken settles one token payment leg. The caller holds the guard.
func (r *Router) payToken(ctx *sysaction.Context, token common.Address, name string, node *common.Hash, recipient common.Address, amount *big.Int) (*Receipt, error) {
	if !positive(amount) {
		return nil, ErrInvalidAmount
	}
	byName := recipient == (common.Address{})
	if byName && name == "" && node == nil {
		return nil, ErrInvalidName
	}
	if err := r.checkPayable(ctx); err != nil {
		return nil, err
	}
	tok, err := r.token(ctx, token)
	if err != nil {
		return nil, err
	}
	if byName {
		if recipient, err = r.ResolveName(ctx, name, node); err != nil {
			return nil, err
		}
	}
	receipt, err := r.settle(ctx, r.tokenLeg(ctx, tok, ctx.From), recipient, amount)
	if err != nil {
		return nil, err
	}
	receipt.Token = token
	paymentMeter.Mark(1)

	ev := &TokenPaymentSentEvent{From: ctx.From, To: recipient, Token: token, Name: name, Amount: amount, Fee: receipt.Fee, Outcome: uint8(receipt.Outcome)}
	if err := sysaction.Emit(ctx, r.addr, EventTokenPaymentSent, ev, common.BytesToHash(ctx.From.Bytes()), common.BytesToHash(recipient.Bytes())); err != nil {
		return nil, err
	}
	return receipt, nil
}

// PayNameToken pays amount of token from the caller to the address name
// resolves to. The caller must have approved the router.
func (r *Router) PayNameToken(ctx *sysaction.Context, token common.Address, name string, node *common.Hash, amount *big.Int) (*Receipt, error) {
	release, err := sysaction.EnterGuard(ctx.StateDB, r.addr)
	if err != nil {
		return nil, err
	}
	defer release()

	var receipt *Receipt
	err = sysaction.Atomic(ctx.StateDB, func() (err error) {
		if receipt, err = r.payToken(ctx, token, name, node, common.Address{}, amount); err != nil {
			return err
		}
		r.bumpCounter(ctx.StateDB, ctx.From)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// PayDirectToken pays amount of token from the caller to recipient.
func (r *Router) PayDirectToken(ctx *sysaction.Context, token, recipient common.Address, amount *big.Int) (*Receipt, error) {
	release, err := sysaction.EnterGuard(ctx.StateDB, r.addr)
	if err != nil {
		return nil, err
	}
	defer release()

	if recipient == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	var receipt *Receipt
	err = sysaction.Atomic(ctx.StateDB, func() (err error) {
		if receipt, err = r.payToken(ctx, token, "", nil, recipient, amount); err != nil {
			return err
		}
		r.bumpCounter(ctx.StateDB, ctx.From)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// PayBatchToken pays amounts[i] of tokens[i] to the address names[i]
// resolves to, for every i. Either every leg settles or none does.
func (r *Router) PayBatchToken(ctx *sysaction.Context, tokens []common.Address, names []string, amounts []*big.Int) ([]*Receipt, error) {
	release, err := sysaction.EnterGuard(ctx.StateDB, r.addr)
	if err != nil {
		return nil, err
	}
	defer release()

	if len(tokens) != len(names) || len(names) != len(amounts) {
		return nil, fmt.Errorf("%w: tokens=%d names=%d amounts=%d", ErrBatchArrayMismatch, len(tokens), len(names), len(amounts))
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(tokens) > params.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(tokens), params.MaxBatchSize)
	}
	if err := r.checkPayable(ctx); err != nil {
		return nil, err
	}
	receipts := make([]*Receipt, 0, len(tokens))
	err = sysaction.Atomic(ctx.StateDB, func() error {
		for i := range tokens {
			receipt, err := r.payToken(ctx, tokens[i], names[i], nil, common.Address{}, amounts[i])
			if err != nil {
				return fmt.Errorf("batch element %d: %w", i, err)
			}
			receipts = append(receipts, receipt)
		}
		r.bumpCounter(ctx.StateDB, ctx.From)
		ev := &BatchPaymentSentEvent{From: ctx.From, Count: uint64(len(receipts))}
		return sysaction.Emit(ctx, r.addr, EventBatchPaymentSent, ev, common.BytesToHash(ctx.From.Bytes()))
	})
	if err != nil {
		return nil, err
	}
	batchMeter.Mark(1)
	return receipts, nil
}
