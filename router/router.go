package router

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/registry"
	"github.com/tos-network/gpns/sysaction"
)

// nodes memoizes name hashing across payments.
var nodes = namehash.NewCache(0)

// Router is a handle to a payment router deployed at an address.
type Router struct {
	addr common.Address
}

func At(addr common.Address) *Router { return &Router{addr: addr} }

// Default returns the router at params.PaymentRouterAddress.
func Default() *Router { return At(params.PaymentRouterAddress) }

func (r *Router) Address() common.Address { return r.addr }

// Init deploys the router with the caller as administrator. A zero fee
// collector disables fees until one is set.
func (r *Router) Init(ctx *sysaction.Context, reg, feeCollector common.Address, feeBPS uint64) error {
	db := ctx.StateDB
	if r.initialized(db) {
		return ErrAlreadyInitialized
	}
	if reg == (common.Address{}) {
		return ErrZeroAddress
	}
	if feeBPS > params.MaxFeeBPS {
		return fmt.Errorf("%w: %d > %d", ErrInvalidFeePercentage, feeBPS, params.MaxFeeBPS)
	}
	if err := sysaction.Claim(db, r.addr, sysaction.KindRouter); err != nil {
		return err
	}
	stateword.WriteBool(db, r.addr, initSlot, true)
	stateword.WriteAddress(db, r.addr, adminSlot, ctx.From)
	stateword.WriteAddress(db, r.addr, registrySlot, reg)
	stateword.WriteAddress(db, r.addr, collectorSlot, feeCollector)
	stateword.WriteUint64(db, r.addr, feeSlot, feeBPS)
	return nil
}

// CalculateFee returns the fee due on amount: zero when the fee is zero or
// no collector is set, else amount*bps/10000 truncated.
func (r *Router) CalculateFee(db vm.StateDB, amount *big.Int) *big.Int {
	cfg := r.Config(db)
	if cfg.FeeBPS == 0 || cfg.FeeCollector == (common.Address{}) {
		return new(big.Int)
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(cfg.FeeBPS))
	return fee.Div(fee, new(big.Int).SetUint64(params.BPSDenominator))
}

// ResolveName returns the payout address of name. If node is non-nil it is
// used instead of hashing name. The address configured in the node's
// resolver wins; a node without resolver, or whose resolver has no address,
// pays its registry owner. Unowned nodes and the root do not resolve.
func (r *Router) ResolveName(ctx *sysaction.Context, name string, node *common.Hash) (common.Address, error) {
	db := ctx.StateDB
	if !r.initialized(db) {
		return common.Address{}, ErrNotInitialized
	}
	var n common.Hash
	if node != nil {
		n = *node
	} else {
		if name == "" {
			return common.Address{}, ErrInvalidName
		}
		h, err := nodes.NodeHash(name)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidName, err)
		}
		n = h
	}
	if n == namehash.Root {
		return common.Address{}, fmt.Errorf("%w: %q names the root", ErrInvalidName, name)
	}
	reg := registry.At(r.Config(db).Registry)
	owner := reg.Owner(db, n)
	if owner == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %q has no owner", ErrInvalidName, name)
	}
	if addr := reg.Resolver(db, n); addr != (common.Address{}) {
		if res, ok := ctx.Host.Resolver(addr); ok {
			if payout := res.Addr(db, n); payout != (common.Address{}) {
				return payout, nil
			}
		}
	}
	return owner, nil
}

func (r *Router) onlyAdmin(ctx *sysaction.Context) error {
	if !r.initialized(ctx.StateDB) {
		return ErrNotInitialized
	}
	if ctx.From != r.Config(ctx.StateDB).Admin {
		return ErrNotAuthorized
	}
	return nil
}
