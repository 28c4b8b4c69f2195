// Package resolver implements the public resolver mapping nodes to payout
// addresses. Writes are gated by live ownership in the name registry.
package resolver

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/fault"
	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/registry"
	"github.com/tos-network/gpns/sysaction"
)

var (
	ErrAlreadyInitialized = fault.New(fault.ErrConflict, "resolver: already initialized")
	ErrNotInitialized     = fault.New(fault.ErrNotFound, "resolver: not initialized")
	ErrZeroAddress        = fault.New(fault.ErrInvalidInput, "resolver: zero registry address")
	ErrNotAuthorized      = fault.New(fault.ErrNotAuthorized, "resolver: caller does not own node")
)

const EventAddrChanged = "AddrChanged(bytes32,address)"

type AddrChangedEvent struct {
	Node common.Hash
	Addr common.Address
}

var registrySlot = stateword.Slot("resolver", nil, "registry")

func addrSlot(node common.Hash) common.Hash {
	return stateword.Slot("resolver-addr", node[:], "")
}

// Resolver is a handle to a resolver deployed at an address. It implements
// sysaction.AddrResolver.
type Resolver struct {
	addr common.Address
}

func At(addr common.Address) *Resolver { return &Resolver{addr: addr} }

// Default returns the resolver at params.PublicResolverAddress.
func Default() *Resolver { return At(params.PublicResolverAddress) }

func (r *Resolver) Address() common.Address { return r.addr }

// Init binds the resolver to the registry at reg.
func (r *Resolver) Init(ctx *sysaction.Context, reg common.Address) error {
	if reg == (common.Address{}) {
		return ErrZeroAddress
	}
	if r.Registry(ctx.StateDB) != (common.Address{}) {
		return ErrAlreadyInitialized
	}
	if err := sysaction.Claim(ctx.StateDB, r.addr, sysaction.KindResolver); err != nil {
		return err
	}
	stateword.WriteAddress(ctx.StateDB, r.addr, registrySlot, reg)
	return nil
}

// Registry returns the registry the resolver is bound to.
func (r *Resolver) Registry(db vm.StateDB) common.Address {
	return stateword.ReadAddress(db, r.addr, registrySlot)
}

// SetAddr sets the payout address of node. The caller must own node in the
// registry at call time.
func (r *Resolver) SetAddr(ctx *sysaction.Context, node common.Hash, addr common.Address) error {
	db := ctx.StateDB
	reg := r.Registry(db)
	if reg == (common.Address{}) {
		return ErrNotInitialized
	}
	if owner := registry.At(reg).Owner(db, node); owner == (common.Address{}) || owner != ctx.From {
		return ErrNotAuthorized
	}
	stateword.WriteAddress(db, r.addr, addrSlot(node), addr)
	return sysaction.Emit(ctx, r.addr, EventAddrChanged, &AddrChangedEvent{Node: node, Addr: addr}, node)
}

// Addr returns the payout address of node, or the zero address if unset.
func (r *Resolver) Addr(db vm.StateDB, node common.Hash) common.Address {
	return stateword.ReadAddress(db, r.addr, addrSlot(node))
}
