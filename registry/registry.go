package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

// Registry is a handle to a registry instance deployed at an address.
type Registry struct {
	addr common.Address
}

// At returns the registry deployed at addr.
func At(addr common.Address) *Registry { return &Registry{addr: addr} }

// Default returns the registry at params.RegistryAddress.
func Default() *Registry { return At(params.RegistryAddress) }

func (r *Registry) Address() common.Address { return r.addr }

// Init makes the caller the administrator and the owner of the root node.
func (r *Registry) Init(ctx *sysaction.Context) error {
	db := ctx.StateDB
	if stateword.ReadBool(db, r.addr, initSlot) {
		return ErrAlreadyInitialized
	}
	if err := sysaction.Claim(db, r.addr, sysaction.KindRegistry); err != nil {
		return err
	}
	stateword.WriteBool(db, r.addr, initSlot, true)
	stateword.WriteAddress(db, r.addr, adminSlot, ctx.From)
	r.writeOwner(db, namehash.Root, ctx.From)
	return sysaction.Emit(ctx, r.addr, EventTransfer, &TransferEvent{Node: namehash.Root, Owner: ctx.From}, namehash.Root)
}

// Admin returns the registry administrator.
func (r *Registry) Admin(db vm.StateDB) common.Address {
	return stateword.ReadAddress(db, r.addr, adminSlot)
}

// Owner returns the owner of node, or the zero address if it is unclaimed.
func (r *Registry) Owner(db vm.StateDB, node common.Hash) common.Address {
	return r.readOwner(db, node)
}

func (r *Registry) Resolver(db vm.StateDB, node common.Hash) common.Address {
	return stateword.ReadAddress(db, r.addr, recordSlot(node, "resolver"))
}

func (r *Registry) TTL(db vm.StateDB, node common.Hash) uint64 {
	return stateword.ReadUint64(db, r.addr, recordSlot(node, "ttl"))
}

func (r *Registry) Record(db vm.StateDB, node common.Hash) Record {
	return Record{
		Owner:    r.Owner(db, node),
		Resolver: r.Resolver(db, node),
		TTL:      r.TTL(db, node),
	}
}

// authorize admits the current owner of node and the administrator. An
// unclaimed node admits only the administrator.
func (r *Registry) authorize(ctx *sysaction.Context, node common.Hash) error {
	db := ctx.StateDB
	if ctx.From == r.Admin(db) && stateword.ReadBool(db, r.addr, initSlot) {
		return nil
	}
	if owner := r.readOwner(db, node); owner != (common.Address{}) && owner == ctx.From {
		return nil
	}
	return ErrNotAuthorized
}

// SetOwner transfers node to owner.
func (r *Registry) SetOwner(ctx *sysaction.Context, node common.Hash, owner common.Address) error {
	if err := r.authorize(ctx, node); err != nil {
		return err
	}
	r.writeOwner(ctx.StateDB, node, owner)
	return sysaction.Emit(ctx, r.addr, EventTransfer, &TransferEvent{Node: node, Owner: owner}, node)
}

// SetSubnodeOwner assigns the child of parent identified by label (a label
// hash) to owner and returns the child node. The child's current owner is
// not consulted.
func (r *Registry) SetSubnodeOwner(ctx *sysaction.Context, parent, label common.Hash, owner common.Address) (common.Hash, error) {
	if err := r.authorize(ctx, parent); err != nil {
		return common.Hash{}, err
	}
	child := namehash.Subnode(parent, label)
	r.writeOwner(ctx.StateDB, child, owner)
	ev := &NewOwnerEvent{Node: parent, Label: label, Owner: owner}
	if err := sysaction.Emit(ctx, r.addr, EventNewOwner, ev, parent, label); err != nil {
		return common.Hash{}, err
	}
	return child, nil
}

func (r *Registry) SetResolver(ctx *sysaction.Context, node common.Hash, resolver common.Address) error {
	if err := r.authorize(ctx, node); err != nil {
		return err
	}
	r.writeResolver(ctx.StateDB, node, resolver)
	return sysaction.Emit(ctx, r.addr, EventNewResolver, &NewResolverEvent{Node: node, Resolver: resolver}, node)
}

func (r *Registry) SetTTL(ctx *sysaction.Context, node common.Hash, ttl uint64) error {
	if err := r.authorize(ctx, node); err != nil {
		return err
	}
	r.writeTTL(ctx.StateDB, node, ttl)
	return sysaction.Emit(ctx, r.addr, EventNewTTL, &NewTTLEvent{Node: node, TTL: ttl}, node)
}

// SetRecord writes all three fields of node under a single authorization
// check against the owner before the write.
func (r *Registry) SetRecord(ctx *sysaction.Context, node common.Hash, owner, resolver common.Address, ttl uint64) error {
	if err := r.authorize(ctx, node); err != nil {
		return err
	}
	db := ctx.StateDB
	r.writeOwner(db, node, owner)
	r.writeResolver(db, node, resolver)
	r.writeTTL(db, node, ttl)
	ev := &RecordUpdatedEvent{Node: node, Owner: owner, Resolver: resolver, TTL: ttl}
	return sysaction.Emit(ctx, r.addr, EventRecordUpdated, ev, node)
}
