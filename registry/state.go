package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/internal/stateword"
)

// Storage layout (all slots under the registry's address):
//
//	admin                 Slot("registry", nil, "admin")
//	initialized           Slot("registry", nil, "init")
//	record owner          Slot("registry-record", node, "owner")
//	record resolver       Slot("registry-record", node, "resolver")
//	record ttl            Slot("registry-record", node, "ttl")
var (
	adminSlot = stateword.Slot("registry", nil, "admin")
	initSlot  = stateword.Slot("registry", nil, "init")
)

func recordSlot(node common.Hash, field string) common.Hash {
	return stateword.Slot("registry-record", node[:], field)
}

func (r *Registry) readOwner(db vm.StateDB, node common.Hash) common.Address {
	return stateword.ReadAddress(db, r.addr, recordSlot(node, "owner"))
}

func (r *Registry) writeOwner(db vm.StateDB, node common.Hash, owner common.Address) {
	stateword.WriteAddress(db, r.addr, recordSlot(node, "owner"), owner)
}

func (r *Registry) writeResolver(db vm.StateDB, node common.Hash, resolver common.Address) {
	stateword.WriteAddress(db, r.addr, recordSlot(node, "resolver"), resolver)
}

func (r *Registry) writeTTL(db vm.StateDB, node common.Hash, ttl uint64) {
	stateword.WriteUint64(db, r.addr, recordSlot(node, "ttl"), ttl)
}
