package router

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/internal/stateword"
)

var (
	initSlot      = stateword.Slot("router", nil, "init")
	adminSlot     = stateword.Slot("router", nil, "admin")
	registrySlot  = stateword.Slot("router", nil, "registry")
	collectorSlot = stateword.Slot("router", nil, "collector")
	feeSlot       = stateword.Slot("router", nil, "fee")
	allowlistSlot = stateword.Slot("router", nil, "allowlist")
	pausedSlot    = stateword.Slot("router", nil, "paused")
)

func allowedSlot(token common.Address) common.Hash {
	return stateword.Slot("router-allowed", token.Bytes(), "")
}

func counterSlot(caller common.Address) common.Hash {
	return stateword.Slot("router-interactions", caller.Bytes(), "")
}

func (r *Router) initialized(db vm.StateDB) bool {
	return stateword.ReadBool(db, r.addr, initSlot)
}

// Config returns the router configuration.
func (r *Router) Config(db vm.StateDB) Config {
	return Config{
		Admin:            stateword.ReadAddress(db, r.addr, adminSlot),
		Registry:         stateword.ReadAddress(db, r.addr, registrySlot),
		FeeCollector:     stateword.ReadAddress(db, r.addr, collectorSlot),
		FeeBPS:           stateword.ReadUint64(db, r.addr, feeSlot),
		AllowlistEnabled: stateword.ReadBool(db, r.addr, allowlistSlot),
		Paused:           stateword.ReadBool(db, r.addr, pausedSlot),
	}
}

func (r *Router) Paused(db vm.StateDB) bool {
	return stateword.ReadBool(db, r.addr, pausedSlot)
}

// IsTokenAllowed reports whether token may be used for payments under the
// current allow-list mode. With the allow-list disabled every token is.
func (r *Router) IsTokenAllowed(db vm.StateDB, token common.Address) bool {
	if !stateword.ReadBool(db, r.addr, allowlistSlot) {
		return true
	}
	return stateword.ReadBool(db, r.addr, allowedSlot(token))
}

// InteractionCount returns the number of successful payment calls by caller.
func (r *Router) InteractionCount(db vm.StateDB, caller common.Address) uint64 {
	return stateword.ReadUint64(db, r.addr, counterSlot(caller))
}

func (r *Router) bumpCounter(db vm.StateDB, caller common.Address) {
	stateword.WriteUint64(db, r.addr, counterSlot(caller), r.InteractionCount(db, caller)+1)
}
