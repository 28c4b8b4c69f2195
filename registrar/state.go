package registrar

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/sysaction"
)

var (
	initSlot     = stateword.Slot("registrar", nil, "init")
	adminSlot    = stateword.Slot("registrar", nil, "admin")
	registrySlot = stateword.Slot("registrar", nil, "registry")
	nftSlot      = stateword.Slot("registrar", nil, "nft")
	rootSlot     = stateword.Slot("registrar", nil, "root")

	priceSlots = [4]common.Hash{
		stateword.Slot("registrar-price", nil, "3"),
		stateword.Slot("registrar-price", nil, "4-5"),
		stateword.Slot("registrar-price", nil, "6-9"),
		stateword.Slot("registrar-price", nil, "10+"),
	}
)

// Domains are keyed by the literal name, not by node.
func domainSlot(name, field string) common.Hash {
	return stateword.Slot("registrar-domain", []byte(name), field)
}

func (r *Registrar) initialized(db vm.StateDB) bool {
	return stateword.ReadBool(db, r.addr, initSlot)
}

// Config returns the deployment configuration.
func (r *Registrar) Config(db vm.StateDB) Config {
	return Config{
		Admin:          stateword.ReadAddress(db, r.addr, adminSlot),
		Registry:       stateword.ReadAddress(db, r.addr, registrySlot),
		TokenRegistrar: stateword.ReadAddress(db, r.addr, nftSlot),
		RootNode:       db.GetState(r.addr, rootSlot),
	}
}

func (r *Registrar) writeConfig(db vm.StateDB, cfg Config) {
	stateword.WriteBool(db, r.addr, initSlot, true)
	stateword.WriteAddress(db, r.addr, adminSlot, cfg.Admin)
	stateword.WriteAddress(db, r.addr, registrySlot, cfg.Registry)
	stateword.WriteAddress(db, r.addr, nftSlot, cfg.TokenRegistrar)
	db.SetState(r.addr, rootSlot, cfg.RootNode)
}

// Domain returns the rental record of name; zero for a name never registered.
func (r *Registrar) Domain(db vm.StateDB, name string) Domain {
	return Domain{
		Owner:   stateword.ReadAddress(db, r.addr, domainSlot(name, "owner")),
		Expires: stateword.ReadUint64(db, r.addr, domainSlot(name, "expires")),
	}
}

func (r *Registrar) writeDomain(db vm.StateDB, name string, d Domain) {
	stateword.WriteAddress(db, r.addr, domainSlot(name, "owner"), d.Owner)
	stateword.WriteUint64(db, r.addr, domainSlot(name, "expires"), d.Expires)
}

func (r *Registrar) readPrices(db vm.StateDB) sysaction.Prices {
	return sysaction.Prices{
		Price3:      stateword.ReadBig(db, r.addr, priceSlots[0]),
		Price4To5:   stateword.ReadBig(db, r.addr, priceSlots[1]),
		Price6To9:   stateword.ReadBig(db, r.addr, priceSlots[2]),
		Price10Plus: stateword.ReadBig(db, r.addr, priceSlots[3]),
	}
}

func (r *Registrar) writePrices(db vm.StateDB, p sysaction.Prices) {
	stateword.WriteBig(db, r.addr, priceSlots[0], p.Price3)
	stateword.WriteBig(db, r.addr, priceSlots[1], p.Price4To5)
	stateword.WriteBig(db, r.addr, priceSlots[2], p.Price6To9)
	stateword.WriteBig(db, r.addr, priceSlots[3], p.Price10Plus)
}
