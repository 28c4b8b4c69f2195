package resolver

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"

	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/registry"
	"github.com/tos-network/gpns/sysaction"
)

var (
	admin = common.HexToAddress("0xad")
	alice = common.HexToAddress("0xa1")
	bob   = common.HexToAddress("0xb0b")
)

func newTestState() *state.StateDB {
	db, _ := state.New(common.Hash{}, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	return db
}

func ctxFor(db *state.StateDB, from common.Address) *sysaction.Context {
	return &sysaction.Context{From: from, Value: new(big.Int), StateDB: db}
}

func TestSetAddrFollowsLiveOwnership(t *testing.T) {
	db := newTestState()
	reg := registry.Default()
	if err := reg.Init(ctxFor(db, admin)); err != nil {
		t.Fatalf("registry init: %v", err)
	}
	r := Default()
	if err := r.Init(ctxFor(db, admin), params.RegistryAddress); err != nil {
		t.Fatalf("resolver init: %v", err)
	}
	if err := r.Init(ctxFor(db, admin), params.RegistryAddress); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second init: got %v", err)
	}
	node, _ := namehash.NodeHash("abc.pns")
	if r.Addr(db, node) != (common.Address{}) {
		t.Fatalf("unset addr must read zero")
	}
	if err := r.SetAddr(ctxFor(db, alice), node, alice); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("unclaimed node: got %v", err)
	}
	if err := reg.SetOwner(ctxFor(db, admin), node, alice); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if err := r.SetAddr(ctxFor(db, alice), node, bob); err != nil {
		t.Fatalf("owner set addr: %v", err)
	}
	if r.Addr(db, node) != bob {
		t.Fatalf("addr not stored")
	}
	// Ownership is checked live, so a transfer revokes alice immediately.
	if err := reg.SetOwner(ctxFor(db, alice), node, bob); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := r.SetAddr(ctxFor(db, alice), node, alice); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("former owner: got %v", err)
	}
	if err := r.SetAddr(ctxFor(db, bob), node, common.Address{}); err != nil {
		t.Fatalf("new owner clears addr: %v", err)
	}
}

func TestSetAddrRequiresInit(t *testing.T) {
	db := newTestState()
	if err := Default().SetAddr(ctxFor(db, alice), common.Hash{1}, alice); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("want ErrNotInitialized, got %v", err)
	}
}
