package nft

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"

	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/points"
	"github.com/tos-network/gpns/sysaction"
)

var (
	minter = common.HexToAddress("0x5a")
	alice  = common.HexToAddress("0xa1")
	bob    = common.HexToAddress("0xb0b")
)

func newTestState() *state.StateDB {
	db, _ := state.New(common.Hash{}, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	return db
}

func ctxFor(db *state.StateDB, from common.Address) *sysaction.Context {
	return &sysaction.Context{From: from, Value: new(big.Int), StateDB: db}
}

func setup(t *testing.T, ledger common.Address) (*state.StateDB, *Registrar) {
	t.Helper()
	db := newTestState()
	r := Default()
	if err := r.Init(ctxFor(db, alice), minter, ledger); err != nil {
		t.Fatalf("init: %v", err)
	}
	return db, r
}

func TestMintBurnCycles(t *testing.T) {
	db, r := setup(t, common.Address{})
	id := namehash.TokenID("abc")

	if _, ok := r.OwnerOf(db, id); ok {
		t.Fatalf("token exists before mint")
	}
	if err := r.Mint(ctxFor(db, minter), alice, id, "ipfs://a", "abc"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := r.Mint(ctxFor(db, minter), bob, id, "ipfs://b", "abc"); !errors.Is(err, ErrTokenExists) {
		t.Fatalf("double mint: got %v", err)
	}
	owner, ok := r.OwnerOf(db, id)
	if !ok || owner != alice || r.TokenURI(db, id) != "ipfs://a" || r.DomainOf(db, id) != "abc" || r.BalanceOf(db, alice) != 1 {
		t.Fatalf("mint state wrong")
	}
	for i := 0; i < 3; i++ {
		if err := r.Burn(ctxFor(db, minter), id); err != nil {
			t.Fatalf("burn %d: %v", i, err)
		}
		if err := r.Mint(ctxFor(db, minter), bob, id, "ipfs://b", "abc"); err != nil {
			t.Fatalf("re-mint %d: %v", i, err)
		}
	}
	if owner, _ := r.OwnerOf(db, id); owner != bob || r.BalanceOf(db, alice) != 0 || r.BalanceOf(db, bob) != 1 {
		t.Fatalf("cycle state wrong")
	}
	if err := r.Burn(ctxFor(db, minter), big.NewInt(42)); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("burn absent: got %v", err)
	}
}

func TestOnlyMinter(t *testing.T) {
	db, r := setup(t, common.Address{})
	if err := r.Mint(ctxFor(db, alice), alice, big.NewInt(1), "", "x"); !errors.Is(err, ErrNotMinter) {
		t.Fatalf("mint by stranger: got %v", err)
	}
	if err := r.Burn(ctxFor(db, alice), big.NewInt(1)); !errors.Is(err, ErrNotMinter) {
		t.Fatalf("burn by stranger: got %v", err)
	}
}

func TestPointsHook(t *testing.T) {
	db, r := setup(t, params.PointsLedgerAddress)
	ledger := points.Default()
	id := big.NewInt(7)

	// Disabled ledger: the hook fails and the mint still succeeds.
	if err := r.Mint(ctxFor(db, minter), alice, id, "", "x"); err != nil {
		t.Fatalf("mint with disabled ledger: %v", err)
	}
	if !r.Exists(db, id) || ledger.Balance(db, alice).Sign() != 0 {
		t.Fatalf("hook failure rolled back mint or credited points")
	}

	if err := ledger.Init(ctxFor(db, alice)); err != nil {
		t.Fatalf("ledger init: %v", err)
	}
	if err := r.Burn(ctxFor(db, minter), id); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if err := r.Mint(ctxFor(db, minter), alice, id, "", "x"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := ledger.Balance(db, alice).Uint64(); got != params.PointsForBurn+params.PointsForMint {
		t.Fatalf("points: have %d", got)
	}
}
