package points

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"

	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

func newTestState() *state.StateDB {
	db, _ := state.New(common.Hash{}, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	return db
}

func TestAward(t *testing.T) {
	db := newTestState()
	alice := common.HexToAddress("0xa1")
	ctx := &sysaction.Context{From: params.TokenRegistrarAddress, StateDB: db}
	l := Default()

	if err := l.Award(ctx, alice, ActivityMint); !errors.Is(err, ErrLedgerDisabled) {
		t.Fatalf("uninitialized ledger: got %v", err)
	}
	if err := l.Init(&sysaction.Context{From: alice, StateDB: db}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := l.Award(ctx, alice, ActivityMint); err != nil {
		t.Fatalf("award mint: %v", err)
	}
	if err := l.Award(ctx, alice, ActivityBurn); err != nil {
		t.Fatalf("award burn: %v", err)
	}
	if got := l.Balance(db, alice).Uint64(); got != params.PointsForMint+params.PointsForBurn {
		t.Fatalf("balance: have %d", got)
	}
	if err := l.Award(ctx, alice, Activity(9)); !errors.Is(err, ErrUnknownActivity) {
		t.Fatalf("unknown activity: got %v", err)
	}
}
