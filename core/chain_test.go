package core

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/require"

	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/registrar"
	"github.com/tos-network/gpns/registry"
	"github.com/tos-network/gpns/resolver"
	"github.com/tos-network/gpns/router"
	"github.com/tos-network/gpns/sysaction"
	"github.com/tos-network/gpns/token"
)

var (
	admin = common.HexToAddress("0xad")
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	usd   = common.HexToAddress("0x05d")
)

const genesisTime = 1_700_000_000

func testGenesis() *Genesis {
	g := DefaultGenesis(admin)
	g.Time = genesisTime
	g.Alloc = map[common.Address]*big.Int{
		alice: new(big.Int).Mul(big.NewInt(10), big.NewInt(params.TOS)),
		bob:   new(big.Int).Mul(big.NewInt(10), big.NewInt(params.TOS)),
	}
	g.Tokens = []GenesisToken{{Address: usd, Name: "US Dollar", Symbol: "USD", Supply: big.NewInt(1_000_000), Holder: alice}}
	return g
}

type fakeClock struct{ now uint64 }

func (c *fakeClock) Now() uint64 { return c.now }

func newTestChain(t *testing.T) (*Chain, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: genesisTime}
	chain, err := OpenChain(rawdb.NewMemoryDatabase(), testGenesis(), clock.Now)
	require.NoError(t, err)
	t.Cleanup(chain.Close)
	return chain, clock
}

func rentPrice(t *testing.T, c *Chain, years uint64, name string) *big.Int {
	t.Helper()
	var price *big.Int
	require.NoError(t, c.View(func(db vm.StateDB, _ uint64) error {
		var err error
		price, err = registrar.Default().RentPrice(db, years, name)
		return err
	}))
	return price
}

func TestGenesisDeployment(t *testing.T) {
	chain, _ := newTestChain(t)
	require.Equal(t, uint64(0), chain.Head().Number)

	tld, err := namehash.NodeHash(params.DefaultTLD)
	require.NoError(t, err)
	require.NoError(t, chain.View(func(db vm.StateDB, _ uint64) error {
		reg := registry.Default()
		require.Equal(t, admin, reg.Admin(db))
		require.Equal(t, params.RegistrarAddress, reg.Owner(db, tld))
		require.Equal(t, params.RegistryAddress, resolver.Default().Registry(db))

		cfg := registrar.Default().Config(db)
		require.Equal(t, admin, cfg.Admin)
		require.Equal(t, tld, cfg.RootNode)

		rcfg := router.Default().Config(db)
		require.Equal(t, admin, rcfg.FeeCollector)
		require.Equal(t, uint64(100), rcfg.FeeBPS)

		require.Equal(t, int64(1_000_000), token.At(usd).BalanceOf(db, alice).Int64())
		return nil
	}))
	_, ok := chain.Host().Token(usd)
	require.True(t, ok)
	_, ok = chain.Host().Resolver(params.PublicResolverAddress)
	require.True(t, ok)
}

func TestGenesisRejectsBadConfig(t *testing.T) {
	g := testGenesis()
	g.Admin = common.Address{}
	_, err := OpenChain(rawdb.NewMemoryDatabase(), g, nil)
	require.Error(t, err)

	g = testGenesis()
	g.TLD = "bad.tld"
	_, err = OpenChain(rawdb.NewMemoryDatabase(), g, nil)
	require.ErrorIs(t, err, namehash.ErrInvalidName)

	_, err = OpenChain(rawdb.NewMemoryDatabase(), nil, nil)
	require.ErrorIs(t, err, ErrNoGenesis)
}

func TestApplyProducesBlocks(t *testing.T) {
	chain, clock := newTestChain(t)
	clock.now += 10

	price := rentPrice(t, chain, 1, "alice")
	rcpt, err := chain.Act(alice, params.RegistrarAddress, price, sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "alice", Owner: alice, Years: 1,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), rcpt.Number)
	require.Equal(t, uint64(genesisTime+10), rcpt.Time)
	require.NotEmpty(t, rcpt.Logs)
	for _, l := range rcpt.Logs {
		require.Equal(t, rcpt.TxHash, l.TxHash)
		require.Equal(t, uint64(1), l.BlockNumber)
	}
	require.Equal(t, rcpt.Root, chain.Head().Root)

	require.NoError(t, chain.View(func(db vm.StateDB, now uint64) error {
		require.Equal(t, alice, registrar.Default().DomainOwner(db, "alice"))
		require.Equal(t, registrar.Active, registrar.Default().State(db, "alice", now))
		return nil
	}))
}

func TestFailedApplyKeepsHead(t *testing.T) {
	chain, _ := newTestChain(t)
	before := chain.Head()

	_, err := chain.Act(alice, params.RegistrarAddress, big.NewInt(1), sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "alice", Owner: alice, Years: 1,
	})
	require.ErrorIs(t, err, registrar.ErrInsufficientPayment)
	require.Equal(t, before, chain.Head())

	require.NoError(t, chain.View(func(db vm.StateDB, _ uint64) error {
		require.Equal(t, common.Address{}, registrar.Default().DomainOwner(db, "alice"))
		require.Zero(t, testGenesis().Alloc[alice].Cmp(db.GetBalance(alice)))
		return nil
	}))
}

func TestClockNeverRunsBackwards(t *testing.T) {
	chain, clock := newTestChain(t)
	clock.now = genesisTime - 100
	rcpt, err := chain.Act(alice, usd, nil, sysaction.ActionTokenApprove, sysaction.TokenApprovePayload{
		Spender: params.PaymentRouterAddress, Amount: big.NewInt(5),
	})
	require.NoError(t, err)
	require.Equal(t, uint64(genesisTime), rcpt.Time)
}

func TestReopenRecoversState(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	clock := &fakeClock{now: genesisTime}
	chain, err := OpenChain(db, testGenesis(), clock.Now)
	require.NoError(t, err)

	price := rentPrice(t, chain, 2, "alice")
	_, err = chain.Act(alice, params.RegistrarAddress, price, sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "alice", Owner: alice, Years: 2,
	})
	require.NoError(t, err)
	head := chain.Head()
	chain.Close()

	reopened, err := OpenChain(db, nil, clock.Now)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, head, reopened.Head())
	_, ok := reopened.Host().Token(usd)
	require.True(t, ok)
	require.NoError(t, reopened.View(func(db vm.StateDB, _ uint64) error {
		require.Equal(t, alice, registrar.Default().DomainOwner(db, "alice"))
		require.Equal(t, uint64(genesisTime)+2*params.RentYear, registrar.Default().DomainExpires(db, "alice"))
		return nil
	}))
}

func TestLogsFeed(t *testing.T) {
	chain, _ := newTestChain(t)
	ch := make(chan LogsEvent, 4)
	sub := chain.SubscribeLogsEvent(ch)
	defer sub.Unsubscribe()

	price := rentPrice(t, chain, 1, "alice")
	_, err := chain.Act(alice, params.RegistrarAddress, price, sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "alice", Owner: alice, Years: 1,
	})
	require.NoError(t, err)

	select {
	case ev := <-ch:
		require.Equal(t, uint64(1), ev.Number)
		var found bool
		for _, l := range ev.Logs {
			if l.Address == params.RegistrarAddress && l.Topics[0] == sysaction.EventID(registrar.EventNameRegistered) {
				var nr registrar.NameRegisteredEvent
				require.NoError(t, sysaction.DecodeEvent(l, &nr))
				require.Equal(t, "alice", nr.Name)
				found = true
			}
		}
		require.True(t, found, "NameRegistered not delivered")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for logs")
	}
}

func TestPayByNameEndToEnd(t *testing.T) {
	chain, _ := newTestChain(t)
	price := rentPrice(t, chain, 1, "bob")
	_, err := chain.Act(bob, params.RegistrarAddress, price, sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "bob", Owner: bob, Years: 1,
	})
	require.NoError(t, err)

	_, err = chain.Act(alice, usd, nil, sysaction.ActionTokenApprove, sysaction.TokenApprovePayload{
		Spender: params.PaymentRouterAddress, Amount: big.NewInt(1000),
	})
	require.NoError(t, err)
	_, err = chain.Act(alice, params.PaymentRouterAddress, nil, sysaction.ActionPayNameToken, sysaction.PayNameTokenPayload{
		Token: usd, Name: "bob.pns", Amount: big.NewInt(1000),
	})
	require.NoError(t, err)

	require.NoError(t, chain.View(func(db vm.StateDB, _ uint64) error {
		tok := token.At(usd)
		require.Equal(t, int64(990), tok.BalanceOf(db, bob).Int64())
		require.Equal(t, int64(10), tok.BalanceOf(db, admin).Int64())
		require.Equal(t, uint64(1), router.Default().InteractionCount(db, alice))
		return nil
	}))
}

func TestLogsAtSurvivesReopen(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	chain, err := OpenChain(db, testGenesis(), (&fakeClock{now: genesisTime}).Now)
	require.NoError(t, err)
	price := rentPrice(t, chain, 1, "alice")
	rcpt, err := chain.Act(alice, params.RegistrarAddress, price, sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "alice", Owner: alice, Years: 1,
	})
	require.NoError(t, err)
	chain.Close()

	reopened, err := OpenChain(db, nil, nil)
	require.NoError(t, err)
	ev, ok := reopened.LogsAt(rcpt.Number)
	require.True(t, ok)
	require.Equal(t, rcpt.Time, ev.Time)
	require.Len(t, ev.Logs, len(rcpt.Logs))
	for i, l := range ev.Logs {
		require.Equal(t, rcpt.Logs[i].Address, l.Address)
		require.Equal(t, rcpt.Logs[i].Topics, l.Topics)
		require.Equal(t, rcpt.Logs[i].Data, l.Data)
		require.Equal(t, rcpt.Number, l.BlockNumber)
	}
	_, ok = reopened.LogsAt(rcpt.Number + 1)
	require.False(t, ok)
}

func TestReRegisterClearsResolver(t *testing.T) {
	chain, clock := newTestChain(t)
	carol := common.HexToAddress("0xca")
	name := "alice." + params.DefaultTLD
	node, err := namehash.NodeHash(name)
	require.NoError(t, err)

	_, err = chain.Act(alice, params.RegistrarAddress, rentPrice(t, chain, 1, "alice"), sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "alice", Owner: alice, Years: 1,
	})
	require.NoError(t, err)
	_, err = chain.Act(alice, params.RegistryAddress, nil, sysaction.ActionSetResolver, sysaction.SetResolverPayload{
		Node: node, Resolver: params.PublicResolverAddress,
	})
	require.NoError(t, err)
	_, err = chain.Act(alice, params.PublicResolverAddress, nil, sysaction.ActionResolverSetAddr, sysaction.SetAddrPayload{
		Node: node, Addr: carol,
	})
	require.NoError(t, err)

	resolve := func() common.Address {
		var got common.Address
		require.NoError(t, chain.View(func(db vm.StateDB, now uint64) error {
			ctx := &sysaction.Context{Time: now, StateDB: db, Host: chain.Host()}
			got, err = router.Default().ResolveName(ctx, name, nil)
			return err
		}))
		return got
	}
	require.Equal(t, carol, resolve())

	clock.now += params.RentYear + 30*params.Day
	_, err = chain.Act(bob, params.RegistrarAddress, rentPrice(t, chain, 1, "alice"), sysaction.ActionRegister, sysaction.RegisterPayload{
		Name: "alice", Owner: bob, Years: 1,
	})
	require.NoError(t, err)
	require.Equal(t, bob, resolve())
	require.NoError(t, chain.View(func(db vm.StateDB, _ uint64) error {
		require.Equal(t, registry.Record{Owner: bob}, registry.Default().Record(db, node))
		return nil
	}))
}

func TestForeignActionAtTokenRejected(t *testing.T) {
	chain, _ := newTestChain(t)
	mallory := common.HexToAddress("0x3a1")
	head := chain.Head()

	_, err := chain.Act(mallory, usd, nil, sysaction.ActionTokenRegistryInit, sysaction.TokenRegistryInitPayload{Minter: mallory})
	require.ErrorIs(t, err, sysaction.ErrWrongContract)
	_, err = chain.Act(mallory, usd, nil, sysaction.ActionTokenMint, sysaction.MintPayload{To: alice, TokenID: big.NewInt(1), Domain: "x"})
	require.ErrorIs(t, err, sysaction.ErrWrongContract)

	require.NoError(t, chain.View(func(db vm.StateDB, _ uint64) error {
		require.Equal(t, int64(1_000_000), token.At(usd).BalanceOf(db, alice).Int64())
		require.Zero(t, token.At(usd).BalanceOf(db, mallory).Sign())
		require.Equal(t, sysaction.KindToken, sysaction.KindOf(db, usd))
		return nil
	}))
	require.Equal(t, head.Root, chain.Head().Root)
}
