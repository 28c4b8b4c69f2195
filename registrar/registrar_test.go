package registrar

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"

	"github.com/tos-network/gpns/fault"
	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/nft"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/registry"
	"github.com/tos-network/gpns/sysaction"
)

const t0 uint64 = 1_700_000_000

var (
	admin = common.HexToAddress("0xad")
	alice = common.HexToAddress("0xa1")
	bob   = common.HexToAddress("0xb0b")

	year = params.RentYear
	tld  = mustNode("pns")
)

func mustNode(name string) common.Hash {
	h, err := namehash.NodeHash(name)
	if err != nil {
		panic(err)
	}
	return h
}

func newTestState() *state.StateDB {
	db, _ := state.New(common.Hash{}, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	return db
}

type env struct {
	db   *state.StateDB
	host *sysaction.Host
	now  uint64
}

func (e *env) ctx(from common.Address, value *big.Int) *sysaction.Context {
	if value == nil {
		value = new(big.Int)
	}
	return &sysaction.Context{From: from, Value: value, Time: e.now, BlockNumber: big.NewInt(1), StateDB: e.db, Host: e.host}
}

// newEnv deploys registry, token registrar and registrar the way genesis does.
func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{db: newTestState(), host: sysaction.NewHost(), now: t0}
	reg := registry.Default()
	if err := reg.Init(e.ctx(admin, nil)); err != nil {
		t.Fatalf("registry init: %v", err)
	}
	if _, err := reg.SetSubnodeOwner(e.ctx(admin, nil), namehash.Root, namehash.LabelHash("pns"), params.RegistrarAddress); err != nil {
		t.Fatalf("delegate tld: %v", err)
	}
	if err := nft.Default().Init(e.ctx(admin, nil), params.RegistrarAddress, common.Address{}); err != nil {
		t.Fatalf("nft init: %v", err)
	}
	err := Default().Init(e.ctx(admin, nil), &sysaction.RegistrarInitPayload{
		Registry:       params.RegistryAddress,
		TokenRegistrar: params.TokenRegistrarAddress,
		RootNode:       tld,
		Prices:         DefaultPrices(),
	})
	if err != nil {
		t.Fatalf("registrar init: %v", err)
	}
	for _, a := range []common.Address{alice, bob} {
		e.db.AddBalance(a, new(big.Int).Mul(big.NewInt(100), big.NewInt(params.TOS)))
	}
	return e
}

func (e *env) price(t *testing.T, years uint64, name string) *big.Int {
	t.Helper()
	p, err := Default().RentPrice(e.db, years, name)
	if err != nil {
		t.Fatalf("rent price %q: %v", name, err)
	}
	return p
}

func (e *env) register(t *testing.T, from common.Address, name string, owner common.Address, years uint64) {
	t.Helper()
	if err := Default().Register(e.ctx(from, e.price(t, years, name)), name, owner, years, "ipfs://"+name); err != nil {
		t.Fatalf("register %q: %v", name, err)
	}
}

func TestInitValidation(t *testing.T) {
	db := newTestState()
	ctx := &sysaction.Context{From: admin, StateDB: db}
	if err := registry.Default().Init(ctx); err != nil {
		t.Fatalf("registry init: %v", err)
	}
	good := sysaction.RegistrarInitPayload{
		Registry:       params.RegistryAddress,
		TokenRegistrar: params.TokenRegistrarAddress,
		RootNode:       tld,
		Prices:         DefaultPrices(),
	}
	// The deployer owns the zero root, which is rejected as a root node, so
	// delegate a TLD to the deployer.
	if _, err := registry.Default().SetSubnodeOwner(ctx, namehash.Root, namehash.LabelHash("pns"), admin); err != nil {
		t.Fatalf("delegate: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(p *sysaction.RegistrarInitPayload)
		want   error
	}{
		{"zero registry", func(p *sysaction.RegistrarInitPayload) { p.Registry = common.Address{} }, ErrZeroAddress},
		{"zero nft", func(p *sysaction.RegistrarInitPayload) { p.TokenRegistrar = common.Address{} }, ErrZeroAddress},
		{"zero root", func(p *sysaction.RegistrarInitPayload) { p.RootNode = common.Hash{} }, ErrInvalidRootNode},
		{"root not owned", func(p *sysaction.RegistrarInitPayload) { p.RootNode = mustNode("xyz") }, ErrRootNotOwned},
		{"zero price", func(p *sysaction.RegistrarInitPayload) { p.Prices.Price6To9 = new(big.Int) }, ErrInvalidPriceAmount},
		{"nil price", func(p *sysaction.RegistrarInitPayload) { p.Prices.Price3 = nil }, ErrInvalidPriceAmount},
	}
	for _, tt := range tests {
		p := good
		p.Prices = DefaultPrices()
		tt.mutate(&p)
		if err := Default().Init(ctx, &p); !errors.Is(err, tt.want) {
			t.Errorf("%s: want %v, got %v", tt.name, tt.want, err)
		}
	}
	if err := Default().Init(ctx, &good); err != nil {
		t.Fatalf("init with deployer-owned root: %v", err)
	}
	if err := Default().Init(ctx, &good); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second init: got %v", err)
	}
}

func TestPricing(t *testing.T) {
	e := newEnv(t)
	r := Default()
	p := DefaultPrices()
	tests := []struct {
		name string
		want *big.Int
	}{
		{"abc", p.Price3},
		{"abcd", p.Price4To5},
		{"abcde", p.Price4To5},
		{"abcdef", p.Price6To9},
		{"abcdefghi", p.Price6To9},
		{"abcdefghij", p.Price10Plus},
		{"ééé", p.Price3}, // 3 code points, 6 bytes
	}
	for _, tt := range tests {
		if got := e.price(t, 1, tt.name); got.Cmp(tt.want) != 0 {
			t.Errorf("RentPrice(1, %q): have %v want %v", tt.name, got, tt.want)
		}
		for k := uint64(1); k <= 5; k++ {
			want := new(big.Int).Mul(e.price(t, 1, tt.name), new(big.Int).SetUint64(k))
			if got := e.price(t, k, tt.name); got.Cmp(want) != 0 {
				t.Errorf("RentPrice(%d, %q) not linear", k, tt.name)
			}
		}
	}
	for _, name := range []string{"", "ab", "éé"} {
		if _, err := r.RentPrice(e.db, 1, name); !errors.Is(err, ErrNameTooShort) {
			t.Errorf("RentPrice(%q): want ErrNameTooShort, got %v", name, err)
		}
	}
}

func TestSetPrices(t *testing.T) {
	e := newEnv(t)
	r := Default()
	next := sysaction.Prices{Price3: big.NewInt(4), Price4To5: big.NewInt(3), Price6To9: big.NewInt(2), Price10Plus: big.NewInt(1)}
	if err := r.SetPrices(e.ctx(alice, nil), next); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger: got %v", err)
	}
	bad := next
	bad.Price10Plus = big.NewInt(0)
	if err := r.SetPrices(e.ctx(admin, nil), bad); !errors.Is(err, ErrInvalidPriceAmount) {
		t.Fatalf("zero tier: got %v", err)
	}
	if got := e.price(t, 1, "abcdefghij"); got.Cmp(params.DefaultPrice10Plus) != 0 {
		t.Fatalf("rejected update changed prices")
	}
	if err := r.SetPrices(e.ctx(admin, nil), next); err != nil {
		t.Fatalf("set prices: %v", err)
	}
	if got := e.price(t, 2, "abc"); got.Int64() != 8 {
		t.Fatalf("new price not applied: %v", got)
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	e := newEnv(t)
	r := Default()
	e.register(t, alice, "abc", alice, 2)

	if r.IsAvailable(e.db, "abc", e.now) {
		t.Fatalf("registered domain reported available")
	}
	if got := r.DomainExpires(e.db, "abc"); got != t0+2*year {
		t.Fatalf("expires: have %d want %d", got, t0+2*year)
	}
	if r.State(e.db, "abc", e.now) != Active || r.DomainOwner(e.db, "abc") != alice {
		t.Fatalf("unexpected domain %+v", r.Domain(e.db, "abc"))
	}
	if got := registry.Default().Owner(e.db, mustNode("abc.pns")); got != alice {
		t.Fatalf("registry subnode owner: %x", got)
	}
	tokens := nft.Default()
	id := TokenID("abc")
	if owner, ok := tokens.OwnerOf(e.db, id); !ok || owner != alice {
		t.Fatalf("token owner: %x %v", owner, ok)
	}
	if tokens.DomainOf(e.db, id) != "abc" || tokens.TokenURI(e.db, id) != "ipfs://abc" {
		t.Fatalf("token metadata wrong")
	}
	if got := e.db.GetBalance(params.RegistrarAddress); got.Cmp(e.price(t, 2, "abc")) != 0 {
		t.Fatalf("registrar balance: %v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	r := Default()
	price := e.price(t, 1, "abcd")
	tests := []struct {
		name  string
		owner common.Address
		years uint64
		want  error
	}{
		{"ab", alice, 1, ErrNameTooShort},
		{"abcd", alice, 0, ErrInsufficientDuration},
		{"abcd", common.Address{}, 1, ErrInvalidNewOwner},
		{"ab.cd", alice, 1, ErrInvalidName},
		{"ab!d", alice, 1, ErrInvalidName},
		{"abcd", alice, 1 << 62, ErrDurationOverflow},
	}
	for _, tt := range tests {
		if err := r.Register(e.ctx(alice, price), tt.name, tt.owner, tt.years, ""); !errors.Is(err, tt.want) {
			t.Errorf("Register(%q, %x, %d): want %v, got %v", tt.name, tt.owner, tt.years, tt.want, err)
		}
	}
}

func TestRegisterInsufficientPayment(t *testing.T) {
	e := newEnv(t)
	price := e.price(t, 1, "abc")
	short := new(big.Int).Sub(price, big.NewInt(1))
	err := Default().Register(e.ctx(alice, short), "abc", alice, 1, "")

	var perr *InsufficientPaymentError
	if !errors.As(err, &perr) {
		t.Fatalf("want InsufficientPaymentError, got %v", err)
	}
	if perr.Required.Cmp(price) != 0 || perr.Provided.Cmp(short) != 0 {
		t.Fatalf("operands: %+v", perr)
	}
	if !errors.Is(err, ErrInsufficientPayment) || !errors.Is(err, fault.ErrInsufficientFunds) {
		t.Fatalf("kind lost: %v", err)
	}

	// Overpayment is accepted and kept.
	over := new(big.Int).Add(price, big.NewInt(12345))
	if err := Default().Register(e.ctx(alice, over), "abc", alice, 1, ""); err != nil {
		t.Fatalf("overpaid register: %v", err)
	}
	if got := e.db.GetBalance(params.RegistrarAddress); got.Cmp(over) != 0 {
		t.Fatalf("overpayment not retained: %v", got)
	}
}

func TestRegisterTakenDomain(t *testing.T) {
	e := newEnv(t)
	e.register(t, alice, "abc", alice, 1)
	err := Default().Register(e.ctx(bob, e.price(t, 1, "abc")), "abc", bob, 1, "")
	if !errors.Is(err, ErrDomainNotAvailable) || !errors.Is(err, fault.ErrConflict) {
		t.Fatalf("want ErrDomainNotAvailable, got %v", err)
	}
	// Still unavailable at the exact expiry second.
	e.now = t0 + year
	if Default().IsAvailable(e.db, "abc", e.now) {
		t.Fatalf("available at expiry second")
	}
}

func TestReRegisterAfterExpiry(t *testing.T) {
	e := newEnv(t)
	r := Default()
	e.register(t, alice, "abc", alice, 1)
	reg := registry.Default()
	stale := common.HexToAddress("0x5e7")
	if err := reg.SetResolver(e.ctx(alice, nil), mustNode("abc.pns"), stale); err != nil {
		t.Fatalf("set resolver: %v", err)
	}
	if err := reg.SetTTL(e.ctx(alice, nil), mustNode("abc.pns"), 60); err != nil {
		t.Fatalf("set ttl: %v", err)
	}

	e.now = t0 + year + 7*params.Day
	if !r.IsAvailable(e.db, "abc", e.now) || r.State(e.db, "abc", e.now) != Expired {
		t.Fatalf("domain not expired")
	}
	e.register(t, bob, "abc", bob, 1)

	if owner, _ := nft.Default().OwnerOf(e.db, TokenID("abc")); owner != bob {
		t.Fatalf("token owner after re-registration: %x", owner)
	}
	if got := reg.Record(e.db, mustNode("abc.pns")); got != (registry.Record{Owner: bob}) {
		t.Fatalf("record after re-registration: %+v", got)
	}
	if got := r.DomainExpires(e.db, "abc"); got != e.now+year {
		t.Fatalf("expires: %d", got)
	}
	if nft.Default().BalanceOf(e.db, alice) != 0 {
		t.Fatalf("previous owner kept a token")
	}
}

func TestRenew(t *testing.T) {
	e := newEnv(t)
	r := Default()
	e.register(t, alice, "abcdef", alice, 1)

	if err := r.Renew(e.ctx(alice, e.price(t, 2, "abcdef")), "abcdef", 2); err != nil {
		t.Fatalf("renew active: %v", err)
	}
	if got := r.DomainExpires(e.db, "abcdef"); got != t0+3*year {
		t.Fatalf("active renewal must add: have %d want %d", got, t0+3*year)
	}

	t1 := t0 + 3*year + 30*params.Day
	e.now = t1
	if err := r.Renew(e.ctx(alice, e.price(t, 1, "abcdef")), "abcdef", 1); err != nil {
		t.Fatalf("renew expired: %v", err)
	}
	if got := r.DomainExpires(e.db, "abcdef"); got != t1+year {
		t.Fatalf("expired renewal must restart: have %d want %d", got, t1+year)
	}
	if owner, _ := nft.Default().OwnerOf(e.db, TokenID("abcdef")); owner != alice {
		t.Fatalf("renewal touched the token")
	}
}

func TestRenewValidation(t *testing.T) {
	e := newEnv(t)
	r := Default()
	e.register(t, alice, "abc", alice, 1)
	price := e.price(t, 1, "abc")

	if err := r.Renew(e.ctx(alice, price), "nobody", 1); !errors.Is(err, ErrDomainNotRegistered) {
		t.Fatalf("unregistered: got %v", err)
	}
	if err := r.Renew(e.ctx(bob, price), "abc", 1); !errors.Is(err, ErrNotDomainOwner) {
		t.Fatalf("stranger: got %v", err)
	}
	if err := r.Renew(e.ctx(alice, price), "abc", 0); !errors.Is(err, ErrInsufficientDuration) {
		t.Fatalf("zero years: got %v", err)
	}
	var perr *InsufficientPaymentError
	if err := r.Renew(e.ctx(alice, price), "abc", 2); !errors.As(err, &perr) {
		t.Fatalf("underpaid: got %v", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	e := newEnv(t)
	r := Default()
	e.register(t, alice, "abcd", alice, 1)

	if err := r.TransferOwnership(e.ctx(alice, nil), "abcd", common.Address{}); !errors.Is(err, ErrInvalidNewOwner) {
		t.Fatalf("zero owner: got %v", err)
	}
	if err := r.TransferOwnership(e.ctx(alice, nil), "zzzz", bob); !errors.Is(err, ErrDomainNotRegistered) {
		t.Fatalf("unregistered: got %v", err)
	}
	if err := r.TransferOwnership(e.ctx(bob, nil), "abcd", bob); !errors.Is(err, ErrNotDomainOwner) {
		t.Fatalf("stranger: got %v", err)
	}
	if err := r.TransferOwnership(e.ctx(alice, nil), "abcd", bob); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	id := TokenID("abcd")
	if owner, _ := nft.Default().OwnerOf(e.db, id); owner != bob {
		t.Fatalf("token not transferred")
	}
	if nft.Default().TokenURI(e.db, id) != "ipfs://abcd" {
		t.Fatalf("token uri not preserved")
	}
	if registry.Default().Owner(e.db, mustNode("abcd.pns")) != bob || r.DomainOwner(e.db, "abcd") != bob {
		t.Fatalf("registry or domain owner not updated")
	}
	if r.DomainExpires(e.db, "abcd") != t0+year {
		t.Fatalf("transfer changed expiry")
	}

	e.now = t0 + year + 1
	if err := r.TransferOwnership(e.ctx(bob, nil), "abcd", alice); !errors.Is(err, ErrDomainExpired) || !errors.Is(err, fault.ErrExpired) {
		t.Fatalf("expired: got %v", err)
	}
}

type refusingReceiver struct{}

func (refusingReceiver) Receive(*sysaction.Context, common.Address, *big.Int) error {
	return errors.New("closed")
}

func TestWithdraw(t *testing.T) {
	e := newEnv(t)
	r := Default()
	if err := r.Withdraw(e.ctx(admin, nil)); !errors.Is(err, ErrNoFundsToWithdraw) {
		t.Fatalf("empty: got %v", err)
	}
	e.register(t, alice, "abc", alice, 1)
	bal := new(big.Int).Set(e.db.GetBalance(params.RegistrarAddress))

	if err := r.Withdraw(e.ctx(alice, nil)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger: got %v", err)
	}

	e.host.BindReceiver(admin, refusingReceiver{})
	if err := r.Withdraw(e.ctx(admin, nil)); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("refusing admin: got %v", err)
	}
	if e.db.GetBalance(params.RegistrarAddress).Cmp(bal) != 0 {
		t.Fatalf("failed withdraw moved funds")
	}

	e.host = sysaction.NewHost()
	if err := r.Withdraw(e.ctx(admin, nil)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if e.db.GetBalance(admin).Cmp(bal) != 0 || e.db.GetBalance(params.RegistrarAddress).Sign() != 0 {
		t.Fatalf("balances after withdraw wrong")
	}
}

func TestRegisterIsAtomic(t *testing.T) {
	e := newEnv(t)
	// Take the TLD away from the registrar: the root check inside Register
	// fails after the domain record has been written.
	if err := registry.Default().SetOwner(e.ctx(admin, nil), tld, admin); err != nil {
		t.Fatalf("take tld: %v", err)
	}
	data, _ := sysaction.MakeSysAction(sysaction.ActionRegister, sysaction.RegisterPayload{Name: "abc", Owner: alice, Years: 1})
	before := new(big.Int).Set(e.db.GetBalance(alice))
	err := sysaction.ExecuteWithContext(e.ctx(alice, e.price(t, 1, "abc")), data)
	if !errors.Is(err, ErrRootNotOwned) {
		t.Fatalf("want ErrRootNotOwned, got %v", err)
	}
	if d := Default().Domain(e.db, "abc"); d != (Domain{}) {
		t.Fatalf("partial domain write survived: %+v", d)
	}
	if e.db.GetBalance(alice).Cmp(before) != 0 {
		t.Fatalf("payment not refunded by revert")
	}
	if nft.Default().Exists(e.db, TokenID("abc")) {
		t.Fatalf("token minted by failed registration")
	}
}
