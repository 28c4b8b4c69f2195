package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/registrar"
	"github.com/tos-network/gpns/resolver"
	"github.com/tos-network/gpns/sysaction"
	"github.com/tos-network/gpns/token"

	// Handlers registered for genesis deployment.
	_ "github.com/tos-network/gpns/nft"
	_ "github.com/tos-network/gpns/points"
	_ "github.com/tos-network/gpns/registry"
	_ "github.com/tos-network/gpns/router"
)

var errNoAdmin = errors.New("genesis: zero admin address")

// GenesisToken is a fungible token deployed at genesis.
type GenesisToken struct {
	Address common.Address `json:"address"`
	Name    string         `json:"name"`
	Symbol  string         `json:"symbol"`
	Supply  *big.Int       `json:"supply"`
	Holder  common.Address `json:"holder"`
}

// Genesis specifies the initial deployment of the PNS contracts.
type Genesis struct {
	Admin        common.Address              `json:"admin"`
	Time         uint64                      `json:"time"`
	TLD          string                      `json:"tld"`
	Prices       sysaction.Prices            `json:"prices"`
	FeeCollector common.Address              `json:"fee_collector"`
	FeeBPS       uint64                      `json:"fee_bps"`
	Points       bool                        `json:"points"`
	Alloc        map[common.Address]*big.Int `json:"alloc"`
	Tokens       []GenesisToken              `json:"tokens"`
}

// DefaultGenesis returns a deployment administered and fee-collected by
// admin with default prices and a 1% router fee.
func DefaultGenesis(admin common.Address) *Genesis {
	return &Genesis{
		Admin:        admin,
		TLD:          params.DefaultTLD,
		Prices:       registrar.DefaultPrices(),
		FeeCollector: admin,
		FeeBPS:       100,
		Points:       true,
	}
}

func (g *Genesis) prices() sysaction.Prices {
	p, def := g.Prices, registrar.DefaultPrices()
	if p.Price3 == nil {
		p.Price3 = def.Price3
	}
	if p.Price4To5 == nil {
		p.Price4To5 = def.Price4To5
	}
	if p.Price6To9 == nil {
		p.Price6To9 = def.Price6To9
	}
	if p.Price10Plus == nil {
		p.Price10Plus = def.Price10Plus
	}
	return p
}

func (g *Genesis) tld() string {
	if g.TLD == "" {
		return params.DefaultTLD
	}
	return g.TLD
}

// Host returns the contract bindings of the deployment.
func (g *Genesis) Host() *sysaction.Host {
	host := sysaction.NewHost()
	res := resolver.Default()
	host.BindResolver(res.Address(), res)
	for _, t := range g.Tokens {
		host.BindToken(t.Address, token.At(t.Address))
	}
	return host
}

type deployStep struct {
	from    common.Address
	to      common.Address
	kind    sysaction.ActionKind
	payload interface{}
}

// Deploy runs the deployment actions against db. Order matters: the
// registrar checks at construction that it already owns its TLD.
func (g *Genesis) Deploy(db vm.StateDB, host *sysaction.Host) error {
	if g.Admin == (common.Address{}) {
		return errNoAdmin
	}
	if err := namehash.ValidateLabel(g.tld()); err != nil {
		return fmt.Errorf("genesis: tld %q: %w", g.tld(), err)
	}
	for addr, bal := range g.Alloc {
		db.AddBalance(addr, bal)
	}
	tldNode := namehash.Subnode(namehash.Root, namehash.LabelHash(g.tld()))
	var ledger common.Address
	if g.Points {
		ledger = params.PointsLedgerAddress
	}
	steps := []deployStep{
		{g.Admin, params.RegistryAddress, sysaction.ActionRegistryInit, nil},
		{g.Admin, params.RegistryAddress, sysaction.ActionSetSubnodeOwner, sysaction.SetSubnodeOwnerPayload{
			Node: namehash.Root, Label: namehash.LabelHash(g.tld()), Owner: params.RegistrarAddress,
		}},
		{g.Admin, params.PublicResolverAddress, sysaction.ActionResolverInit, sysaction.ResolverInitPayload{Registry: params.RegistryAddress}},
	}
	if g.Points {
		steps = append(steps, deployStep{g.Admin, params.PointsLedgerAddress, sysaction.ActionPointsInit, nil})
	}
	steps = append(steps,
		deployStep{g.Admin, params.TokenRegistrarAddress, sysaction.ActionTokenRegistryInit, sysaction.TokenRegistryInitPayload{
			Minter: params.RegistrarAddress, Points: ledger,
		}},
		deployStep{g.Admin, params.RegistrarAddress, sysaction.ActionRegistrarInit, sysaction.RegistrarInitPayload{
			Registry: params.RegistryAddress, TokenRegistrar: params.TokenRegistrarAddress, RootNode: tldNode, Prices: g.prices(),
		}},
		deployStep{g.Admin, params.PaymentRouterAddress, sysaction.ActionRouterInit, sysaction.RouterInitPayload{
			Registry: params.RegistryAddress, FeeCollector: g.FeeCollector, FeeBPS: g.FeeBPS,
		}},
	)
	for _, t := range g.Tokens {
		holder := t.Holder
		if holder == (common.Address{}) {
			holder = g.Admin
		}
		steps = append(steps, deployStep{holder, t.Address, sysaction.ActionTokenInit, sysaction.TokenInitPayload{
			Name: t.Name, Symbol: t.Symbol, Supply: t.Supply,
		}})
	}
	for i, s := range steps {
		data, err := sysaction.MakeSysAction(s.kind, s.payload)
		if err != nil {
			return err
		}
		ctx := &sysaction.Context{
			From:        s.from,
			To:          s.to,
			Value:       new(big.Int),
			Time:        g.Time,
			BlockNumber: new(big.Int),
			StateDB:     db,
			Host:        host,
		}
		if err := sysaction.ExecuteWithContext(ctx, data); err != nil {
			return fmt.Errorf("genesis step %d (%s): %w", i, s.kind, err)
		}
	}
	log.Info("Deployed PNS genesis", "admin", g.Admin, "tld", g.tld(), "tokens", len(g.Tokens), "points", g.Points)
	return nil
}

func (g *Genesis) marshal() ([]byte, error) { return json.Marshal(g) }

func unmarshalGenesis(data []byte) (*Genesis, error) {
	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
