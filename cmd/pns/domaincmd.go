package main

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/gpns/cmd/utils"
	"github.com/tos-network/gpns/core"
	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/nft"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/pnsidx"
	"github.com/tos-network/gpns/registrar"
	"github.com/tos-network/gpns/registry"
	"github.com/tos-network/gpns/resolver"
	"github.com/tos-network/gpns/router"
	"github.com/tos-network/gpns/sysaction"
)

var (
	tokenURIFlag = &cli.StringFlag{
		Name:  "uri",
		Usage: "Metadata URI of the domain token",
	}
	allFlag = &cli.BoolFlag{
		Name:  "all",
		Usage: "Include expired domains",
	}

	namehashCommand = &cli.Command{
		Action:    showNamehash,
		Name:      "namehash",
		Usage:     "Print the node hash, label hash and token id of a name",
		ArgsUsage: "<name>",
	}
	priceCommand = &cli.Command{
		Action:    showPrice,
		Name:      "price",
		Usage:     "Print the rent price of a label",
		ArgsUsage: "<label>",
		Flags:     []cli.Flag{utils.YearsFlag},
	}
	registerCommand = &cli.Command{
		Action:    registerDomain,
		Name:      "register",
		Usage:     "Register a domain under the registrar TLD",
		ArgsUsage: "<label>",
		Flags:     []cli.Flag{utils.FromFlag, utils.OwnerFlag, utils.YearsFlag, utils.ValueFlag, tokenURIFlag},
		Description: `
Registers <label> for --years years. Without --value the exact rent price is
paid.`,
	}
	renewCommand = &cli.Command{
		Action:    renewDomain,
		Name:      "renew",
		Usage:     "Extend the registration of a domain",
		ArgsUsage: "<label>",
		Flags:     []cli.Flag{utils.FromFlag, utils.YearsFlag, utils.ValueFlag},
	}
	transferCommand = &cli.Command{
		Action:    transferDomain,
		Name:      "transfer",
		Usage:     "Transfer a domain and its token to a new owner",
		ArgsUsage: "<label> <new owner>",
		Flags:     []cli.Flag{utils.FromFlag},
	}
	setAddrCommand = &cli.Command{
		Action:    setAddr,
		Name:      "setaddr",
		Usage:     "Point a name at a payout address through the public resolver",
		ArgsUsage: "<name> <address>",
		Flags:     []cli.Flag{utils.FromFlag},
	}
	resolveCommand = &cli.Command{
		Action:    resolveName,
		Name:      "resolve",
		Usage:     "Print the payout address of a name",
		ArgsUsage: "<name>",
	}
	infoCommand = &cli.Command{
		Action:    showInfo,
		Name:      "info",
		Usage:     "Show the registrar, registry and token state of a domain",
		ArgsUsage: "<label>",
	}
	domainsCommand = &cli.Command{
		Action: listDomains,
		Name:   "domains",
		Usage:  "List registered domains",
		Flags:  []cli.Flag{utils.OwnerFlag, allFlag},
	}
)

func firstArg(ctx *cli.Context, what string) string {
	if ctx.NArg() < 1 {
		utils.Fatalf("Missing %s argument", what)
	}
	return ctx.Args().First()
}

func showNamehash(ctx *cli.Context) error {
	name := firstArg(ctx, "name")
	node, err := namehash.NodeHash(name)
	if err != nil {
		return err
	}
	labels, err := namehash.Labels(name)
	if err != nil {
		return err
	}
	fmt.Println("Node: ", node.Hex())
	if len(labels) > 0 {
		fmt.Println("Label:", namehash.LabelHash(labels[0]).Hex())
		fmt.Println("Token:", namehash.TokenID(labels[0]))
	}
	return nil
}

func rentPrice(chain *core.Chain, years uint64, label string) (*big.Int, error) {
	var price *big.Int
	err := chain.View(func(db vm.StateDB, _ uint64) error {
		var err error
		price, err = registrar.Default().RentPrice(db, years, label)
		return err
	})
	return price, err
}

func showPrice(ctx *cli.Context) error {
	label := firstArg(ctx, "label")
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	price, err := rentPrice(chain, ctx.Uint64(utils.YearsFlag.Name), label)
	if err != nil {
		return err
	}
	fmt.Printf("%s for %d year(s): %v wei\n", label, ctx.Uint64(utils.YearsFlag.Name), price)
	return nil
}

// actionValue returns --value, or the rent price when unset.
func actionValue(ctx *cli.Context, chain *core.Chain, label string) *big.Int {
	if s := ctx.String(utils.ValueFlag.Name); s != "" {
		v, err := utils.ParseAmount(s)
		if err != nil {
			utils.Fatalf("Invalid --value: %v", err)
		}
		return v
	}
	price, err := rentPrice(chain, ctx.Uint64(utils.YearsFlag.Name), label)
	if err != nil {
		utils.Fatalf("Can't price %q: %v", label, err)
	}
	return price
}

func registerDomain(ctx *cli.Context) error {
	label := firstArg(ctx, "label")
	from := utils.MustAddress(ctx, utils.FromFlag)
	owner := from
	if ctx.IsSet(utils.OwnerFlag.Name) {
		owner = utils.MustAddress(ctx, utils.OwnerFlag)
	}
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	r, err := chain.Act(from, params.RegistrarAddress, actionValue(ctx, chain, label), sysaction.ActionRegister, sysaction.RegisterPayload{
		Name:     label,
		Owner:    owner,
		Years:    ctx.Uint64(utils.YearsFlag.Name),
		TokenURI: ctx.String(tokenURIFlag.Name),
	})
	if err != nil {
		return err
	}
	printReceipt(r)
	return nil
}

func renewDomain(ctx *cli.Context) error {
	label := firstArg(ctx, "label")
	from := utils.MustAddress(ctx, utils.FromFlag)
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	r, err := chain.Act(from, params.RegistrarAddress, actionValue(ctx, chain, label), sysaction.ActionRenew, sysaction.RenewPayload{
		Name:  label,
		Years: ctx.Uint64(utils.YearsFlag.Name),
	})
	if err != nil {
		return err
	}
	printReceipt(r)
	return nil
}

func transferDomain(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		utils.Fatalf("Usage: transfer <label> <new owner>")
	}
	from := utils.MustAddress(ctx, utils.FromFlag)
	newOwner, err := utils.ParseAddress(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	r, err := chain.Act(from, params.RegistrarAddress, nil, sysaction.ActionTransferDomain, sysaction.TransferDomainPayload{
		Name:     ctx.Args().First(),
		NewOwner: newOwner,
	})
	if err != nil {
		return err
	}
	printReceipt(r)
	return nil
}

func setAddr(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		utils.Fatalf("Usage: setaddr <name> <address>")
	}
	from := utils.MustAddress(ctx, utils.FromFlag)
	node, err := namehash.NodeHash(ctx.Args().First())
	if err != nil {
		return err
	}
	addr, err := utils.ParseAddress(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	var current common.Address
	chain.View(func(db vm.StateDB, _ uint64) error {
		current = registry.Default().Resolver(db, node)
		return nil
	})
	if current != params.PublicResolverAddress {
		r, err := chain.Act(from, params.RegistryAddress, nil, sysaction.ActionSetResolver, sysaction.SetResolverPayload{
			Node: node, Resolver: params.PublicResolverAddress,
		})
		if err != nil {
			return err
		}
		printReceipt(r)
	}
	r, err := chain.Act(from, params.PublicResolverAddress, nil, sysaction.ActionResolverSetAddr, sysaction.SetAddrPayload{
		Node: node, Addr: addr,
	})
	if err != nil {
		return err
	}
	printReceipt(r)
	return nil
}

func resolveName(ctx *cli.Context) error {
	name := firstArg(ctx, "name")
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	return chain.View(func(db vm.StateDB, now uint64) error {
		sctx := &sysaction.Context{StateDB: db, Host: chain.Host(), Time: now, Value: new(big.Int)}
		addr, err := router.Default().ResolveName(sctx, name, nil)
		if err != nil {
			return err
		}
		fmt.Println(addr.Hex())
		return nil
	})
}

func formatTime(ts uint64) string {
	if ts == 0 {
		return "-"
	}
	return params.UnixToTime(ts).Format(time.RFC3339)
}

func showInfo(ctx *cli.Context) error {
	label := firstArg(ctx, "label")
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	return chain.View(func(db vm.StateDB, now uint64) error {
		reg := registrar.Default()
		cfg := reg.Config(db)
		node := namehash.Subnode(cfg.RootNode, namehash.LabelHash(label))
		rec := registry.At(cfg.Registry).Record(db, node)
		id := registrar.TokenID(label)
		tokenOwner, minted := nft.At(cfg.TokenRegistrar).OwnerOf(db, id)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Field", "Value"})
		table.Append([]string{"State", reg.State(db, label, now).String()})
		table.Append([]string{"Owner", reg.DomainOwner(db, label).Hex()})
		table.Append([]string{"Expires", formatTime(reg.DomainExpires(db, label))})
		table.Append([]string{"Node", node.Hex()})
		table.Append([]string{"Registry owner", rec.Owner.Hex()})
		table.Append([]string{"Resolver", rec.Resolver.Hex()})
		if rec.Resolver == params.PublicResolverAddress {
			table.Append([]string{"Address", resolver.Default().Addr(db, node).Hex()})
		}
		table.Append([]string{"Token", id.String()})
		if minted {
			table.Append([]string{"Token owner", tokenOwner.Hex()})
			if uri := nft.At(cfg.TokenRegistrar).TokenURI(db, id); uri != "" {
				table.Append([]string{"Token URI", uri})
			}
		}
		table.Render()
		return nil
	})
}

func listDomains(ctx *cli.Context) error {
	var owner common.Address
	if ctx.IsSet(utils.OwnerFlag.Name) {
		owner = utils.MustAddress(ctx, utils.OwnerFlag)
	}
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	index := pnsidx.NewIndex()
	pnsidx.NewIndexer(chain, index, params.RegistrarAddress).Sync()

	var now uint64
	chain.View(func(_ vm.StateDB, t uint64) error { now = t; return nil })
	records := index.Query(pnsidx.Filter{Owner: owner, Now: now, IncludeExpiry: ctx.Bool(allFlag.Name)})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Owner", "Expires", "Active", "Registered"})
	for _, r := range records {
		table.Append([]string{
			r.Name,
			r.Owner.Hex(),
			formatTime(r.Expires),
			strconv.FormatBool(r.Active(now)),
			strconv.FormatUint(r.RegisteredBlock, 10),
		})
	}
	table.Render()
	return nil
}
