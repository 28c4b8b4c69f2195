package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tos-network/gpns/cmd/utils"
	"github.com/tos-network/gpns/core"
)

var (
	adminFlag = &cli.StringFlag{
		Name:  "admin",
		Usage: "Administrator of the deployment (overrides Genesis.Admin)",
	}
	initCommand = &cli.Command{
		Action:    initChain,
		Name:      "init",
		Usage:     "Deploy the PNS contracts into a new data directory",
		ArgsUsage: " ",
		Flags:     []cli.Flag{adminFlag},
		Description: `
The init command deploys the registry, resolver, token registrar, points
ledger, registrar and payment router described by the Genesis section of the
config file. It fails if the data directory already holds a chain.`,
	}
)

func initChain(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	if ctx.IsSet(adminFlag.Name) {
		cfg.Genesis.Admin = ctx.String(adminFlag.Name)
	}
	genesis, err := cfg.Genesis.toGenesis()
	if err != nil {
		utils.Fatalf("Invalid genesis: %v", err)
	}
	chain, db := openChain(ctx, genesis)
	defer closeChain(chain, db)

	if chain.Genesis() != genesis {
		utils.Fatalf("Data directory %s already initialized", cfg.Chain.DataDir)
	}
	head := chain.Head()
	fmt.Printf("Initialized chain in %s\n", cfg.Chain.DataDir)
	fmt.Printf("Root:   %s\n", head.Root.Hex())
	fmt.Printf("Block:  %d\n", head.Number)
	fmt.Printf("TLD:    %s\n", genesis.TLD)
	return nil
}

func printReceipt(r *core.Receipt) {
	fmt.Printf("Block %d at %d, state root %s, %d logs\n", r.Number, r.Time, r.Root.Hex(), len(r.Logs))
}
