// pns is the command-line interface to a local PNS chain.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/gpns/cmd/utils"
	"github.com/tos-network/gpns/core"
	"github.com/tos-network/gpns/internal/flags"
)

const clientIdentifier = "pns"

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app = flags.NewApp(gitCommit, gitDate, "the PNS naming and payments command line interface")

func init() {
	app.Flags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.DataDirFlag,
		utils.CacheFlag,
		utils.TimeFlag,
		utils.VerbosityFlag,
	}
	app.Commands = []*cli.Command{
		initCommand,
		dumpConfigCommand,
		namehashCommand,
		priceCommand,
		registerCommand,
		renewCommand,
		transferCommand,
		setAddrCommand,
		resolveCommand,
		infoCommand,
		domainsCommand,
		approveCommand,
		payCommand,
		balanceCommand,
		versionCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		utils.SetupLogging(ctx)
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openChain opens the chain in the configured data directory. genesis is
// only used when the directory holds no chain yet.
func openChain(ctx *cli.Context, genesis *core.Genesis) (*core.Chain, ethdb.Database) {
	cfg := makeConfig(ctx)
	db, err := utils.OpenDatabase(cfg.Chain.DataDir, cfg.Chain.Cache, false)
	if err != nil {
		utils.Fatalf("Failed to open database: %v", err)
	}
	clock := core.WallClock
	if ctx.IsSet(utils.TimeFlag.Name) {
		ts := ctx.Uint64(utils.TimeFlag.Name)
		clock = func() uint64 { return ts }
	}
	chain, err := core.OpenChain(db, genesis, clock)
	if err != nil {
		db.Close()
		if err == core.ErrNoGenesis {
			utils.Fatalf("No chain in %s, run '%s init' first", cfg.Chain.DataDir, clientIdentifier)
		}
		utils.Fatalf("Failed to open chain: %v", err)
	}
	return chain, db
}

func closeChain(chain *core.Chain, db ethdb.Database) {
	chain.Close()
	db.Close()
}
