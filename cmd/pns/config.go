package main

import (
	"bufio"
	"errors"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/gpns/cmd/utils"
	"github.com/tos-network/gpns/core"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "",
	Flags:       []cli.Flag{utils.ConfigFileFlag, utils.DataDirFlag, utils.CacheFlag},
	Description: `The dumpconfig command shows configuration values.`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type chainConfig struct {
	DataDir string
	Cache   int
}

type priceConfig struct {
	Price3      string
	Price4To5   string
	Price6To9   string
	Price10Plus string
}

type allocConfig struct {
	Address string
	Balance string
}

type tokenConfig struct {
	Address string
	Name    string
	Symbol  string
	Supply  string
	Holder  string `toml:",omitempty"`
}

type genesisConfig struct {
	Admin        string
	TLD          string
	FeeCollector string `toml:",omitempty"`
	FeeBPS       uint64
	Points       bool
	Prices       priceConfig
	Alloc        []allocConfig `toml:",omitempty"`
	Tokens       []tokenConfig `toml:",omitempty"`
}

type pnsConfig struct {
	Chain   chainConfig
	Genesis genesisConfig
}

func defaultConfig() pnsConfig {
	return pnsConfig{
		Chain: chainConfig{DataDir: utils.DataDirFlag.Value, Cache: utils.CacheFlag.Value},
		Genesis: genesisConfig{
			TLD:    params.DefaultTLD,
			FeeBPS: 100,
			Points: true,
			Prices: priceConfig{
				Price3:      fmt.Sprint(params.DefaultPrice3Char),
				Price4To5:   fmt.Sprint(params.DefaultPrice4To5Char),
				Price6To9:   fmt.Sprint(params.DefaultPrice6To9Char),
				Price10Plus: fmt.Sprint(params.DefaultPrice10Plus),
			},
		},
	}
}

func loadConfig(file string, cfg *pnsConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the config file, if any, and applies flag overrides.
func makeConfig(ctx *cli.Context) pnsConfig {
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	if ctx.IsSet(utils.DataDirFlag.Name) {
		cfg.Chain.DataDir = ctx.String(utils.DataDirFlag.Name)
	}
	if ctx.IsSet(utils.CacheFlag.Name) {
		cfg.Chain.Cache = ctx.Int(utils.CacheFlag.Name)
	}
	return cfg
}

func parseOptionalAddress(s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	return utils.ParseAddress(s)
}

// parsePrice leaves an empty tier nil so the default applies.
func parsePrice(s, field string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := utils.ParseAmount(s)
	if err != nil {
		return nil, fmt.Errorf("Genesis.Prices.%s: %w", field, err)
	}
	return v, nil
}

// toGenesis converts the genesis section into a deployment.
func (g genesisConfig) toGenesis() (*core.Genesis, error) {
	admin, err := utils.ParseAddress(g.Admin)
	if err != nil {
		return nil, fmt.Errorf("Genesis.Admin: %w", err)
	}
	gen := core.DefaultGenesis(admin)
	gen.TLD = g.TLD
	gen.FeeBPS = g.FeeBPS
	gen.Points = g.Points
	if g.FeeCollector != "" {
		if gen.FeeCollector, err = utils.ParseAddress(g.FeeCollector); err != nil {
			return nil, fmt.Errorf("Genesis.FeeCollector: %w", err)
		}
	}
	var p sysaction.Prices
	if p.Price3, err = parsePrice(g.Prices.Price3, "Price3"); err != nil {
		return nil, err
	}
	if p.Price4To5, err = parsePrice(g.Prices.Price4To5, "Price4To5"); err != nil {
		return nil, err
	}
	if p.Price6To9, err = parsePrice(g.Prices.Price6To9, "Price6To9"); err != nil {
		return nil, err
	}
	if p.Price10Plus, err = parsePrice(g.Prices.Price10Plus, "Price10Plus"); err != nil {
		return nil, err
	}
	gen.Prices = p

	if len(g.Alloc) > 0 {
		gen.Alloc = make(map[common.Address]*big.Int, len(g.Alloc))
	}
	for i, a := range g.Alloc {
		addr, err := utils.ParseAddress(a.Address)
		if err != nil {
			return nil, fmt.Errorf("Genesis.Alloc[%d]: %w", i, err)
		}
		bal, err := utils.ParseAmount(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("Genesis.Alloc[%d]: %w", i, err)
		}
		gen.Alloc[addr] = bal
	}
	for i, t := range g.Tokens {
		addr, err := utils.ParseAddress(t.Address)
		if err != nil {
			return nil, fmt.Errorf("Genesis.Tokens[%d]: %w", i, err)
		}
		supply, err := utils.ParseAmount(t.Supply)
		if err != nil {
			return nil, fmt.Errorf("Genesis.Tokens[%d]: %w", i, err)
		}
		holder, err := parseOptionalAddress(t.Holder)
		if err != nil {
			return nil, fmt.Errorf("Genesis.Tokens[%d]: %w", i, err)
		}
		gen.Tokens = append(gen.Tokens, core.GenesisToken{
			Address: addr, Name: t.Name, Symbol: t.Symbol, Supply: supply, Holder: holder,
		})
	}
	return gen, nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	return nil
}
