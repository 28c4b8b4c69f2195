package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/urfave/cli/v2"

	"github.com/tos-network/gpns/cmd/utils"
	"github.com/tos-network/gpns/core"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/router"
	"github.com/tos-network/gpns/sysaction"
)

var (
	approveCommand = &cli.Command{
		Action:    approveRouter,
		Name:      "approve",
		Usage:     "Allow the payment router to spend tokens of the sender",
		ArgsUsage: "<amount>",
		Flags:     []cli.Flag{utils.FromFlag, utils.TokenFlag},
	}
	payCommand = &cli.Command{
		Action:    pay,
		Name:      "pay",
		Usage:     "Pay a name or an address through the payment router",
		ArgsUsage: "<name|address>",
		Flags:     []cli.Flag{utils.FromFlag, utils.ValueFlag, utils.TokenFlag},
		Description: `
Pays --value to the payout address of a name, or directly to a hex address.
With --token the payment is made in that token, which the router must have
been approved to spend.`,
	}
	balanceCommand = &cli.Command{
		Action:    showBalance,
		Name:      "balance",
		Usage:     "Print the native or token balance of an address",
		ArgsUsage: "<address>",
		Flags:     []cli.Flag{utils.TokenFlag},
	}
)

func mustValue(ctx *cli.Context) *big.Int {
	s := ctx.String(utils.ValueFlag.Name)
	if s == "" {
		utils.Fatalf("Missing --%s", utils.ValueFlag.Name)
	}
	v, err := utils.ParseAmount(s)
	if err != nil {
		utils.Fatalf("Invalid --%s: %v", utils.ValueFlag.Name, err)
	}
	return v
}

func approveRouter(ctx *cli.Context) error {
	amount, err := utils.ParseAmount(firstArg(ctx, "amount"))
	if err != nil {
		return err
	}
	from := utils.MustAddress(ctx, utils.FromFlag)
	token := utils.MustAddress(ctx, utils.TokenFlag)
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	r, err := chain.Act(from, token, nil, sysaction.ActionTokenApprove, sysaction.TokenApprovePayload{
		Spender: params.PaymentRouterAddress, Amount: amount,
	})
	if err != nil {
		return err
	}
	printReceipt(r)
	return nil
}

func pay(ctx *cli.Context) error {
	target := firstArg(ctx, "name or address")
	from := utils.MustAddress(ctx, utils.FromFlag)
	amount := mustValue(ctx)
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	var (
		r   *core.Receipt
		err error
	)
	direct := common.IsHexAddress(target)
	to := params.PaymentRouterAddress
	if ctx.IsSet(utils.TokenFlag.Name) {
		token := utils.MustAddress(ctx, utils.TokenFlag)
		if direct {
			r, err = chain.Act(from, to, nil, sysaction.ActionPayDirectToken, sysaction.PayDirectTokenPayload{
				Token: token, Recipient: common.HexToAddress(target), Amount: amount,
			})
		} else {
			r, err = chain.Act(from, to, nil, sysaction.ActionPayNameToken, sysaction.PayNameTokenPayload{
				Token: token, Name: target, Amount: amount,
			})
		}
	} else if direct {
		r, err = chain.Act(from, to, amount, sysaction.ActionPayDirect, sysaction.PayDirectPayload{
			Recipient: common.HexToAddress(target),
		})
	} else {
		r, err = chain.Act(from, to, amount, sysaction.ActionPayName, sysaction.PayNamePayload{Name: target})
	}
	if err != nil {
		return err
	}
	printReceipt(r)
	for _, l := range r.Logs {
		if l.Address != to || len(l.Topics) == 0 {
			continue
		}
		switch l.Topics[0] {
		case sysaction.EventID(router.EventPaymentSent):
			var ev router.PaymentSentEvent
			if sysaction.DecodeEvent(l, &ev) == nil {
				fmt.Printf("Paid %v to %s, fee %v\n", ev.Amount, ev.To.Hex(), ev.Fee)
			}
		case sysaction.EventID(router.EventTokenPaymentSent):
			var ev router.TokenPaymentSentEvent
			if sysaction.DecodeEvent(l, &ev) == nil {
				fmt.Printf("Paid %v of %s to %s, fee %v\n", ev.Amount, ev.Token.Hex(), ev.To.Hex(), ev.Fee)
			}
		}
	}
	return nil
}

func showBalance(ctx *cli.Context) error {
	addr, err := utils.ParseAddress(firstArg(ctx, "address"))
	if err != nil {
		return err
	}
	chain, db := openChain(ctx, nil)
	defer closeChain(chain, db)

	return chain.View(func(db vm.StateDB, _ uint64) error {
		if !ctx.IsSet(utils.TokenFlag.Name) {
			fmt.Println(db.GetBalance(addr))
			return nil
		}
		token := utils.MustAddress(ctx, utils.TokenFlag)
		tok, ok := chain.Host().Token(token)
		if !ok {
			return fmt.Errorf("unknown token %s", token.Hex())
		}
		fmt.Println(tok.BalanceOf(db, addr))
		return nil
	})
}
