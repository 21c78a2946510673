package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/coachfolio/portfolio"
	"github.com/google/subcommands"
)

// tradeFlags are the flags shared by buy and sell.
type tradeFlags struct {
	symbol   string
	quantity string
	price    string
}

func (c *tradeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Stock symbol")
	f.StringVar(&c.quantity, "q", "", "Number of shares")
	f.StringVar(&c.price, "p", "", "Price per share, the catalog price if missing")
}

// order parses the flags into an order on side.
func (c *tradeFlags) order(side portfolio.Side) (portfolio.Order, error) {
	var o portfolio.Order
	q, err := portfolio.ParseQuantity(c.quantity)
	if err != nil {
		return o, fmt.Errorf("invalid quantity %q: %w", c.quantity, err)
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return o, err
	}
	cur := ledger.Portfolio().Currency()

	var price portfolio.Money
	if c.price == "" {
		cat, err := OpenCatalog()
		if err != nil {
			return o, err
		}
		p, ok := cat.Quote(c.symbol)
		if !ok {
			return o, fmt.Errorf("no catalog price for %q, use -p", c.symbol)
		}
		price = p
	} else {
		price, err = portfolio.ParseMoney(c.price, cur)
		if err != nil {
			return o, fmt.Errorf("invalid price %q: %w", c.price, err)
		}
	}

	if side == portfolio.Buy {
		return portfolio.NewBuy(c.symbol, q, price), nil
	}
	return portfolio.NewSell(c.symbol, q, price), nil
}

func (c *tradeFlags) execute(f *flag.FlagSet, side portfolio.Side) subcommands.ExitStatus {
	if c.symbol == "" || c.quantity == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	o, err := c.order(side)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return appendOrder(o)
}

// --- Buy Command ---

type buyCmd struct{ tradeFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares of a stock with the session cash" }
func (*buyCmd) Usage() string {
	return `buy -s <symbol> -q <quantity> [-p <price>]

  Buys shares of a stock. The total cost is debited from the cash, the order
  is rejected if the cash is insufficient.
`
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(f, portfolio.Buy)
}

// --- Sell Command ---

type sellCmd struct{ tradeFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares of a held stock" }
func (*sellCmd) Usage() string {
	return `sell -s <symbol> -q <quantity> [-p <price>]

  Sells shares of a held stock. The proceeds are credited to the cash, the
  holding is closed when its last share is sold.
`
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(f, portfolio.Sell)
}
