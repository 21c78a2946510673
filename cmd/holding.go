package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/coachfolio/portfolio"
	"github.com/coachfolio/portfolio/catalog"
	"github.com/coachfolio/portfolio/config"
	"github.com/coachfolio/portfolio/finnhub"
	"github.com/coachfolio/portfolio/renderer"
	"github.com/google/subcommands"
)

// liveClient returns a Finnhub client configured by the environment.
func liveClient() (*finnhub.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.FinnhubAPIKey == "" {
		return nil, errors.New("FINNHUB_API_KEY is not set")
	}
	return finnhub.New(cfg.FinnhubAPIKey, cfg.QuoteTTL, finnhub.WithBaseURL(cfg.FinnhubURL))
}

// sessionQuotes returns the prices to value ledger: Finnhub quotes first if
// live, then the catalog prices.
func sessionQuotes(ctx context.Context, ledger *portfolio.Ledger, cat *catalog.Catalog, live bool) portfolio.QuoteSource {
	chain := portfolio.QuoteChain{}
	symbols := ledger.Portfolio().Symbols()
	if live && len(symbols) > 0 {
		client, err := liveClient()
		if err != nil {
			log.Printf("warning, no live quotes: %v", err)
			return append(chain, cat)
		}
		defer client.Close()
		q, err := client.Quotes(ctx, symbols...)
		if err != nil {
			log.Printf("warning, some live quotes are missing: %v", err)
		}
		chain = append(chain, q)
	}
	return append(chain, cat)
}

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	live bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the session portfolio marked to market" }
func (*holdingCmd) Usage() string {
	return `holding [-live]

  Displays the cash and the holdings of the session, valued at the catalog
  prices, or at the Finnhub prices with -live. Holdings without a price are
  valued at their last traded price and marked with a '*'.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.live, "live", false, "fetch live prices from Finnhub (requires FINNHUB_API_KEY)")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session %q: %v\n", *sessionFile, err)
		return subcommands.ExitFailure
	}
	cat, err := OpenCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}

	v := ledger.Valuate(sessionQuotes(ctx, ledger, cat, c.live))
	printMarkdown(renderer.RenderValuation(v))
	return subcommands.ExitSuccess
}

// ordersCmd displays the session journal.
type ordersCmd struct{}

func (*ordersCmd) Name() string     { return "orders" }
func (*ordersCmd) Synopsis() string { return "display the orders of the session" }
func (*ordersCmd) Usage() string {
	return `orders

  Displays every accepted order of the session with the cash after it.
`
}

func (*ordersCmd) SetFlags(*flag.FlagSet) {}

func (*ordersCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session %q: %v\n", *sessionFile, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderOrders(ledger))
	return subcommands.ExitSuccess
}
