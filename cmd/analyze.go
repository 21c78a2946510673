package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/coachfolio/portfolio/advisor"
	"github.com/google/subcommands"
)

type analyzeCmd struct {
	symbol string
	model  string
	live   bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "ask Gemini to explain a holding of the session" }
func (*analyzeCmd) Usage() string {
	return `analyze -s <symbol> [-model <model>] [-live]

  Writes an educational analysis of a holding from its performance and the
  related news. Requires GEMINI_API_KEY.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Held stock symbol")
	f.StringVar(&c.model, "model", advisor.DefaultModel, "Gemini model")
	f.BoolVar(&c.live, "live", false, "fetch live prices and news from Finnhub (requires FINNHUB_API_KEY)")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
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

	gemini, err := advisor.NewGemini(ctx, c.model)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	v := ledger.Valuate(sessionQuotes(ctx, ledger, cat, c.live))
	var opts []advisor.Option
	if c.live {
		client, err := liveClient()
		if err != nil {
			log.Printf("warning, no live news: %v", err)
		} else {
			defer client.Close()
			opts = append(opts, advisor.WithLiveNews(client))
		}
	}
	analysis, err := advisor.New(gemini, cat, opts...).Analyze(ctx, v, c.symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(analysis)
	return subcommands.ExitSuccess
}
