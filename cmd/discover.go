package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/coachfolio/portfolio/catalog"
	"github.com/coachfolio/portfolio/finnhub"
	"github.com/coachfolio/portfolio/renderer"
	"github.com/google/subcommands"
)

// --- Stocks Command ---

type stocksCmd struct {
	query    string
	category string
}

func (*stocksCmd) Name() string     { return "stocks" }
func (*stocksCmd) Synopsis() string { return "search the stocks available for trading" }
func (*stocksCmd) Usage() string {
	return `stocks [-q <query>] [-c <category>]

  Lists the stocks whose symbol or name contains the query, in a category.
`
}

func (c *stocksCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Search in symbols and names, case insensitive")
	f.StringVar(&c.category, "c", catalog.All, "Stock category")
}

func (c *stocksCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cat, err := OpenCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderStocks(cat.SearchStocks(c.query, c.category)))
	return subcommands.ExitSuccess
}

// --- News Command ---

type newsCmd struct {
	category string
	symbol   string
	live     bool
	days     int
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "read the market news" }
func (*newsCmd) Usage() string {
	return `news [-c <category>] [-s <symbol>] [-live [-days <n>]]

  Lists the news of a category, or about a stock. With -live, fetches the
  latest stories about the stock from Finnhub (requires FINNHUB_API_KEY).
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", catalog.All, "News category")
	f.StringVar(&c.symbol, "s", "", "Only the news moving this stock")
	f.BoolVar(&c.live, "live", false, "fetch the latest stories about -s from Finnhub")
	f.IntVar(&c.days, "days", finnhub.DefaultNewsDays, "days of live stories")
}

func (c *newsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.live {
		if c.symbol == "" {
			fmt.Fprintln(os.Stderr, "Error: -live requires -s")
			return subcommands.ExitUsageError
		}
		client, err := liveClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer client.Close()
		news, err := client.CompanyNews(ctx, c.symbol, c.days)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderCompanyNews(news))
		return subcommands.ExitSuccess
	}

	cat, err := OpenCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderNews(cat.News(c.category, c.symbol)))
	return subcommands.ExitSuccess
}

// --- Paths Command ---

type pathsCmd struct {
	id string
}

func (*pathsCmd) Name() string     { return "paths" }
func (*pathsCmd) Synopsis() string { return "list the learning paths" }
func (*pathsCmd) Usage() string {
	return `paths [-id <path>]

  Lists the learning paths and their modules.
`
}

func (c *pathsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Only this learning path")
}

func (c *pathsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cat, err := OpenCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	paths := cat.Paths()
	if c.id != "" {
		p, ok := cat.Path(c.id)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown learning path %q\n", c.id)
			return subcommands.ExitUsageError
		}
		paths = []catalog.Path{p}
	}
	printMarkdown(renderer.RenderPaths(paths))
	return subcommands.ExitSuccess
}

// --- Achievements Command ---

type achievementsCmd struct{}

func (*achievementsCmd) Name() string     { return "achievements" }
func (*achievementsCmd) Synopsis() string { return "display the achievements earned by the session" }
func (*achievementsCmd) Usage() string {
	return `achievements

  Displays the progress of every achievement and the level reached.
`
}

func (*achievementsCmd) SetFlags(*flag.FlagSet) {}

func (*achievementsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	stats := cat.StatsOf(ledger, sessionQuotes(ctx, ledger, cat, false))
	printMarkdown(renderer.RenderAchievements(cat.Board(stats)))
	return subcommands.ExitSuccess
}

// --- Leaderboard Command ---

type leaderboardCmd struct{}

func (*leaderboardCmd) Name() string     { return "leaderboard" }
func (*leaderboardCmd) Synopsis() string { return "display the team rankings of the week" }
func (*leaderboardCmd) Usage() string {
	return `leaderboard

  Ranks the teams by weekly return, then by total value.
`
}

func (*leaderboardCmd) SetFlags(*flag.FlagSet) {}

func (*leaderboardCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cat, err := OpenCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderLeaderboard(cat.Leaderboard()))
	return subcommands.ExitSuccess
}
