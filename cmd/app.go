// Package cmd implements the CLI application to practice trading on a paper portfolio.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/coachfolio/portfolio"
	"github.com/coachfolio/portfolio/catalog"
	"github.com/google/subcommands"
)

type group struct {
	name     string
	commands []subcommands.Command
}

var groups = []group{
	{"trading", []subcommands.Command{&buyCmd{}, &sellCmd{}, &holdingCmd{}, &ordersCmd{}, &analyzeCmd{}}},
	{"discover", []subcommands.Command{&stocksCmd{}, &newsCmd{}, &pathsCmd{}}},
	{"community", []subcommands.Command{&achievementsCmd{}, &leaderboardCmd{}}},
	{"server", []subcommands.Command{&serveCmd{}}},
}

// Commands returns every subcommand of the application.
func Commands() []subcommands.Command {
	var res []subcommands.Command
	for _, g := range groups {
		res = append(res, g.commands...)
	}
	return res
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range groups {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var sessionFile = flag.String("session", "session.jsonl", "Path to the session journal (JSONL format)")
var owner = flag.String("owner", "me", "Owner of a new session")
var startingCash = flag.String("cash", "100000", "Starting cash of a new session")
var currency = flag.String("currency", portfolio.DefaultCurrency, "Currency of a new session")
var catalogDir = flag.String("catalog", "", "Directory of catalog JSON files, the embedded catalog if empty")

// DecodeLedger replays the session journal. A missing journal is a new
// session, not yet written.
func DecodeLedger() (*portfolio.Ledger, error) {
	f, err := os.Open(*sessionFile)
	if errors.Is(err, fs.ErrNotExist) {
		cash, err := portfolio.ParseMoney(*startingCash, *currency)
		if err != nil {
			return nil, fmt.Errorf("invalid starting cash: %w", err)
		}
		return portfolio.Open(*owner, cash)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return portfolio.DecodeLedger(f)
}

// appendOrder applies o to the session and appends it to the journal.
// A rejected order is not written.
func appendOrder(o portfolio.Order) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session %q: %v\n", *sessionFile, err)
		return subcommands.ExitFailure
	}
	if err := ledger.Apply(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	filename := *sessionFile
	_, statErr := os.Stat(filename)
	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if errors.Is(statErr, fs.ErrNotExist) {
		if err := portfolio.EncodeOpening(f, ledger.Opening()); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to session file %q: %v\n", filename, err)
			return subcommands.ExitFailure
		}
	}
	if err := portfolio.EncodeOrder(f, o); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to session file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s, cash is now %s\n", o, ledger.Portfolio().Cash())
	return subcommands.ExitSuccess
}

// OpenCatalog returns the catalog of the -catalog flag.
func OpenCatalog() (*catalog.Catalog, error) {
	if *catalogDir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(*catalogDir)
}

// printMarkdown renders md for the terminal, or prints it raw if it cannot.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
