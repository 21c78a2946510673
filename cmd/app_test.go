package cmd

import (
	"bufio"
	"flag"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/coachfolio/portfolio"
	"github.com/coachfolio/portfolio/catalog"
	"github.com/google/subcommands"
)

// useSession points the session flags to a new journal for the test.
func useSession(t *testing.T, cash string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "session.jsonl")
	oldFile, oldCash := *sessionFile, *startingCash
	*sessionFile, *startingCash = file, cash
	t.Cleanup(func() { *sessionFile, *startingCash = oldFile, oldCash })
	return file
}

func countLines(t *testing.T, file string) int {
	t.Helper()
	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	n := 0
	for s := bufio.NewScanner(f); s.Scan(); {
		n++
	}
	return n
}

func TestAppendOrder(t *testing.T) {
	file := useSession(t, "1000")

	if got := appendOrder(portfolio.NewBuy("KO", portfolio.Q(10), portfolio.USD(58))); got != subcommands.ExitSuccess {
		t.Fatalf("appendOrder(buy) = %v, want success", got)
	}
	if got, want := countLines(t, file), 2; got != want {
		t.Errorf("journal has %d lines, want %d (open + buy)", got, want)
	}

	// rejected orders are not journaled
	if got := appendOrder(portfolio.NewSell("KO", portfolio.Q(20), portfolio.USD(60))); got != subcommands.ExitFailure {
		t.Errorf("appendOrder(oversell) = %v, want failure", got)
	}
	if got, want := countLines(t, file), 2; got != want {
		t.Errorf("journal has %d lines after a rejection, want %d", got, want)
	}

	ledger, err := DecodeLedger()
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if got, want := ledger.Portfolio().Cash(), portfolio.USD(420); !got.Equal(want) {
		t.Errorf("cash = %v, want %v", got, want)
	}
}

func TestBuyCmd_CatalogPrice(t *testing.T) {
	useSession(t, "1000")

	c := &buyCmd{}
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse([]string{"-s", "aapl", "-q", "2"}); err != nil {
		t.Fatal(err)
	}
	if got := c.Execute(t.Context(), f); got != subcommands.ExitSuccess {
		t.Fatalf("buy = %v, want success", got)
	}

	ledger, err := DecodeLedger()
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	h, ok := ledger.Portfolio().Holding("AAPL")
	if !ok {
		t.Fatal("AAPL not held after buy")
	}
	if got, want := h.AvgCost, portfolio.USD(185.43); !got.Equal(want) {
		t.Errorf("AvgCost = %v, want the catalog price %v", got, want)
	}
	if got, want := ledger.Portfolio().Cash(), portfolio.USD(629.14); !got.Equal(want) {
		t.Errorf("cash = %v, want %v", got, want)
	}
}

func TestDecodeLedger_NewSession(t *testing.T) {
	file := useSession(t, "2500.50")
	ledger, err := DecodeLedger()
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if got, want := ledger.Portfolio().Cash(), portfolio.USD(2500.50); !got.Equal(want) {
		t.Errorf("cash = %v, want %v", got, want)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Errorf("DecodeLedger() created the journal, want it written on the first order only")
	}
}

func TestCompletion(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	global := flag.NewFlagSet("cfo", flag.ContinueOnError)
	global.String("session", "", "")

	root := Completion(global, Commands(), cat)
	if _, ok := root.Flags["session"]; !ok {
		t.Error("global flag -session is not completed")
	}
	for _, c := range Commands() {
		if _, ok := root.Sub[c.Name()]; !ok {
			t.Errorf("subcommand %q is not completed", c.Name())
		}
	}
	buy := root.Sub["buy"]
	for _, name := range []string{"s", "q", "p"} {
		if _, ok := buy.Flags[name]; !ok {
			t.Errorf("buy flag -%s is not completed", name)
		}
	}
	if got := buy.Flags["s"].Predict(""); !slices.Contains(got, "AAPL") {
		t.Errorf("buy -s predicts %v, want the catalog symbols", got)
	}
}
