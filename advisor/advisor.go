// Package advisor writes a personalized, educational analysis of a holding.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coachfolio/portfolio"
	"github.com/coachfolio/portfolio/catalog"
	"github.com/coachfolio/portfolio/finnhub"
)

// Generator answers a prompt given system instructions.
type Generator interface {
	Generate(ctx context.Context, instructions, prompt string) (string, error)
}

// Instructions frame every analysis.
const Instructions = `You are a patient investing coach for beginners using a paper trading
simulator. Explain in plain words how the position is doing and what the
recent news means for it. Teach one concept the learner can reuse (cost
basis, diversification, volatility...). Never recommend buying or selling,
the money is virtual and the goal is learning. Answer in markdown, under 200 words.`

// ErrNotHeld is returned when analyzing a symbol the portfolio does not hold.
var ErrNotHeld = errors.New("symbol not held")

// NewsFetcher returns the latest stories about a company.
type NewsFetcher interface {
	CompanyNews(ctx context.Context, symbol string, daysBack int) (finnhub.CompanyNews, error)
}

// Advisor builds analysis prompts from a valuation and the news catalog.
type Advisor struct {
	gen     Generator
	catalog *catalog.Catalog
	news    NewsFetcher
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithLiveNews adds the latest company stories to the prompts.
func WithLiveNews(f NewsFetcher) Option { return func(a *Advisor) { a.news = f } }

func New(gen Generator, c *catalog.Catalog, opts ...Option) *Advisor {
	a := &Advisor{gen: gen, catalog: c}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the analysis of symbol as held in v.
func (a *Advisor) Analyze(ctx context.Context, v portfolio.Valuation, symbol string) (string, error) {
	h, ok := v.Holding(symbol)
	if !ok {
		return "", fmt.Errorf("cannot analyze %s: %w", portfolio.NormalizeSymbol(symbol), ErrNotHeld)
	}
	var live []finnhub.Story
	if a.news != nil {
		// the catalog news are enough to analyze without the live ones.
		if news, err := a.news.CompanyNews(ctx, h.Symbol, finnhub.DefaultNewsDays); err == nil {
			live = news.Stories
		}
	}
	resp, err := a.gen.Generate(ctx, Instructions, a.Prompt(v, h, live...))
	if err != nil {
		return "", fmt.Errorf("cannot analyze %s: %w", h.Symbol, err)
	}
	return resp, nil
}

// Prompt describes holding h of valuation v, the catalog news mentioning it
// and the live stories.
func (a *Advisor) Prompt(v portfolio.Valuation, h portfolio.HoldingValuation, live ...finnhub.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Position in %s", h.Symbol)
	if s, ok := a.catalog.Stock(h.Symbol); ok {
		fmt.Fprintf(&b, " (%s, %s)", s.Name, s.Category)
	}
	fmt.Fprintln(&b, ":")
	fmt.Fprintf(&b, "- shares: %s\n", h.Shares)
	fmt.Fprintf(&b, "- average cost: %s\n", h.AvgCost)
	fmt.Fprintf(&b, "- current price: %s", h.MarkPrice)
	if h.Stale {
		fmt.Fprint(&b, " (last traded price, no live quote)")
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "- value: %s, gain/loss %s (%s)\n", h.CurrentValue, h.GainLoss.SignedString(), h.GainLossPercent.SignedString())
	fmt.Fprintf(&b, "- weight in the portfolio: %s of %s\n", h.AllocationPercent, v.TotalValue)

	if len(live) > 0 {
		fmt.Fprintln(&b, "\nLatest headlines:")
		for _, s := range live {
			fmt.Fprintf(&b, "- %s", s.Headline)
			if s.Source != "" {
				fmt.Fprintf(&b, " (%s)", s.Source)
			}
			if s.Summary != "" {
				fmt.Fprintf(&b, ": %s", s.Summary)
			}
			fmt.Fprintln(&b)
		}
	}

	news := a.catalog.News("", h.Symbol)
	if len(news) == 0 {
		if len(live) == 0 {
			fmt.Fprintln(&b, "\nNo recent news about this stock.")
		}
		return b.String()
	}
	fmt.Fprintln(&b, "\nRecent news:")
	for _, n := range news {
		fmt.Fprintf(&b, "- %s (%s)", n.Title, n.Category)
		for _, r := range n.Related {
			if r.Symbol == h.Symbol {
				fmt.Fprintf(&b, ", %s moved %s%%", r.Symbol, r.ChangePercent.StringFixed(2))
			}
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
