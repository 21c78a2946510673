// Package catalog serves the read-only content of Coachfolio: sample stocks
// and their quotes, achievements, levels, learning paths, news and teams.
//
// The content is loaded once from JSON files and never modified afterwards,
// a *Catalog is safe for concurrent use.
package catalog

import (
	"cmp"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/coachfolio/portfolio"
	"github.com/shopspring/decimal"
)

// All matches every category.
const All = "All"

//go:embed data/*.json
var data embed.FS

// Catalog is the static content of the application.
type Catalog struct {
	stocks       []Stock
	bySymbol     map[string]Stock
	achievements []Achievement
	levels       []Level
	paths        []Path
	lessons      []Lesson
	news         []Article
	teams        []Team
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	sub, err := fs.Sub(data, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) { return defaultCatalog() }

// LoadDir loads a catalog from a directory holding the same JSON files as
// the embedded one.
func LoadDir(dir string) (*Catalog, error) { return Load(os.DirFS(dir)) }

// Load reads the catalog files from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{}
	files := []struct {
		name string
		v    any
	}{
		{"stocks.json", &c.stocks},
		{"achievements.json", &c.achievements},
		{"levels.json", &c.levels},
		{"paths.json", &c.paths},
		{"lessons.json", &c.lessons},
		{"news.json", &c.news},
		{"teams.json", &c.teams},
	}
	for _, f := range files {
		content, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
		if err := json.Unmarshal(content, f.v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f.name, err)
		}
	}

	c.bySymbol = make(map[string]Stock, len(c.stocks))
	for i, s := range c.stocks {
		s.Symbol = portfolio.NormalizeSymbol(s.Symbol)
		if s.Symbol == "" || !s.Price.IsPositive() {
			return nil, fmt.Errorf("stocks.json: invalid stock %q at %v", s.Symbol, s.Price)
		}
		if _, dup := c.bySymbol[s.Symbol]; dup {
			return nil, fmt.Errorf("stocks.json: duplicate symbol %q", s.Symbol)
		}
		c.stocks[i] = s
		c.bySymbol[s.Symbol] = s
	}
	for _, a := range c.achievements {
		if !knownMetric(a.Metric) {
			return nil, fmt.Errorf("achievements.json: %s has unknown metric %q", a.ID, a.Metric)
		}
	}
	slices.SortFunc(c.levels, func(a, b Level) int { return cmp.Compare(a.Points, b.Points) })
	return c, nil
}

// Stocks returns every stock in catalog order.
func (c *Catalog) Stocks() []Stock { return slices.Clone(c.stocks) }

// Stock returns the stock listed under symbol.
func (c *Catalog) Stock(symbol string) (Stock, bool) {
	s, ok := c.bySymbol[portfolio.NormalizeSymbol(symbol)]
	return s, ok
}

// Categories returns All followed by the stock categories in order of appearance.
func (c *Catalog) Categories() []string {
	res := []string{All}
	for _, s := range c.stocks {
		if !slices.Contains(res, s.Category) {
			res = append(res, s.Category)
		}
	}
	return res
}

// SearchStocks returns the stocks whose symbol or name contains query, ignoring
// case, in category. An empty category or All matches every stock.
func (c *Catalog) SearchStocks(query, category string) []Stock {
	query = strings.ToLower(strings.TrimSpace(query))
	var res []Stock
	for _, s := range c.stocks {
		if category != "" && category != All && !strings.EqualFold(s.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.Symbol), query) &&
			!strings.Contains(strings.ToLower(s.Name), query) {
			continue
		}
		res = append(res, s)
	}
	return res
}

// Quotes returns the catalog prices, the mock market of the application.
func (c *Catalog) Quotes() portfolio.Quotes {
	q := make(portfolio.Quotes, len(c.stocks))
	for _, s := range c.stocks {
		q.Set(s.Symbol, s.Quote())
	}
	return q
}

// Quote implements portfolio.QuoteSource.
func (c *Catalog) Quote(symbol string) (portfolio.Money, bool) {
	s, ok := c.Stock(symbol)
	if !ok {
		return portfolio.Money{}, false
	}
	return s.Quote(), true
}

// Sectors counts the distinct stock categories of the holdings of p.
// Symbols not in the catalog are not counted.
func (c *Catalog) Sectors(p *portfolio.Portfolio) int {
	seen := make(map[string]bool)
	for h := range p.Holdings() {
		if s, ok := c.Stock(h.Symbol); ok {
			seen[s.Category] = true
		}
	}
	return len(seen)
}

// Paths returns the learning paths.
func (c *Catalog) Paths() []Path { return slices.Clone(c.paths) }

// Path returns the learning path with id.
func (c *Catalog) Path(id string) (Path, bool) {
	i := slices.IndexFunc(c.paths, func(p Path) bool { return p.ID == id })
	if i < 0 {
		return Path{}, false
	}
	return c.paths[i], true
}

// Lessons returns the quick lessons.
func (c *Catalog) Lessons() []Lesson { return slices.Clone(c.lessons) }

// News returns the articles in category that mention symbol. Empty filters
// match everything, so does the All category.
func (c *Catalog) News(category, symbol string) []Article {
	var res []Article
	for _, a := range c.news {
		if category != "" && category != All && !strings.EqualFold(a.Category, category) {
			continue
		}
		if symbol != "" && !a.Mentions(symbol) {
			continue
		}
		res = append(res, a)
	}
	return res
}

// Teams returns every team.
func (c *Catalog) Teams() []Team { return slices.Clone(c.teams) }

// OpenTeams returns the teams looking for members.
func (c *Catalog) OpenTeams() []Team {
	var res []Team
	for _, t := range c.teams {
		if t.Open {
			res = append(res, t)
		}
	}
	return res
}

// Standing is the rank of a team in the leaderboard.
type Standing struct {
	Rank       int             `json:"rank"`
	Team       Team            `json:"team"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// Leaderboard ranks the teams having members by weekly return, then by total
// value, both descending.
func (c *Catalog) Leaderboard() []Standing {
	var res []Standing
	for _, t := range c.teams {
		if len(t.Members) == 0 {
			continue
		}
		res = append(res, Standing{Team: t, TotalValue: t.TotalValue()})
	}
	slices.SortStableFunc(res, func(a, b Standing) int {
		if d := b.Team.WeeklyReturn.Cmp(a.Team.WeeklyReturn); d != 0 {
			return d
		}
		return b.TotalValue.Cmp(a.TotalValue)
	})
	for i := range res {
		res[i].Rank = i + 1
	}
	return res
}
