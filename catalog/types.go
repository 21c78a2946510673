package catalog

import (
	"github.com/coachfolio/portfolio"
	"github.com/shopspring/decimal"
)

// Currency of every price in the catalog.
const Currency = "USD"

// Stock is a sample listed company with its mock market data.
type Stock struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Category      string          `json:"category"`
}

// Quote returns the stock price as Money.
func (s Stock) Quote() portfolio.Money { return portfolio.M(s.Price, Currency) }

// Achievement is a badge unlocked when a metric reaches a target.
type Achievement struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Rarity      string          `json:"rarity"`
	Points      int             `json:"points"`
	Metric      string          `json:"metric"`
	Target      decimal.Decimal `json:"target"`
}

// Level is a rank reached with achievement points.
type Level struct {
	Points int    `json:"points"`
	Title  string `json:"title"`
}

// Module is one lesson of a learning path.
type Module struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// Path is a learning path.
type Path struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Duration    string   `json:"duration"`
	Modules     []Module `json:"modules"`
}

// Lesson is a short standalone lesson.
type Lesson struct {
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// RelatedStock is a stock moved by a news article.
type RelatedStock struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Type          string          `json:"type"` // winner or loser
}

// Article is a news item of the discovery feed.
type Article struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Author   string         `json:"author"`
	Category string         `json:"category"`
	ReadTime string         `json:"readTime"`
	Related  []RelatedStock `json:"related"`
}

// Mentions reports whether symbol is related to the article.
func (a Article) Mentions(symbol string) bool {
	symbol = portfolio.NormalizeSymbol(symbol)
	for _, r := range a.Related {
		if r.Symbol == symbol {
			return true
		}
	}
	return false
}

// Member is a team member with the performance of their portfolio.
type Member struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
	TotalReturn    decimal.Decimal `json:"totalReturn"`
}

// Team is a group competing on weekly returns.
type Team struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Open         bool            `json:"open,omitempty"`
	WeeklyReturn decimal.Decimal `json:"weeklyReturn"`
	Members      []Member        `json:"members"`
}

// TotalValue sums the portfolio values of the members.
func (t Team) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, m := range t.Members {
		total = total.Add(m.PortfolioValue)
	}
	return total
}
