package catalog

import (
	"github.com/coachfolio/portfolio"
	"github.com/shopspring/decimal"
)

// Metrics an achievement can track.
const (
	MetricTrades           = "trades"
	MetricProfitableTrades = "profitable_trades"
	MetricSectors          = "sectors"
	MetricPortfolioValue   = "portfolio_value"
	MetricModules          = "modules"
	MetricPaths            = "paths"
	MetricTeams            = "teams"
	MetricWeeklyWins       = "weekly_wins"
	MetricShares           = "shares"
	MetricDaysHeld         = "days_held"
	MetricEarlyAdopter     = "early_adopter"
)

func knownMetric(m string) bool {
	switch m {
	case MetricTrades, MetricProfitableTrades, MetricSectors, MetricPortfolioValue,
		MetricModules, MetricPaths, MetricTeams, MetricWeeklyWins, MetricShares,
		MetricDaysHeld, MetricEarlyAdopter:
		return true
	}
	return false
}

// Stats are the user activity figures achievements are measured against.
//
// Trading figures come from the session ledger, the others are provided by
// the caller.
type Stats struct {
	Trades           int             `json:"trades"`
	ProfitableTrades int             `json:"profitableTrades"`
	Sectors          int             `json:"sectors"`
	PortfolioValue   decimal.Decimal `json:"portfolioValue"`
	Modules          int             `json:"modules"`
	Paths            int             `json:"paths"`
	Teams            int             `json:"teams"`
	WeeklyWins       int             `json:"weeklyWins"`
	Shares           int             `json:"shares"`
	DaysHeld         int             `json:"daysHeld"`
	EarlyAdopter     bool            `json:"earlyAdopter"`
}

// StatsOf fills the trading figures of Stats from a session ledger valued with quotes.
func (c *Catalog) StatsOf(l *portfolio.Ledger, quotes portfolio.QuoteSource) Stats {
	ls := l.Stats()
	v := l.Valuate(quotes)
	return Stats{
		Trades:           ls.Trades,
		ProfitableTrades: ls.ProfitableSells,
		Sectors:          c.Sectors(l.Portfolio()),
		PortfolioValue:   v.TotalValue.Decimal(),
	}
}

func (s Stats) value(metric string) decimal.Decimal {
	switch metric {
	case MetricTrades:
		return decimal.NewFromInt(int64(s.Trades))
	case MetricProfitableTrades:
		return decimal.NewFromInt(int64(s.ProfitableTrades))
	case MetricSectors:
		return decimal.NewFromInt(int64(s.Sectors))
	case MetricPortfolioValue:
		return s.PortfolioValue
	case MetricModules:
		return decimal.NewFromInt(int64(s.Modules))
	case MetricPaths:
		return decimal.NewFromInt(int64(s.Paths))
	case MetricTeams:
		return decimal.NewFromInt(int64(s.Teams))
	case MetricWeeklyWins:
		return decimal.NewFromInt(int64(s.WeeklyWins))
	case MetricShares:
		return decimal.NewFromInt(int64(s.Shares))
	case MetricDaysHeld:
		return decimal.NewFromInt(int64(s.DaysHeld))
	case MetricEarlyAdopter:
		if s.EarlyAdopter {
			return decimal.NewFromInt(1)
		}
	}
	return decimal.Zero
}

// Progress is the state of an achievement for a user.
type Progress struct {
	Achievement Achievement     `json:"achievement"`
	Value       decimal.Decimal `json:"progress"` // clamped to the target
	Unlocked    bool            `json:"unlocked"`
}

// Progress measures a against s.
func (a Achievement) Progress(s Stats) Progress {
	v := s.value(a.Metric)
	if v.GreaterThan(a.Target) {
		v = a.Target
	}
	return Progress{Achievement: a, Value: v, Unlocked: v.GreaterThanOrEqual(a.Target)}
}

// Achievements returns the achievements of category, or all of them when
// category is empty or All.
func (c *Catalog) Achievements(category string) []Achievement {
	var res []Achievement
	for _, a := range c.achievements {
		if category == "" || category == All || a.Category == category {
			res = append(res, a)
		}
	}
	return res
}

// Board is the achievements page of a user.
type Board struct {
	Progress []Progress `json:"achievements"`
	Points   int        `json:"points"`
	Unlocked int        `json:"unlocked"`
	Level    Level      `json:"level"`
	Next     *Level     `json:"next,omitempty"`
}

// Board measures every achievement against s and ranks the points earned.
func (c *Catalog) Board(s Stats) Board {
	var b Board
	for _, a := range c.achievements {
		p := a.Progress(s)
		if p.Unlocked {
			b.Points += a.Points
			b.Unlocked++
		}
		b.Progress = append(b.Progress, p)
	}
	b.Level, b.Next = c.Level(b.Points)
	return b
}

// Level returns the highest level reached with points, and the next one if any.
func (c *Catalog) Level(points int) (Level, *Level) {
	var current Level
	for i, l := range c.levels {
		if l.Points > points {
			next := c.levels[i]
			return current, &next
		}
		current = l
	}
	return current, nil
}
