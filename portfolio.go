package portfolio

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
)

// DefaultStartingCash is the cash of a new session portfolio.
var DefaultStartingCash = M(100000, DefaultCurrency)

// Portfolio is the cash balance and the holdings of one owner.
//
// A Portfolio is immutable once built: ApplyOrder returns a new value and
// leaves its input untouched, so a *Portfolio can be shared between readers.
type Portfolio struct {
	ownerID  string
	currency string
	cash     Money
	holdings map[string]Holding // index holdings by symbol
}

// NewPortfolio creates a portfolio with startingCash and no holdings.
//
// The portfolio currency is the one of startingCash, DefaultCurrency if it has none.
func NewPortfolio(ownerID string, startingCash Money) (*Portfolio, error) {
	if startingCash.IsNegative() {
		return nil, fmt.Errorf("starting cash cannot be negative: %v", startingCash)
	}
	currency := startingCash.Currency()
	if currency == "" {
		currency = DefaultCurrency
	}
	startingCash.cur = currency
	return &Portfolio{
		ownerID:  ownerID,
		currency: currency,
		cash:     startingCash,
		holdings: make(map[string]Holding),
	}, nil
}

func (p *Portfolio) OwnerID() string  { return p.ownerID }
func (p *Portfolio) Currency() string { return p.currency }
func (p *Portfolio) Cash() Money      { return p.cash }
func (p *Portfolio) Len() int         { return len(p.holdings) }

// Holding returns the holding of symbol, if any.
func (p *Portfolio) Holding(symbol string) (Holding, bool) {
	h, ok := p.holdings[NormalizeSymbol(symbol)]
	return h, ok
}

// Symbols returns the held symbols in alphabetical order.
func (p *Portfolio) Symbols() []string {
	return slices.Sorted(maps.Keys(p.holdings))
}

// Holdings iterates over holdings in symbol order.
func (p *Portfolio) Holdings() iter.Seq[Holding] {
	return func(yield func(Holding) bool) {
		for _, s := range p.Symbols() {
			if !yield(p.holdings[s]) {
				return
			}
		}
	}
}

// TotalValue returns cash plus the holdings at their last known price.
func (p *Portfolio) TotalValue() Money {
	return Valuate(p, NoQuotes).TotalValue
}

func (p *Portfolio) clone() *Portfolio {
	c := *p
	c.holdings = maps.Clone(p.holdings)
	if c.holdings == nil {
		c.holdings = make(map[string]Holding)
	}
	return &c
}

// MarshalJSON writes the portfolio state with its holdings in symbol order.
func (p *Portfolio) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OwnerID    string    `json:"ownerId"`
		Currency   string    `json:"currency"`
		Cash       Money     `json:"cash"`
		Holdings   []Holding `json:"holdings"`
		TotalValue Money     `json:"totalValue"`
	}{
		OwnerID:    p.ownerID,
		Currency:   p.currency,
		Cash:       p.cash,
		Holdings:   append([]Holding{}, slices.Collect(p.Holdings())...),
		TotalValue: p.TotalValue(),
	})
}
