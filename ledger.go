package portfolio

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// ApplyOrder executes an order against a portfolio.
//
// It returns the updated portfolio, or p itself together with an *OrderError
// when the order is rejected. p is never modified.
//
// A buy spends quantity x unitPrice of cash and recomputes the weighted
// average cost of the holding. A sell credits the cash, keeps the average cost
// and removes the holding when its last share is sold. Both record unitPrice
// as the last known price of the symbol.
func ApplyOrder(p *Portfolio, o Order) (*Portfolio, error) {
	if err := o.Validate(p.currency); err != nil {
		return p, err
	}
	o = o.in(p.currency)
	amount := o.Amount()
	h, held := p.holdings[o.Symbol]

	switch o.Side {
	case Buy:
		if amount.GreaterThan(p.cash) {
			return p, reject(InsufficientFunds, o, "cost is %v, cash balance is %v", amount, p.cash)
		}
		next := p.clone()
		next.cash = p.cash.Sub(amount)
		if held {
			next.holdings[o.Symbol] = h.buy(o.Quantity, amount, o.UnitPrice)
		} else {
			next.holdings[o.Symbol] = Holding{
				Symbol:         o.Symbol,
				Shares:         o.Quantity,
				AvgCost:        o.UnitPrice,
				LastKnownPrice: o.UnitPrice,
			}
		}
		return next, nil

	case Sell:
		if !held {
			return p, reject(NoSuchHolding, o, "%s is not in the portfolio", o.Symbol)
		}
		if o.Quantity.GreaterThan(h.Shares) {
			return p, reject(InsufficientShares, o, "position is only %v", h.Shares)
		}
		next := p.clone()
		next.cash = p.cash.Add(amount)
		h.Shares = h.Shares.Sub(o.Quantity)
		h.LastKnownPrice = o.UnitPrice
		if h.Shares.IsZero() {
			delete(next.holdings, o.Symbol)
		} else {
			next.holdings[o.Symbol] = h
		}
		return next, nil
	}
	// unreachable, Validate rejects other sides.
	return p, reject(InvalidOrder, o, "side must be buy or sell")
}

// Stats counts the orders accepted by a Ledger.
type Stats struct {
	Trades int `json:"trades"`
	Buys   int `json:"buys"`
	Sells  int `json:"sells"`
	// ProfitableSells counts sells above the average cost of the holding.
	ProfitableSells int `json:"profitableSells"`
	// Symbols counts the distinct symbols ever traded.
	Symbols int `json:"symbols"`
}

// Ledger is the session record of a portfolio: its opening state, the
// accepted orders in chronological order, and the resulting portfolio.
//
// A Ledger is not safe for concurrent use, callers serialize Apply per
// portfolio (see package session).
type Ledger struct {
	opening *Portfolio
	current *Portfolio
	orders  []Order
	stats   Stats
	traded  map[string]struct{}
}

// NewLedger creates a ledger opened on p.
func NewLedger(p *Portfolio) *Ledger {
	return &Ledger{
		opening: p,
		current: p,
		traded:  make(map[string]struct{}),
	}
}

// Open creates a ledger on a new portfolio.
func Open(ownerID string, startingCash Money) (*Ledger, error) {
	p, err := NewPortfolio(ownerID, startingCash)
	if err != nil {
		return nil, err
	}
	return NewLedger(p), nil
}

// Replay opens a ledger on opening and applies orders in sequence.
func Replay(opening *Portfolio, orders iter.Seq[Order]) (*Ledger, error) {
	l := NewLedger(opening)
	i := 0
	for o := range orders {
		i++
		if err := l.Apply(o); err != nil {
			return nil, fmt.Errorf("order #%d: %w", i, err)
		}
	}
	return l, nil
}

// Apply executes o on the current portfolio and records it.
// A rejected order leaves the ledger unchanged.
func (l *Ledger) Apply(o Order) error {
	o = o.in(l.current.currency)
	before, _ := l.current.Holding(o.Symbol)
	next, err := ApplyOrder(l.current, o)
	if err != nil {
		return err
	}
	l.current = next
	l.orders = append(l.orders, o)

	l.stats.Trades++
	switch o.Side {
	case Buy:
		l.stats.Buys++
	case Sell:
		l.stats.Sells++
		if o.UnitPrice.GreaterThan(before.AvgCost) {
			l.stats.ProfitableSells++
		}
	}
	if _, ok := l.traded[o.Symbol]; !ok {
		l.traded[o.Symbol] = struct{}{}
		l.stats.Symbols++
	}
	return nil
}

// Portfolio returns the current portfolio.
func (l *Ledger) Portfolio() *Portfolio { return l.current }

// Opening returns the portfolio the ledger was opened on.
func (l *Ledger) Opening() *Portfolio { return l.opening }

// Orders iterates over accepted orders in chronological order.
func (l *Ledger) Orders() iter.Seq[Order] { return slices.Values(l.orders) }

// Len returns the number of accepted orders.
func (l *Ledger) Len() int { return len(l.orders) }

// Stats returns the trading statistics of the ledger.
func (l *Ledger) Stats() Stats { return l.stats }

// Valuate values the current portfolio, see Valuate.
func (l *Ledger) Valuate(quotes QuoteSource) Valuation { return Valuate(l.current, quotes) }

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.orders = slices.Clone(l.orders)
	c.traded = maps.Clone(l.traded)
	return &c
}
