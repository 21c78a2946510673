package portfolio

// HoldingValuation is a holding marked to market.
type HoldingValuation struct {
	Symbol  string   `json:"symbol"`
	Shares  Quantity `json:"shares"`
	AvgCost Money    `json:"avgCost"`
	// MarkPrice is the quote used for the valuation.
	MarkPrice Money `json:"markPrice"`
	// Stale is true when no quote was available and MarkPrice is the last
	// known price of the holding.
	Stale             bool    `json:"stale"`
	CurrentValue      Money   `json:"currentValue"`
	CostBasis         Money   `json:"costBasis"`
	GainLoss          Money   `json:"gainLoss"`
	GainLossPercent   Percent `json:"gainLossPercent"`
	AllocationPercent Percent `json:"allocationPercent"`
}

// Valuation is the mark-to-market view of a portfolio.
type Valuation struct {
	OwnerID  string `json:"ownerId"`
	Currency string `json:"currency"`
	Cash     Money  `json:"cash"`
	// Holdings in symbol order.
	Holdings        []HoldingValuation `json:"holdings"`
	HoldingsValue   Money              `json:"holdingsValue"`
	CostBasis       Money              `json:"costBasis"`
	GainLoss        Money              `json:"gainLoss"`
	GainLossPercent Percent            `json:"gainLossPercent"`
	CashAllocation  Percent            `json:"cashAllocationPercent"`
	TotalValue      Money              `json:"totalValue"`
}

// Valuate marks every holding of p to market.
//
// The price of a holding is its quote when quotes has one, otherwise its last
// known price. Quotes in another currency than the portfolio are ignored.
// Percentages with a zero divisor are 0. Valuate never modifies p.
func Valuate(p *Portfolio, quotes QuoteSource) Valuation {
	if quotes == nil {
		quotes = NoQuotes
	}
	zero := M(0, p.currency)
	v := Valuation{
		OwnerID:       p.ownerID,
		Currency:      p.currency,
		Cash:          p.cash,
		Holdings:      make([]HoldingValuation, 0, len(p.holdings)),
		HoldingsValue: zero,
		CostBasis:     zero,
	}

	for h := range p.Holdings() {
		mark, ok := quotes.Quote(h.Symbol)
		mark = mark.in(p.currency)
		if ok && mark.cur != p.currency {
			ok = false
		}
		if !ok {
			mark = h.LastKnownPrice.in(p.currency)
		}
		hv := HoldingValuation{
			Symbol:       h.Symbol,
			Shares:       h.Shares,
			AvgCost:      h.AvgCost.in(p.currency),
			MarkPrice:    mark,
			Stale:        !ok,
			CurrentValue: h.MarketValue(mark),
			CostBasis:    h.CostBasis().in(p.currency),
		}
		hv.GainLoss = hv.CurrentValue.Sub(hv.CostBasis)
		hv.GainLossPercent = hv.GainLoss.Ratio(hv.CostBasis)

		v.HoldingsValue = v.HoldingsValue.Add(hv.CurrentValue)
		v.CostBasis = v.CostBasis.Add(hv.CostBasis)
		v.Holdings = append(v.Holdings, hv)
	}

	v.TotalValue = p.cash.Add(v.HoldingsValue)
	v.GainLoss = v.HoldingsValue.Sub(v.CostBasis)
	v.GainLossPercent = v.GainLoss.Ratio(v.CostBasis)
	v.CashAllocation = p.cash.Ratio(v.TotalValue)
	for i := range v.Holdings {
		v.Holdings[i].AllocationPercent = v.Holdings[i].CurrentValue.Ratio(v.TotalValue)
	}
	return v
}

// Holding returns the valuation of symbol, if held.
func (v Valuation) Holding(symbol string) (HoldingValuation, bool) {
	symbol = NormalizeSymbol(symbol)
	for _, h := range v.Holdings {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return HoldingValuation{}, false
}
