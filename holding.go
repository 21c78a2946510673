package portfolio

// Holding is the position of a portfolio in one symbol.
//
// A holding always has a positive number of shares: selling the last share
// removes it from the portfolio.
type Holding struct {
	Symbol string   `json:"symbol"`
	Shares Quantity `json:"shares"`
	// AvgCost is the weighted average purchase price of all the buy lots.
	AvgCost Money `json:"avgCost"`
	// LastKnownPrice is the price of the latest order on this symbol.
	LastKnownPrice Money `json:"lastKnownPrice"`
}

// CostBasis returns shares x average cost.
func (h Holding) CostBasis() Money { return h.AvgCost.Mul(h.Shares) }

// MarketValue returns shares x price.
func (h Holding) MarketValue(price Money) Money { return price.Mul(h.Shares) }

// buy returns the holding after buying quantity shares for cost.
func (h Holding) buy(quantity Quantity, cost, price Money) Holding {
	shares := h.Shares.Add(quantity)
	h.AvgCost = h.CostBasis().Add(cost).Div(shares)
	h.Shares = shares
	h.LastKnownPrice = price
	return h
}
