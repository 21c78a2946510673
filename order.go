package portfolio

import (
	"fmt"
	"strings"
)

// Order is a request to buy or sell shares of a symbol at a unit price.
type Order struct {
	Symbol    string   `json:"symbol"`
	Side      Side     `json:"side"`
	Quantity  Quantity `json:"quantity"`
	UnitPrice Money    `json:"unitPrice"`
}

// NewBuy creates a buy order.
func NewBuy(symbol string, quantity Quantity, price Money) Order {
	return Order{Symbol: NormalizeSymbol(symbol), Side: Buy, Quantity: quantity, UnitPrice: price}
}

// NewSell creates a sell order.
func NewSell(symbol string, quantity Quantity, price Money) Order {
	return Order{Symbol: NormalizeSymbol(symbol), Side: Sell, Quantity: quantity, UnitPrice: price}
}

// NormalizeSymbol returns the canonical form of a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Amount returns quantity x unit price.
func (o Order) Amount() Money { return o.UnitPrice.Mul(o.Quantity) }

func (o Order) String() string {
	return fmt.Sprintf("%s %v %s at %v", o.Side, o.Quantity, o.Symbol, o.UnitPrice)
}

// in returns o with a unit price in currency if the price has no currency.
func (o Order) in(currency string) Order {
	o.UnitPrice = o.UnitPrice.in(currency)
	return o
}

// Validate checks the order on its own, for a portfolio held in currency.
//
// It returns an *OrderError of kind InvalidOrder.
func (o Order) Validate(currency string) error {
	switch {
	case o.Symbol == "":
		return reject(InvalidOrder, o, "symbol is required")
	case o.Symbol != NormalizeSymbol(o.Symbol):
		return reject(InvalidOrder, o, "symbol %q is not in canonical form", o.Symbol)
	case o.Side != Buy && o.Side != Sell:
		return reject(InvalidOrder, o, "side must be buy or sell")
	case !o.Quantity.IsPositive():
		return reject(InvalidOrder, o, "quantity must be positive")
	case !o.Quantity.IsInteger():
		return reject(InvalidOrder, o, "quantity must be a whole number of shares")
	case !o.UnitPrice.IsPositive():
		return reject(InvalidOrder, o, "unit price must be positive")
	case o.UnitPrice.Currency() != "" && o.UnitPrice.Currency() != currency:
		return reject(InvalidOrder, o, "price is in %s, portfolio is in %s", o.UnitPrice.Currency(), currency)
	}
	return nil
}
