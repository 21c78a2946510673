package portfolio

import "fmt"

// ErrorKind classifies why the ledger rejected an order.
//
// Kinds are errors themselves, so callers can test a rejection with
// errors.Is(err, portfolio.InsufficientFunds).
type ErrorKind string

const (
	// InvalidOrder is a malformed order: empty symbol, unknown side,
	// non positive or fractional quantity, non positive price, or a price in
	// another currency than the portfolio.
	InvalidOrder ErrorKind = "invalid order"
	// InsufficientFunds is a buy costing more than the available cash.
	InsufficientFunds ErrorKind = "insufficient funds"
	// InsufficientShares is a sell of more shares than held.
	InsufficientShares ErrorKind = "insufficient shares"
	// NoSuchHolding is a sell of a symbol not held.
	NoSuchHolding ErrorKind = "no such holding"
)

func (k ErrorKind) Error() string { return string(k) }

// OrderError is returned when an order is rejected. The portfolio it was
// applied to is left unchanged.
type OrderError struct {
	Kind   ErrorKind
	Order  Order
	Reason string
}

func (e *OrderError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot %v: %s", e.Order, e.Kind)
	}
	return fmt.Sprintf("cannot %v: %s, %s", e.Order, e.Kind, e.Reason)
}

func (e *OrderError) Unwrap() error { return e.Kind }

func reject(kind ErrorKind, o Order, format string, args ...any) *OrderError {
	return &OrderError{Kind: kind, Order: o, Reason: fmt.Sprintf(format, args...)}
}
