package portfolio

// QuoteSource gives the current market price of a symbol.
//
// Quote lookups are synchronous and must not block: sources doing I/O fetch a
// Quotes snapshot first.
type QuoteSource interface {
	Quote(symbol string) (Money, bool)
}

// Quotes is an in-memory QuoteSource indexed by symbol.
type Quotes map[string]Money

// NoQuotes has no quote at all, valuation then uses last known prices.
var NoQuotes QuoteSource = Quotes(nil)

func (q Quotes) Quote(symbol string) (Money, bool) {
	m, ok := q[NormalizeSymbol(symbol)]
	return m, ok
}

// Set records the price of symbol.
func (q Quotes) Set(symbol string, price Money) { q[NormalizeSymbol(symbol)] = price }

// QuoteChain looks up each source in order and returns the first quote found.
type QuoteChain []QuoteSource

func (c QuoteChain) Quote(symbol string) (Money, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if m, ok := src.Quote(symbol); ok {
			return m, true
		}
	}
	return Money{}, false
}
