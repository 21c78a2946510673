package finnhub

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"
)

// priceCache keeps recent prices for a fixed time to live.
type priceCache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func newPriceCache(maxCost int64, ttl time.Duration) (*priceCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &priceCache{c: c, ttl: ttl}, nil
}

func (c *priceCache) get(symbol string) (decimal.Decimal, bool) {
	v, ok := c.c.Get(symbol)
	if !ok {
		return decimal.Decimal{}, false
	}
	d, ok := v.(decimal.Decimal)
	return d, ok
}

func (c *priceCache) set(symbol string, price decimal.Decimal) { c.c.SetWithTTL(symbol, price, 1, c.ttl) }

// wait blocks until pending writes are visible.
func (c *priceCache) wait() { c.c.Wait() }

func (c *priceCache) close() { c.c.Close() }
