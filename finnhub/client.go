// Package finnhub fetches live stock quotes and company news from the Finnhub
// API.
//
// Quotes are fetched before a valuation and returned as a portfolio.Quotes
// snapshot, symbols without a quote are left out so that the valuation falls
// back to their last known price.
package finnhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/coachfolio/portfolio"
	"github.com/shopspring/decimal"
)

// DefaultURL is the base URL of the Finnhub API.
const DefaultURL = "https://finnhub.io/api/v1"

// currentPricePath locates the current price in a /quote response:
//
//	{"c": 185.43, "d": 2.34, "dp": 1.28, "h": 186.1, "l": 183.2, "o": 184, "pc": 183.09, "t": 1700000000}
const currentPricePath = "$.c"

// Client is a Finnhub quote client with an in-memory price cache.
type Client struct {
	base     string
	token    string
	http     *http.Client
	cache    *priceCache
	currency string // of the prices
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultURL.
func WithBaseURL(base string) Option { return func(c *Client) { c.base = base } }

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// New creates a client authenticated by token, caching prices for ttl.
func New(token string, ttl time.Duration, opts ...Option) (*Client, error) {
	cache, err := newPriceCache(1<<16, ttl)
	if err != nil {
		return nil, fmt.Errorf("creating quote cache: %w", err)
	}
	c := &Client{
		base:     DefaultURL,
		token:    token,
		http:     &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		currency: "USD",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the cache.
func (c *Client) Close() { c.cache.close() }

// Quote returns the current price of symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (portfolio.Money, error) {
	symbol = portfolio.NormalizeSymbol(symbol)
	if p, ok := c.cache.get(symbol); ok {
		return portfolio.M(p, c.currency), nil
	}

	q := url.Values{"symbol": {symbol}, "token": {c.token}}
	var jobj any
	if err := c.jwget(ctx, c.base+"/quote?"+q.Encode(), &jobj); err != nil {
		return portfolio.Money{}, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	jval, err := jsonpath.Get(currentPricePath, jobj)
	if err != nil {
		return portfolio.Money{}, fmt.Errorf("error parsing %q: %q %w", symbol, currentPricePath, err)
	}
	// jsonpath may return a list of one answer
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return portfolio.Money{}, fmt.Errorf("error parsing %q: %q not a number %v", symbol, currentPricePath, jval)
	}
	// Finnhub answers unknown symbols with a zero price.
	if val <= 0 {
		return portfolio.Money{}, fmt.Errorf("no quote for %q", symbol)
	}
	price := decimal.NewFromFloat(val)
	c.cache.set(symbol, price)
	return portfolio.M(price, c.currency), nil
}

// Quotes fetches the price of every symbol.
//
// It returns the quotes it could get, and the errors of the others joined.
func (c *Client) Quotes(ctx context.Context, symbols ...string) (portfolio.Quotes, error) {
	res := make(portfolio.Quotes, len(symbols))
	var errs []error
	for _, s := range symbols {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		m, err := c.Quote(ctx, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Set(s, m)
	}
	return res, errors.Join(errs...)
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
