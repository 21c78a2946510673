package portfolio

import (
	"errors"
	"slices"
	"testing"
)

func newTestPortfolio(t *testing.T, cash Money) *Portfolio {
	t.Helper()
	p, err := NewPortfolio("alice", cash)
	if err != nil {
		t.Fatalf("NewPortfolio() error = %v", err)
	}
	return p
}

// mustApply applies orders in sequence and fails the test on the first rejection.
func mustApply(t *testing.T, p *Portfolio, orders ...Order) *Portfolio {
	t.Helper()
	for _, o := range orders {
		next, err := ApplyOrder(p, o)
		if err != nil {
			t.Fatalf("ApplyOrder(%v) error = %v", o, err)
		}
		p = next
	}
	return p
}

func TestApplyOrder_BuyThenSell(t *testing.T) {
	p := newTestPortfolio(t, USD(100000))

	p = mustApply(t, p, NewBuy("AAPL", Q(10), USD(185.43)))
	if got, want := p.Cash(), USD(98145.70); !got.Equal(want) {
		t.Errorf("after buy Cash() = %v, want %v", got, want)
	}
	h, ok := p.Holding("AAPL")
	if !ok {
		t.Fatal("after buy Holding(AAPL) not found")
	}
	if got, want := h.Shares, Q(10); !got.Equal(want) {
		t.Errorf("after buy Shares = %v, want %v", got, want)
	}
	if got, want := h.AvgCost, USD(185.43); !got.Equal(want) {
		t.Errorf("after buy AvgCost = %v, want %v", got, want)
	}

	p = mustApply(t, p, NewSell("AAPL", Q(4), USD(190)))
	if got, want := p.Cash(), USD(98905.70); !got.Equal(want) {
		t.Errorf("after sell Cash() = %v, want %v", got, want)
	}
	h, _ = p.Holding("AAPL")
	if got, want := h.Shares, Q(6); !got.Equal(want) {
		t.Errorf("after sell Shares = %v, want %v", got, want)
	}
	if got, want := h.AvgCost, USD(185.43); !got.Equal(want) {
		t.Errorf("after sell AvgCost = %v, want %v (unchanged by a sell)", got, want)
	}
	if got, want := h.LastKnownPrice, USD(190); !got.Equal(want) {
		t.Errorf("after sell LastKnownPrice = %v, want %v", got, want)
	}
}

func TestApplyOrder_WeightedAverageCost(t *testing.T) {
	p := newTestPortfolio(t, USD(100000))
	p = mustApply(t, p,
		NewBuy("MSFT", Q(10), USD(100)),
		NewBuy("MSFT", Q(10), USD(200)),
	)
	h, _ := p.Holding("MSFT")
	if got, want := h.AvgCost, USD(150); !got.Equal(want) {
		t.Errorf("AvgCost = %v, want %v", got, want)
	}
	if got, want := h.Shares, Q(20); !got.Equal(want) {
		t.Errorf("Shares = %v, want %v", got, want)
	}
	if got, want := h.LastKnownPrice, USD(200); !got.Equal(want) {
		t.Errorf("LastKnownPrice = %v, want %v", got, want)
	}
	if got, want := p.Cash(), USD(97000); !got.Equal(want) {
		t.Errorf("Cash() = %v, want %v", got, want)
	}
}

func TestApplyOrder_SellAllRemovesHolding(t *testing.T) {
	p := newTestPortfolio(t, USD(10000))
	p = mustApply(t, p,
		NewBuy("KO", Q(5), USD(58.76)),
		NewSell("KO", Q(5), USD(60)),
	)
	if _, ok := p.Holding("KO"); ok {
		t.Error("Holding(KO) still present after selling every share")
	}
	if got, want := p.Len(), 0; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	// 10000 - 293.80 + 300
	if got, want := p.Cash(), USD(10006.20); !got.Equal(want) {
		t.Errorf("Cash() = %v, want %v", got, want)
	}
}

func TestApplyOrder_BuyWholeCash(t *testing.T) {
	p := newTestPortfolio(t, USD(1000))
	p = mustApply(t, p, NewBuy("DIS", Q(10), USD(100)))
	if !p.Cash().IsZero() {
		t.Errorf("Cash() = %v, want 0", p.Cash())
	}
}

func TestApplyOrder_Rejections(t *testing.T) {
	base := mustApply(t, newTestPortfolio(t, USD(1000)), NewBuy("AAPL", Q(2), USD(100)))

	testCases := []struct {
		name  string
		order Order
		want  ErrorKind
	}{
		{"buy above cash", NewBuy("MSFT", Q(3), USD(300)), InsufficientFunds},
		{"sell more than held", NewSell("AAPL", Q(3), USD(100)), InsufficientShares},
		{"sell not held", NewSell("TSLA", Q(1), USD(100)), NoSuchHolding},
		{"zero quantity", NewBuy("AAPL", Q(0), USD(100)), InvalidOrder},
		{"negative quantity", NewSell("AAPL", Q(-1), USD(100)), InvalidOrder},
		{"fractional quantity", NewBuy("AAPL", Q(1.5), USD(100)), InvalidOrder},
		{"zero price", NewBuy("AAPL", Q(1), USD(0)), InvalidOrder},
		{"negative price", NewSell("AAPL", Q(1), USD(-5)), InvalidOrder},
		{"empty symbol", NewBuy(" ", Q(1), USD(10)), InvalidOrder},
		{"lowercase symbol", Order{Symbol: "aapl", Side: Buy, Quantity: Q(1), UnitPrice: USD(10)}, InvalidOrder},
		{"unknown side", Order{Symbol: "AAPL", Quantity: Q(1), UnitPrice: USD(10)}, InvalidOrder},
		{"other currency", NewBuy("AAPL", Q(1), EUR(10)), InvalidOrder},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyOrder(base, tc.order)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ApplyOrder() error = %v, want %v", err, tc.want)
			}
			var oerr *OrderError
			if !errors.As(err, &oerr) {
				t.Fatalf("ApplyOrder() error is %T, want *OrderError", err)
			}
			if oerr.Order.Symbol != tc.order.Symbol {
				t.Errorf("OrderError.Order.Symbol = %q, want %q", oerr.Order.Symbol, tc.order.Symbol)
			}
			if got != base {
				t.Error("ApplyOrder() returned a new portfolio for a rejected order")
			}
			if want := USD(800); !base.Cash().Equal(want) {
				t.Errorf("Cash() = %v after rejection, want %v", base.Cash(), want)
			}
			if h, _ := base.Holding("AAPL"); !h.Shares.Equal(Q(2)) {
				t.Errorf("AAPL shares = %v after rejection, want 2", h.Shares)
			}
		})
	}
}

func TestApplyOrder_DoesNotModifyInput(t *testing.T) {
	p0 := newTestPortfolio(t, USD(5000))
	p1 := mustApply(t, p0, NewBuy("JPM", Q(10), USD(154.67)))
	p2 := mustApply(t, p1, NewBuy("JPM", Q(10), USD(160)), NewSell("JPM", Q(5), USD(170)))

	if p0.Len() != 0 || !p0.Cash().Equal(USD(5000)) {
		t.Errorf("opening portfolio was modified: cash %v, %d holdings", p0.Cash(), p0.Len())
	}
	h1, _ := p1.Holding("JPM")
	if !h1.Shares.Equal(Q(10)) || !h1.LastKnownPrice.Equal(USD(154.67)) {
		t.Errorf("intermediate portfolio was modified: %+v", h1)
	}
	h2, _ := p2.Holding("JPM")
	if !h2.Shares.Equal(Q(15)) {
		t.Errorf("final shares = %v, want 15", h2.Shares)
	}
}

func TestNewPortfolio(t *testing.T) {
	if _, err := NewPortfolio("bob", USD(-1)); err == nil {
		t.Error("NewPortfolio() with negative cash succeeded, want an error")
	}
	p, err := NewPortfolio("bob", M(100, ""))
	if err != nil {
		t.Fatalf("NewPortfolio() error = %v", err)
	}
	if got, want := p.Currency(), DefaultCurrency; got != want {
		t.Errorf("Currency() = %q, want %q", got, want)
	}
	if got, want := p.Cash(), USD(100); !got.Equal(want) {
		t.Errorf("Cash() = %v, want %v", got, want)
	}
}

func TestLedger(t *testing.T) {
	l, err := Open("alice", USD(100000))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	orders := []Order{
		NewBuy("AAPL", Q(10), USD(185.43)),
		NewBuy("KO", Q(20), USD(58.76)),
		NewSell("AAPL", Q(4), USD(190)),
		NewSell("KO", Q(5), USD(50)),
	}
	for _, o := range orders {
		if err := l.Apply(o); err != nil {
			t.Fatalf("Apply(%v) error = %v", o, err)
		}
	}

	if err := l.Apply(NewSell("TSLA", Q(1), USD(200))); !errors.Is(err, NoSuchHolding) {
		t.Errorf("Apply(sell TSLA) error = %v, want %v", err, NoSuchHolding)
	}
	if got, want := l.Len(), len(orders); got != want {
		t.Errorf("Len() = %d, want %d (rejected orders are not recorded)", got, want)
	}
	if got := slices.Collect(l.Orders()); len(got) != len(orders) || got[2].Side != Sell {
		t.Errorf("Orders() = %v, want %v", got, orders)
	}

	want := Stats{Trades: 4, Buys: 2, Sells: 2, ProfitableSells: 1, Symbols: 2}
	if got := l.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	t.Run("replay gives the same portfolio", func(t *testing.T) {
		r, err := Replay(l.Opening(), l.Orders())
		if err != nil {
			t.Fatalf("Replay() error = %v", err)
		}
		if got, want := r.Portfolio().Cash(), l.Portfolio().Cash(); !got.Equal(want) {
			t.Errorf("Cash() = %v, want %v", got, want)
		}
		if got, want := r.Portfolio().Symbols(), l.Portfolio().Symbols(); !slices.Equal(got, want) {
			t.Errorf("Symbols() = %v, want %v", got, want)
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		c := l.Clone()
		if err := c.Apply(NewBuy("NVDA", Q(1), USD(421.33))); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if l.Len() != len(orders) {
			t.Errorf("original Len() = %d after applying to the clone", l.Len())
		}
		if _, ok := l.Portfolio().Holding("NVDA"); ok {
			t.Error("original portfolio holds NVDA after applying to the clone")
		}
	})

	t.Run("replay reports the failing order", func(t *testing.T) {
		bad := slices.Values([]Order{NewBuy("AAPL", Q(1), USD(10)), NewSell("AAPL", Q(2), USD(10))})
		_, err := Replay(l.Opening(), bad)
		if !errors.Is(err, InsufficientShares) {
			t.Errorf("Replay() error = %v, want %v", err, InsufficientShares)
		}
	})
}
