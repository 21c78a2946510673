package portfolio

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValuate(t *testing.T) {
	p := mustApply(t, newTestPortfolio(t, USD(100000)),
		NewBuy("MSFT", Q(5), USD(364.78)),
		NewBuy("AAPL", Q(10), USD(185.43)),
	)
	quotes := Quotes{"AAPL": USD(200)}

	v := Valuate(p, quotes)

	if got, want := len(v.Holdings), 2; got != want {
		t.Fatalf("len(Holdings) = %d, want %d", got, want)
	}
	if v.Holdings[0].Symbol != "AAPL" || v.Holdings[1].Symbol != "MSFT" {
		t.Errorf("Holdings order = %s, %s, want AAPL, MSFT", v.Holdings[0].Symbol, v.Holdings[1].Symbol)
	}

	t.Run("quoted holding", func(t *testing.T) {
		h, _ := v.Holding("aapl")
		if h.Stale {
			t.Error("Stale = true, want false")
		}
		if got, want := h.CurrentValue, USD(2000); !got.Equal(want) {
			t.Errorf("CurrentValue = %v, want %v", got, want)
		}
		if got, want := h.CostBasis, USD(1854.30); !got.Equal(want) {
			t.Errorf("CostBasis = %v, want %v", got, want)
		}
		if got, want := h.GainLoss, USD(145.70); !got.Equal(want) {
			t.Errorf("GainLoss = %v, want %v", got, want)
		}
		if got, want := h.GainLossPercent.String(), "7.86%"; got != want {
			t.Errorf("GainLossPercent = %s, want %s", got, want)
		}
	})

	t.Run("missing quote falls back to last known price", func(t *testing.T) {
		h, _ := v.Holding("MSFT")
		if !h.Stale {
			t.Error("Stale = false, want true")
		}
		if got, want := h.MarkPrice, USD(364.78); !got.Equal(want) {
			t.Errorf("MarkPrice = %v, want %v", got, want)
		}
		if !h.GainLoss.IsZero() || !h.GainLossPercent.IsZero() {
			t.Errorf("GainLoss = %v (%v), want 0", h.GainLoss, h.GainLossPercent)
		}
	})

	t.Run("totals", func(t *testing.T) {
		// cash 100000 - 1823.90 - 1854.30
		if got, want := v.Cash, USD(96321.80); !got.Equal(want) {
			t.Errorf("Cash = %v, want %v", got, want)
		}
		if got, want := v.HoldingsValue, USD(3823.90); !got.Equal(want) {
			t.Errorf("HoldingsValue = %v, want %v", got, want)
		}
		if got, want := v.TotalValue, USD(100145.70); !got.Equal(want) {
			t.Errorf("TotalValue = %v, want %v", got, want)
		}
		if got, want := v.GainLoss, USD(145.70); !got.Equal(want) {
			t.Errorf("GainLoss = %v, want %v", got, want)
		}
	})

	t.Run("allocations sum to 100", func(t *testing.T) {
		sum := v.CashAllocation
		for _, h := range v.Holdings {
			sum = Percent{value: sum.value.Add(h.AllocationPercent.value)}
		}
		if !sum.Equal(P(100)) {
			t.Errorf("sum of allocations = %v, want 100%%", sum)
		}
		h, _ := v.Holding("AAPL")
		if got, want := h.AllocationPercent.String(), "2.00%"; got != want {
			t.Errorf("AAPL AllocationPercent = %s, want %s", got, want)
		}
	})

	t.Run("input is not modified", func(t *testing.T) {
		h, _ := p.Holding("AAPL")
		if got, want := h.LastKnownPrice, USD(185.43); !got.Equal(want) {
			t.Errorf("LastKnownPrice = %v after Valuate, want %v", got, want)
		}
	})
}

func TestValuate_ZeroDivisors(t *testing.T) {
	p := newTestPortfolio(t, USD(0))
	v := Valuate(p, nil)
	if !v.TotalValue.IsZero() {
		t.Errorf("TotalValue = %v, want 0", v.TotalValue)
	}
	if !v.CashAllocation.IsZero() || !v.GainLossPercent.IsZero() {
		t.Errorf("percentages = %v, %v, want 0", v.CashAllocation, v.GainLossPercent)
	}
}

func TestValuate_IgnoresQuoteInOtherCurrency(t *testing.T) {
	p := mustApply(t, newTestPortfolio(t, USD(1000)), NewBuy("PG", Q(2), USD(152.34)))
	v := Valuate(p, Quotes{"PG": EUR(140)})
	h, _ := v.Holding("PG")
	if !h.Stale || !h.MarkPrice.Equal(USD(152.34)) {
		t.Errorf("PG mark = %v (stale %v), want last known price %v", h.MarkPrice, h.Stale, USD(152.34))
	}
}

func TestValuate_PriceWithoutCurrency(t *testing.T) {
	p := mustApply(t, newTestPortfolio(t, EUR(1000)), NewBuy("AAPL", Q(1), M(10, "")))
	h, _ := p.Holding("AAPL")
	if !h.AvgCost.Equal(EUR(10)) || !h.LastKnownPrice.Equal(EUR(10)) {
		t.Errorf("AAPL cost = %v, last = %v, want both %v", h.AvgCost, h.LastKnownPrice, EUR(10))
	}

	v := Valuate(p, Quotes{"AAPL": USD(12)})
	hv, _ := v.Holding("AAPL")
	if !hv.Stale || !hv.MarkPrice.Equal(EUR(10)) {
		t.Errorf("AAPL mark = %v (stale %v), want last known price %v", hv.MarkPrice, hv.Stale, EUR(10))
	}
	if got, want := v.TotalValue, EUR(1000); !got.Equal(want) {
		t.Errorf("TotalValue = %v, want %v", got, want)
	}

	// a quote without currency is in the portfolio currency.
	v = Valuate(p, Quotes{"AAPL": M(12, "")})
	hv, _ = v.Holding("AAPL")
	if hv.Stale || !hv.MarkPrice.Equal(EUR(12)) {
		t.Errorf("AAPL mark = %v (stale %v), want %v", hv.MarkPrice, hv.Stale, EUR(12))
	}
}

func TestValuate_Repeatable(t *testing.T) {
	p := mustApply(t, newTestPortfolio(t, USD(10000)),
		NewBuy("AAPL", Q(10), USD(150)),
		NewBuy("KO", Q(7), USD(58.76)),
		NewSell("AAPL", Q(3), USD(170)),
	)
	quotes := Quotes{"AAPL": USD(185.43)}

	first := Valuate(p, quotes)
	second := Valuate(p, quotes)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Valuate() is not repeatable (-first +second):\n%s", diff)
	}
}

func TestQuoteChain(t *testing.T) {
	chain := QuoteChain{Quotes{"AAPL": USD(200)}, nil, Quotes{"AAPL": USD(1), "KO": USD(60)}}
	if got, ok := chain.Quote("AAPL"); !ok || !got.Equal(USD(200)) {
		t.Errorf("Quote(AAPL) = %v, %v, want %v", got, ok, USD(200))
	}
	if got, ok := chain.Quote("KO"); !ok || !got.Equal(USD(60)) {
		t.Errorf("Quote(KO) = %v, %v, want %v", got, ok, USD(60))
	}
	if _, ok := chain.Quote("TSLA"); ok {
		t.Error("Quote(TSLA) found, want none")
	}
}

func TestValuation_MarshalJSONRounds(t *testing.T) {
	p := mustApply(t, newTestPortfolio(t, USD(1000)), NewBuy("KO", Q(3), USD(58.76)))
	v := Valuate(p, Quotes{"KO": USD(61.2345)})
	data, err := json.Marshal(v.Holdings[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got struct {
		MarkPrice struct {
			Amount json.Number `json:"amount"`
		} `json:"markPrice"`
		GainLossPercent json.Number `json:"gainLossPercent"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := "61.23"; got.MarkPrice.Amount.String() != want {
		t.Errorf("markPrice.amount = %s, want %s", got.MarkPrice.Amount, want)
	}
	// (183.7035 - 176.28) / 176.28 = 4.2111...%
	if want := "4.21"; got.GainLossPercent.String() != want {
		t.Errorf("gainLossPercent = %s, want %s", got.GainLossPercent, want)
	}
}
