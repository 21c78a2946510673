package portfolio

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEncodeLedger(t *testing.T) {
	l, err := Open("alice", USD(100000))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for _, o := range []Order{
		NewBuy("AAPL", Q(10), USD(185.43)),
		NewSell("AAPL", Q(4), USD(190)),
	} {
		if err := l.Apply(o); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	var b bytes.Buffer
	if err := EncodeLedger(&b, l); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	want := `{"command":"open","owner":"alice","currency":"USD","cash":100000}
{"command":"buy","symbol":"AAPL","quantity":10,"price":185.43,"currency":"USD"}
{"command":"sell","symbol":"AAPL","quantity":4,"price":190,"currency":"USD"}
`
	if got := b.String(); got != want {
		t.Errorf("EncodeLedger() =\n%s\nwant\n%s", got, want)
	}

	decoded, err := DecodeLedger(&b)
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if got, want := decoded.Portfolio().Cash(), USD(98905.70); !got.Equal(want) {
		t.Errorf("decoded Cash() = %v, want %v", got, want)
	}
	h, _ := decoded.Portfolio().Holding("AAPL")
	if got, want := h.Shares, Q(6); !got.Equal(want) {
		t.Errorf("decoded Shares = %v, want %v", got, want)
	}
	if got, want := decoded.Len(), 2; got != want {
		t.Errorf("decoded Len() = %d, want %d", got, want)
	}
}

func TestEncodeOpening_KeepsAllDigits(t *testing.T) {
	p := mustApply(t, newTestPortfolio(t, USD(1000)),
		NewBuy("KO", Q(1), USD(10)),
		NewBuy("KO", Q(2), USD(11)),
	)
	var b bytes.Buffer
	if err := EncodeOpening(&b, p); err != nil {
		t.Fatalf("EncodeOpening() error = %v", err)
	}
	// average cost is 32/3, it must not be rounded to cents.
	if !strings.Contains(b.String(), `"avgCost":10.6666666666666667`) {
		t.Errorf("EncodeOpening() = %s, want full precision avgCost", b.String())
	}

	l, err := DecodeLedger(&b)
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	got, _ := l.Portfolio().Holding("KO")
	want, _ := p.Holding("KO")
	if !got.AvgCost.Equal(want.AvgCost) || !got.Shares.Equal(want.Shares) {
		t.Errorf("decoded holding = %+v, want %+v", got, want)
	}
	if !l.Portfolio().Cash().Equal(p.Cash()) {
		t.Errorf("decoded Cash() = %v, want %v", l.Portfolio().Cash(), p.Cash())
	}
}

func TestDecodeLedger_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", `no "open" line`},
		{"order before open", `{"command":"buy","symbol":"AAPL","quantity":1,"price":1}`, "line 1: buy before the ledger is open"},
		{"unknown command", `{"command":"open","cash":10}` + "\n" + `{"command":"dividend"}`, `line 2: unknown command "dividend"`},
		{"opened twice", `{"command":"open","cash":10}` + "\n\n" + `{"command":"open","cash":10}`, "line 3: ledger is already open"},
		{"not json", `buy AAPL`, "line 1: could not identify command"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLedger(strings.NewReader(tc.input))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("DecodeLedger() error = %v, want %q", err, tc.want)
			}
		})
	}

	t.Run("rejected order", func(t *testing.T) {
		input := `{"command":"open","cash":10,"currency":"USD"}
{"command":"sell","symbol":"AAPL","quantity":1,"price":1,"currency":"USD"}`
		_, err := DecodeLedger(strings.NewReader(input))
		if !errors.Is(err, NoSuchHolding) {
			t.Errorf("DecodeLedger() error = %v, want %v", err, NoSuchHolding)
		}
	})
}

func TestDecodeLedger_PriceWithoutCurrency(t *testing.T) {
	input := `{"command":"open","owner":"bob","currency":"EUR","cash":1000}
{"command":"buy","symbol":"AAPL","quantity":1,"price":10}`
	l, err := DecodeLedger(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	for o := range l.Orders() {
		if got, want := o.UnitPrice, EUR(10); !got.Equal(want) {
			t.Errorf("recorded price = %v, want %v", got, want)
		}
	}
	h, _ := l.Valuate(Quotes{"AAPL": USD(12)}).Holding("AAPL")
	if !h.Stale || !h.MarkPrice.Equal(EUR(10)) {
		t.Errorf("AAPL mark = %v (stale %v), want %v", h.MarkPrice, h.Stale, EUR(10))
	}
}

func TestDecodeLedger_LongLine(t *testing.T) {
	p, err := NewPortfolio("carol", USD(1000000))
	if err != nil {
		t.Fatal(err)
	}
	for i := range 3000 {
		symbol := fmt.Sprintf("SYM%04d", i)
		p.holdings[symbol] = Holding{Symbol: symbol, Shares: Q(1), AvgCost: USD(1.5), LastKnownPrice: USD(2.25)}
	}
	var buf bytes.Buffer
	if err := EncodeOpening(&buf, p); err != nil {
		t.Fatalf("EncodeOpening() error = %v", err)
	}
	if buf.Len() <= 64*1024 {
		t.Fatalf("opening line is %d bytes, want more than 64KiB", buf.Len())
	}
	l, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if got, want := l.Portfolio().Len(), 3000; got != want {
		t.Errorf("holdings = %d, want %d", got, want)
	}
}
