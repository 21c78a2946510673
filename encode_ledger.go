package portfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// A ledger is persisted as JSONL: an "open" line holding the opening
// portfolio, then one "buy" or "sell" line per accepted order. Amounts are
// written with all their digits.
const (
	cmdOpen = "open"
	cmdBuy  = "buy"
	cmdSell = "sell"
)

// priceCmd reads a price written in two fields.
type priceCmd struct {
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

func (a priceCmd) Money() Money { return M(a.Price, a.Currency) }

type orderCmd struct {
	Command  string   `json:"command"`
	Symbol   string   `json:"symbol"`
	Quantity Quantity `json:"quantity"`
	priceCmd
}

type holdingCmd struct {
	Symbol         string          `json:"symbol"`
	Shares         Quantity        `json:"shares"`
	AvgCost        decimal.Decimal `json:"avgCost"`
	LastKnownPrice decimal.Decimal `json:"lastKnownPrice"`
}

type openCmd struct {
	Command  string          `json:"command"`
	Owner    string          `json:"owner"`
	Currency string          `json:"currency"`
	Cash     decimal.Decimal `json:"cash"`
	Holdings []holdingCmd    `json:"holdings,omitempty"`
}

// EncodeOpening writes the "open" line of a ledger opened on p.
func EncodeOpening(w io.Writer, p *Portfolio) error {
	holdings := make([]holdingCmd, 0, p.Len())
	for h := range p.Holdings() {
		holdings = append(holdings, holdingCmd{
			Symbol:         h.Symbol,
			Shares:         h.Shares,
			AvgCost:        h.AvgCost.value,
			LastKnownPrice: h.LastKnownPrice.value,
		})
	}
	var obj jsonObjectWriter
	obj.Append("command", cmdOpen)
	obj.Optional("owner", p.ownerID)
	obj.Append("currency", p.currency)
	obj.Append("cash", p.cash.value)
	obj.Optional("holdings", holdings)
	return writeLine(w, &obj)
}

// EncodeOrder writes a single order as one JSON line.
func EncodeOrder(w io.Writer, o Order) error {
	var obj jsonObjectWriter
	obj.Append("command", o.Side.String())
	obj.Append("symbol", o.Symbol)
	obj.Append("quantity", o.Quantity)
	obj.Append("price", o.UnitPrice.value)
	obj.Optional("currency", o.UnitPrice.cur)
	return writeLine(w, &obj)
}

// EncodeLedger writes the opening portfolio and every order of l.
func EncodeLedger(w io.Writer, l *Ledger) error {
	if err := EncodeOpening(w, l.opening); err != nil {
		return err
	}
	for o := range l.Orders() {
		if err := EncodeOrder(w, o); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, obj *jsonObjectWriter) error {
	line, err := obj.MarshalJSON()
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}

// maxLineSize bounds a ledger line, the open line grows with the holdings.
const maxLineSize = 16 << 20

// DecodeLedger reads a JSONL ledger and replays its orders.
//
// Orders are applied as they are read, so a journal containing an order the
// ledger rejects fails to decode.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	var ledger *Ledger
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command string `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify command in %q: %w", lineNo, string(lineBytes), err)
		}

		switch identifier.Command {
		case cmdOpen:
			if ledger != nil {
				return nil, fmt.Errorf("line %d: ledger is already open", lineNo)
			}
			p, err := decodeOpening(lineBytes)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ledger = NewLedger(p)

		case cmdBuy, cmdSell:
			if ledger == nil {
				return nil, fmt.Errorf("line %d: %s before the ledger is open", lineNo, identifier.Command)
			}
			var temp orderCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			side, _ := ParseSide(temp.Command)
			o := Order{Symbol: temp.Symbol, Side: side, Quantity: temp.Quantity, UnitPrice: temp.Money()}
			if err := ledger.Apply(o); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

		default:
			return nil, fmt.Errorf("line %d: unknown command %q", lineNo, identifier.Command)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger has no %q line", cmdOpen)
	}
	return ledger, nil
}

func decodeOpening(line []byte) (*Portfolio, error) {
	var temp openCmd
	if err := json.Unmarshal(line, &temp); err != nil {
		return nil, err
	}
	p, err := NewPortfolio(temp.Owner, M(temp.Cash, temp.Currency))
	if err != nil {
		return nil, err
	}
	for _, h := range temp.Holdings {
		symbol := NormalizeSymbol(h.Symbol)
		if symbol == "" || !h.Shares.IsPositive() {
			return nil, fmt.Errorf("invalid opening holding %q of %v shares", h.Symbol, h.Shares)
		}
		p.holdings[symbol] = Holding{
			Symbol:         symbol,
			Shares:         h.Shares,
			AvgCost:        M(h.AvgCost, p.currency),
			LastKnownPrice: M(h.LastKnownPrice, p.currency),
		}
	}
	return p, nil
}
