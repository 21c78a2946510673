package portfolio

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent is an exact percentage: 12.5 means 12.5%.
type Percent struct {
	value decimal.Decimal
}

// percentOf returns part/whole*100, or 0 when whole is zero.
func percentOf(part, whole decimal.Decimal) Percent {
	if whole.IsZero() {
		return Percent{}
	}
	return Percent{value: part.Div(whole).Mul(hundred)}
}

func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	precision := decimal.New(1, -4)
	return p.value.Sub(q.value).Abs().LessThan(precision)
}

func (p Percent) IsZero() bool             { return p.value.IsZero() }
func (p Percent) Decimal() decimal.Decimal { return p.value }

func (p Percent) String() string {
	return p.value.StringFixed(2) + "%"
}

func (p Percent) SignedString() string {
	res := p.value.StringFixed(2)
	switch {
	case res == "0.00" || res == "-0.00":
		return "-"
	case p.value.IsPositive():
		return "+" + res + "%"
	}
	return res + "%"
}

// MarshalJSON writes the percentage rounded to two decimals.
func (p Percent) MarshalJSON() ([]byte, error) {
	return p.value.Round(2).MarshalJSON()
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	return p.value.UnmarshalJSON(data)
}
