package position

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Point is a snapshot with its numeric fields parsed and the two derived
// metrics attached.
type Point struct {
	ID             int64           `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	WhirlpoolPrice decimal.Decimal `json:"whirlpool_price"`
	TokenAAmount   decimal.Decimal `json:"token_a_amount"`
	TokenBAmount   decimal.Decimal `json:"token_b_amount"`
	TokenAFees     decimal.Decimal `json:"token_a_fees"`
	TokenBFees     decimal.Decimal `json:"token_b_fees"`
	LockedValue    decimal.Decimal `json:"locked_value"`
	PendingYield   decimal.Decimal `json:"pending_yield"`
}

// SkippedRecord identifies a snapshot dropped from a series because one of
// its numeric fields is not a decimal literal.
type SkippedRecord struct {
	ID    int64  `json:"id"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// Series is the derived, time-ordered view of a single position.
type Series struct {
	PositionAddress string          `json:"position_address"`
	Points          []Point         `json:"points"`
	Skipped         []SkippedRecord `json:"skipped"`
}

// Latest returns the most recent point of the series.
func (s Series) Latest() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// LockedValue returns amountA * price + amountB.
func LockedValue(price, amountA, amountB decimal.Decimal) decimal.Decimal {
	return amountA.Mul(price).Add(amountB)
}

// PendingYield returns feesA * price + feesB.
func PendingYield(price, feesA, feesB decimal.Decimal) decimal.Decimal {
	return feesA.Mul(price).Add(feesB)
}

// Derive filters snaps to addr and computes the derived metrics for every
// retained snapshot. Records with an unparsable numeric field are left out
// of Points and listed in Skipped. Derive does not modify snaps.
func Derive(snaps []Snapshot, addr string) Series {
	series := Series{
		PositionAddress: addr,
		Points:          make([]Point, 0),
		Skipped:         make([]SkippedRecord, 0),
	}
	if addr == "" {
		return series
	}

	for _, s := range Filter(snaps, addr) {
		p, skip := parse(s)
		if skip != nil {
			series.Skipped = append(series.Skipped, *skip)
			continue
		}
		p.LockedValue = LockedValue(p.WhirlpoolPrice, p.TokenAAmount, p.TokenBAmount)
		p.PendingYield = PendingYield(p.WhirlpoolPrice, p.TokenAFees, p.TokenBFees)
		series.Points = append(series.Points, p)
	}
	return series
}

func parse(s Snapshot) (Point, *SkippedRecord) {
	p := Point{ID: s.ID, Timestamp: s.Timestamp}
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"whirlpool_price", s.WhirlpoolPrice, &p.WhirlpoolPrice},
		{"token_a_amount", s.TokenAAmount, &p.TokenAAmount},
		{"token_b_amount", s.TokenBAmount, &p.TokenBAmount},
		{"token_a_fees", s.TokenAFees, &p.TokenAFees},
		{"token_b_fees", s.TokenBFees, &p.TokenBFees},
	}
	for _, f := range fields {
		d, err := ParseDecimal(f.raw)
		if err != nil {
			return Point{}, &SkippedRecord{ID: s.ID, Field: f.name, Value: f.raw}
		}
		*f.dst = d
	}
	return p, nil
}

// Bounds on accepted literals. Products and sums of values inside them stay
// within int32 exponents and a few thousand digits; Postgres NUMERIC::text
// output for prices and token amounts is far smaller.
const (
	maxDecimalLen      = 256
	maxDecimalExponent = 1000
)

// ParseDecimal parses a decimal literal such as "150.0" or "1e-6". Literals
// longer than 256 characters or with an exponent beyond ±1000 are rejected.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("empty decimal")
	}
	if len(raw) > maxDecimalLen {
		return decimal.Decimal{}, fmt.Errorf("decimal literal too long (%d chars)", len(raw))
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse decimal %q: %w", raw, err)
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return decimal.Decimal{}, fmt.Errorf("decimal %q: exponent %d out of range", raw, exp)
	}
	return d, nil
}
