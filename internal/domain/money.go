package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Cents is a currency amount in integer cents. All money arithmetic in the
// service is done on this type so totals stay exact; floating point only
// appears at the JSON boundary.
type Cents int64

// CentsFromFloat converts a decimal currency value to cents, rounding
// half-up (away from zero). This is the single rounding point for
// client-submitted prices.
func CentsFromFloat(v float64) Cents {
	return Cents(math.Round(v * 100))
}

// MulRate applies a fractional rate (e.g. a tax rate) and rounds half-up
// to the nearest cent.
func (c Cents) MulRate(rate float64) Cents {
	return Cents(math.Round(float64(c) * rate))
}

// MulQty multiplies by a line quantity. Exact, no rounding involved.
func (c Cents) MulQty(qty int) Cents {
	return c * Cents(qty)
}

func (c Cents) Float() float64 {
	return float64(c) / 100
}

func (c Cents) String() string {
	return fmt.Sprintf("%.2f", c.Float())
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Float())
}

func (c *Cents) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = CentsFromFloat(v)
	return nil
}
