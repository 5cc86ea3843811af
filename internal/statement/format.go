package statement

import (
	"math"

	"github.com/dustin/go-humanize"
)

// Formatter turns an amount in major currency units into a display string.
type Formatter func(amount float64) string

// USD formats amounts the way US-locale currency output does: symbol,
// thousands separators and two decimal places.
func USD(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", amount)
}
