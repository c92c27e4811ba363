package core

import (
	"fmt"
	"time"
)

// Bill dates arrive from clients as ISO-8601 timestamps and are stored
// verbatim; DisplayDate is a read-time presentation concern only.
const (
	BillDateLayout    = "2006-01-02T15:04:05.000Z"
	DisplayDateLayout = "02/01/2006"
)

// FormatAmount renders a monetary value with the rupee prefix and two
// decimal places, e.g. "₹12.50". Rounding happens here and only here;
// accumulation stays in full float precision.
func FormatAmount(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

// DisplayDate reformats a stored ISO-8601 bill date as DD/MM/YYYY.
// Values that do not parse are returned unchanged.
func DisplayDate(stored string) string {
	t, err := time.Parse(BillDateLayout, stored)
	if err != nil {
		return stored
	}
	return t.Format(DisplayDateLayout)
}
