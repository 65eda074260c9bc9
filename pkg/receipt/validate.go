package receipt

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// epsilon covers currency rounding introduced upstream; amounts are stored
// at their original precision and compared within half a minor unit.
var epsilon = decimal.New(1, -2)

// Validate checks a Content record for internal consistency.
// An empty line-item list is valid (test pages print zero totals).
func Validate(c *Content) error {
	if c == nil {
		return fmt.Errorf("receipt content is required")
	}
	if c.ReceiptNumber == "" {
		return fmt.Errorf("receipt_number is required")
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	for i, item := range c.LineItems {
		if item.Name == "" {
			return fmt.Errorf("line_items[%d]: name is required", i)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("line_items[%d] '%s': negative quantity", i, item.Name)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("line_items[%d] '%s': negative unit_price", i, item.Name)
		}
		if item.LineTotal.IsNegative() {
			return fmt.Errorf("line_items[%d] '%s': negative line_total", i, item.Name)
		}
	}

	if c.Subtotal.IsNegative() {
		return fmt.Errorf("subtotal must not be negative")
	}
	if c.Tax.IsNegative() {
		return fmt.Errorf("tax must not be negative")
	}
	if c.Total.IsNegative() {
		return fmt.Errorf("total must not be negative")
	}

	// total == subtotal - discount + tax
	want := c.Subtotal.Sub(c.Discount).Add(c.Tax)
	if want.Sub(c.Total).Abs().GreaterThan(epsilon) {
		return fmt.Errorf("total %s does not match subtotal - discount + tax = %s", c.Total, want)
	}

	if len(c.Payments) > 0 {
		sum := decimal.Zero
		for i, p := range c.Payments {
			if !validMethod(p.Method) {
				return fmt.Errorf("payments[%d]: unknown method '%s'", i, p.Method)
			}
			sum = sum.Add(p.Amount)
		}
		if sum.Sub(c.Total).Abs().GreaterThan(epsilon) {
			return fmt.Errorf("payments sum %s does not match total %s", sum, c.Total)
		}
	}

	return nil
}

func validMethod(m PaymentMethod) bool {
	for _, known := range KnownPaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}
