// Package receipt defines the immutable sale snapshot handed to the print engine
package receipt

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is one of the fixed set of tender types
type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayPOS      PaymentMethod = "pos"
	PayTransfer PaymentMethod = "transfer"
	PayDebit    PaymentMethod = "debit"
	PayCredit   PaymentMethod = "credit"
)

// KnownPaymentMethods lists every accepted tender type
var KnownPaymentMethods = []PaymentMethod{PayCash, PayPOS, PayTransfer, PayDebit, PayCredit}

// Content is a completed sale, created once at sale completion and never mutated.
// The engine never recomputes totals; they arrive fully computed.
type Content struct {
	ReceiptNumber string          `json:"receipt_number"`
	Timestamp     time.Time       `json:"timestamp"`
	Cashier       string          `json:"cashier,omitempty"`
	LineItems     []LineItem      `json:"line_items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Payments      []Payment       `json:"payments"`
	Customer      *Customer       `json:"customer,omitempty"`
	FooterNote    string          `json:"footer_note,omitempty"`
}

// LineItem is one sold item line
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Payment is one entry of the tender breakdown
type Payment struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Customer carries the loyalty reference printed on the receipt
type Customer struct {
	Name         string `json:"name"`
	LoyaltyCard  string `json:"loyalty_card,omitempty"`
	PointsBefore int64  `json:"points_before"`
	PointsEarned int64  `json:"points_earned"`
}

// TestPage builds a syntactically complete zero-value receipt used to
// exercise a printer during setup. An empty item list is legal content.
func TestPage(profileName string) *Content {
	now := time.Now()
	return &Content{
		ReceiptNumber: fmt.Sprintf("TEST-%d", now.Unix()),
		Timestamp:     now,
		Cashier:       profileName,
		LineItems:     nil,
		Subtotal:      decimal.Zero,
		Discount:      decimal.Zero,
		Tax:           decimal.Zero,
		Total:         decimal.Zero,
		Payments:      []Payment{{Method: PayCash, Amount: decimal.Zero}},
	}
}
