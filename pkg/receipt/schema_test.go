package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validContent() *Content {
	return &Content{
		ReceiptNumber: "R-1700000000",
		Timestamp:     time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
		Cashier:       "ada",
		LineItems: []LineItem{
			{Name: "Coffee", Quantity: 2, UnitPrice: decimal.NewFromInt(1500), LineTotal: decimal.NewFromInt(3000)},
			{Name: "Snack", Quantity: 1, UnitPrice: decimal.NewFromInt(800), LineTotal: decimal.NewFromInt(800)},
		},
		Subtotal: decimal.NewFromInt(3800),
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.NewFromInt(3800),
		Payments: []Payment{{Method: PayCash, Amount: decimal.NewFromInt(3800)}},
	}
}

func TestValidate_ValidContent(t *testing.T) {
	if err := Validate(validContent()); err != nil {
		t.Errorf("Expected valid content, got error: %v", err)
	}
}

func TestValidate_MissingReceiptNumber(t *testing.T) {
	c := validContent()
	c.ReceiptNumber = ""

	if err := Validate(c); err == nil {
		t.Error("Expected error for missing receipt number")
	}
}

func TestValidate_TotalInvariant(t *testing.T) {
	c := validContent()
	c.Total = decimal.NewFromInt(4000)
	c.Payments = []Payment{{Method: PayCash, Amount: decimal.NewFromInt(4000)}}

	if err := Validate(c); err == nil {
		t.Error("Expected error when total does not equal subtotal - discount + tax")
	}
}

func TestValidate_TotalWithDiscountAndTax(t *testing.T) {
	c := validContent()
	c.Discount = decimal.NewFromInt(300)
	c.Tax = decimal.NewFromInt(285)
	c.Total = decimal.NewFromInt(3785)
	c.Payments = []Payment{{Method: PayPOS, Amount: decimal.NewFromInt(3785)}}

	if err := Validate(c); err != nil {
		t.Errorf("Expected valid content with discount and tax, got error: %v", err)
	}
}

func TestValidate_PaymentSumInvariant(t *testing.T) {
	c := validContent()
	c.Payments = []Payment{
		{Method: PayCash, Amount: decimal.NewFromInt(2000)},
		{Method: PayPOS, Amount: decimal.NewFromInt(1000)},
	}

	if err := Validate(c); err == nil {
		t.Error("Expected error when payments do not sum to total")
	}
}

func TestValidate_SplitPayment(t *testing.T) {
	c := validContent()
	c.Payments = []Payment{
		{Method: PayCash, Amount: decimal.NewFromInt(2000)},
		{Method: PayTransfer, Amount: decimal.NewFromInt(1800)},
	}

	if err := Validate(c); err != nil {
		t.Errorf("Expected valid split payment, got error: %v", err)
	}
}

func TestValidate_UnknownPaymentMethod(t *testing.T) {
	c := validContent()
	c.Payments = []Payment{{Method: "cheque", Amount: decimal.NewFromInt(3800)}}

	if err := Validate(c); err == nil {
		t.Error("Expected error for unknown payment method")
	}
}

func TestValidate_NegativeQuantity(t *testing.T) {
	c := validContent()
	c.LineItems[0].Quantity = -1

	if err := Validate(c); err == nil {
		t.Error("Expected error for negative quantity")
	}
}

func TestValidate_EmptyLineItemsLegal(t *testing.T) {
	c := validContent()
	c.LineItems = nil
	c.Subtotal = decimal.Zero
	c.Total = decimal.Zero
	c.Payments = []Payment{{Method: PayCash, Amount: decimal.Zero}}

	if err := Validate(c); err != nil {
		t.Errorf("Expected empty line items to be legal, got error: %v", err)
	}
}

func TestTestPage(t *testing.T) {
	c := TestPage("Front Counter")

	if err := Validate(c); err != nil {
		t.Errorf("Expected valid test page, got error: %v", err)
	}
	if len(c.LineItems) != 0 {
		t.Errorf("Expected no line items on test page, got %d", len(c.LineItems))
	}
	if !c.Total.IsZero() {
		t.Errorf("Expected zero total on test page, got %s", c.Total)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	c := validContent()
	c.Customer = &Customer{Name: "B. Okafor", LoyaltyCard: "LC-0042", PointsBefore: 120, PointsEarned: 38}

	data, err := c.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.ReceiptNumber != c.ReceiptNumber {
		t.Errorf("Expected receipt number %s, got %s", c.ReceiptNumber, parsed.ReceiptNumber)
	}
	if len(parsed.LineItems) != 2 {
		t.Errorf("Expected 2 line items, got %d", len(parsed.LineItems))
	}
	if !parsed.Total.Equal(c.Total) {
		t.Errorf("Expected total %s, got %s", c.Total, parsed.Total)
	}
	if parsed.Customer == nil || parsed.Customer.LoyaltyCard != "LC-0042" {
		t.Error("Expected customer block to survive the round trip")
	}
	if parsed.Customer.PointsEarned != 38 {
		t.Errorf("Expected 38 points earned, got %d", parsed.Customer.PointsEarned)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"receipt_number":""}`)); err == nil {
		t.Error("Expected error for invalid content")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}
