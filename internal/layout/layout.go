// Package layout renders receipt content into printer-width text lines
package layout

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/tillpoint/print-engine/internal/profile"
	"github.com/tillpoint/print-engine/pkg/receipt"
)

// Attribution is printed at the bottom of every receipt, regardless of the
// profile's visibility flags.
const Attribution = "Powered by TillPoint"

// Columns resolves a paper width class to a character column count
func Columns(w profile.PaperWidth) int {
	switch w {
	case profile.Paper58mm:
		return 32
	case profile.Paper80mm:
		return 48
	case profile.Paper112mm:
		return 64
	case profile.PaperLetter:
		return 80
	default:
		return 48
	}
}

// Format renders content against a profile's layout configuration into an
// ordered sequence of text lines. It is total for valid content: an empty
// line-item list produces a complete document with zero totals.
func Format(c *receipt.Content, p *profile.Profile) []string {
	width := Columns(p.Layout.PaperWidth)
	symbol := p.Layout.CurrencySymbol
	if symbol == "" {
		symbol = "₦"
	}

	nameWidth := p.Layout.ItemNameWidth
	if nameWidth <= 0 || nameWidth > width {
		nameWidth = width
	}

	var lines []string
	add := func(l ...string) { lines = append(lines, l...) }
	sep := strings.Repeat("-", width)

	// Header: business info block. Free text, exempt from the width invariant.
	if p.Layout.ShowLogo {
		add(center("[LOGO]", width))
	}
	if p.Business.Name != "" {
		add(center(p.Business.Name, width))
	}
	if p.Business.Address != "" {
		add(center(p.Business.Address, width))
	}
	if p.Business.City != "" {
		add(center(p.Business.City, width))
	}
	if p.Business.Phone != "" {
		add(center(p.Business.Phone, width))
	}
	if p.Layout.ShowTaxID && p.Business.TaxID != "" {
		add(center("TIN: "+p.Business.TaxID, width))
	}

	add(sep)

	// Transaction metadata
	add(truncate("Date: "+c.Timestamp.Format("2006-01-02 15:04"), width))
	add(truncate("Receipt #: "+c.ReceiptNumber, width))
	if p.Layout.ShowCashier && c.Cashier != "" {
		add(truncate("Cashier: "+c.Cashier, width))
	}
	if p.Layout.ShowCustomer && c.Customer != nil {
		add(truncate("Customer: "+c.Customer.Name, width))
		if c.Customer.LoyaltyCard != "" {
			add(truncate("Card: "+c.Customer.LoyaltyCard, width))
		}
	}

	add(sep)

	// Line items: one name line, one qty x price = total line each
	for _, item := range c.LineItems {
		add(truncate(item.Name, nameWidth))
		qty := fmt.Sprintf("  %d x %s", item.Quantity, amount(item.UnitPrice, symbol))
		add(pair(qty, amount(item.LineTotal, symbol), width, p.Layout.PriceAlign))
	}

	add(sep)

	// Totals block
	add(pair("SUBTOTAL:", amount(c.Subtotal, symbol), width, p.Layout.PriceAlign))
	if c.Discount.IsPositive() {
		add(pair("DISCOUNT:", "-"+amount(c.Discount, symbol), width, p.Layout.PriceAlign))
	}
	if c.Tax.IsPositive() {
		add(pair("TAX:", amount(c.Tax, symbol), width, p.Layout.PriceAlign))
	}
	add(pair("TOTAL:", amount(c.Total, symbol), width, p.Layout.PriceAlign))

	add(sep)

	// Payment breakdown, only when the tender was split
	if len(c.Payments) > 1 {
		add(truncate("PAYMENT", width))
		for _, pay := range c.Payments {
			label := strings.ToUpper(string(pay.Method)) + ":"
			add(pair(label, amount(pay.Amount, symbol), width, p.Layout.PriceAlign))
		}
		add(sep)
	}

	// Loyalty points block
	if p.Layout.ShowLoyalty && c.Customer != nil && c.Customer.LoyaltyCard != "" {
		add(pair("Points earned:", fmt.Sprintf("%d", c.Customer.PointsEarned), width, p.Layout.PriceAlign))
		balance := c.Customer.PointsBefore + c.Customer.PointsEarned
		add(pair("Points balance:", fmt.Sprintf("%d", balance), width, p.Layout.PriceAlign))
		add(sep)
	}

	// Footer: custom text per profile, then the unconditional attribution
	if p.Layout.ShowFooter && p.Business.FooterText != "" {
		for _, l := range wrap(p.Business.FooterText, width) {
			add(center(l, width))
		}
	}
	if c.FooterNote != "" {
		for _, l := range wrap(c.FooterNote, width) {
			add(center(l, width))
		}
	}
	add(center(Attribution, width))

	return lines
}

// amount renders a currency value with thousands separators and the configured
// symbol. The stored decimal precision is preserved, never extended.
func amount(d decimal.Decimal, symbol string) string {
	s := d.Abs().String()
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(fracPart)
	return b.String()
}

// pair joins a label and a value into one line. Right alignment pads the gap
// with spaces up to the column width; left alignment concatenates inline.
func pair(left, right string, width int, align profile.PriceAlign) string {
	if align == profile.PriceAlignLeft {
		return truncate(left+" "+right, width)
	}

	lw := utf8.RuneCountInString(left)
	rw := utf8.RuneCountInString(right)
	gap := width - lw - rw
	if gap < 1 {
		left = truncate(left, width-rw-1)
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width])
}

// wrap breaks free text into lines of at most width runes, splitting on
// spaces. A single word longer than the width is hard-split.
func wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	var line string
	lineLen := 0

	flush := func() {
		if lineLen > 0 {
			lines = append(lines, line)
			line = ""
			lineLen = 0
		}
	}

	for _, word := range strings.Fields(s) {
		wordLen := utf8.RuneCountInString(word)
		for wordLen > width {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
			wordLen -= width
		}
		if wordLen == 0 {
			continue
		}
		if lineLen > 0 && lineLen+1+wordLen > width {
			flush()
		}
		if lineLen > 0 {
			line += " "
			lineLen++
		}
		line += word
		lineLen += wordLen
	}
	flush()

	return lines
}

func center(s string, width int) string {
	w := utf8.RuneCountInString(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", (width-w)/2) + s
}
