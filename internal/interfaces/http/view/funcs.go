package view

import (
	"html/template"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol prefixes every rendered amount
const CurrencySymbol = "₹"

const dateLayout = "Jan 2, 2006 15:04"

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// Funcs returns the template helpers
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":       Money,
		"title":       Title,
		"statusClass": StatusClass,
		"date":        Date,
		"initial":     Initial,
		"emailName":   EmailName,
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"pluralize":   Pluralize,
	}
}

// Money formats an amount with grouping and two decimals, e.g. ₹1,000.00
func Money(d decimal.Decimal) string {
	return CurrencySymbol + printer.Sprintf("%v", number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Title renders an upper-case enum such as an order status as "Pending"
func Title(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case order.Status:
		s = t.String()
	case order.PaymentMethod:
		s = string(t)
	default:
		return ""
	}
	return titler.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

// StatusClass returns the badge CSS class for an order status
func StatusClass(s order.Status) string {
	switch s.Display() {
	case order.StatusPending:
		return "badge badge-pending"
	case order.StatusApproved:
		return "badge badge-approved"
	case order.StatusDenied:
		return "badge badge-denied"
	case order.StatusShipped:
		return "badge badge-shipped"
	case order.StatusDelivered:
		return "badge badge-delivered"
	}
	return "badge"
}

// Date formats a backend timestamp, or "" when the backend sent none
func Date(ts shared.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(dateLayout)
}

// Initial returns the upper-cased first letter of s for avatars
func Initial(s string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(s))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// EmailName returns the local part of an email address
func EmailName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// Pluralize returns "1 item" or "3 items"
func Pluralize(n int, word string) string {
	if n == 1 {
		return printer.Sprintf("%d %s", n, word)
	}
	return printer.Sprintf("%d %ss", n, word)
}
