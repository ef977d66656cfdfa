// Package pricing holds cart arithmetic and the storefront's money formatting.
// Amounts are summed as decimals; float prices only exist at the document
// boundary.
package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/kareempogba0/B-Laban/internal/entity"
)

// Currency is the unit every price in the store is quoted in.
var Currency = currency.MustParseISO("EGP")

var (
	lakh  = decimal.NewFromInt(100_000)
	crore = decimal.NewFromInt(10_000_000)
)

// Line is a priced cart line.
type Line struct {
	Product   entity.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartDetails is the cart joined with the catalog.
type CartDetails struct {
	Lines             []Line          `json:"lines"`
	Coupon            string          `json:"coupon,omitempty"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	FormattedSubtotal string          `json:"formattedSubtotal"`
}

// Details joins cart items with their products. Items whose product is no
// longer in the catalog are dropped from the result.
func Details(cart entity.CartState, products []entity.Product) CartDetails {
	byID := make(map[string]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	details := CartDetails{Lines: make([]Line, 0, len(cart.Items)), Coupon: cart.Coupon}
	for _, item := range cart.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		details.Lines = append(details.Lines, Line{
			Product:   p,
			Quantity:  item.Quantity,
			LineTotal: LineTotal(p.Price, item.Quantity),
		})
	}
	details.Subtotal = Subtotal(details.Lines)
	details.FormattedSubtotal = FormatCurrency(details.Subtotal)
	return details
}

// LineTotal is price times quantity.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums the line totals.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// OrderTotal sums priced order items.
func OrderTotal(items []entity.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item.Price, item.Quantity))
	}
	return total
}

// printer groups the integer part the way the storefront shows prices:
// the last three digits, then pairs (1,23,45,678.50).
var printer = message.NewPrinter(language.MustParse("en-IN"))

func scale() int {
	s, _ := currency.Standard.Rounding(Currency)
	return s
}

// FormatCurrency renders amount with two decimals, grouped 1,23,456.78 and
// suffixed with the currency code.
func FormatCurrency(amount decimal.Decimal) string {
	return printer.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(scale()))) + " " + Currency.String()
}

// FormatLakhs renders value in lakhs, e.g. "2.5 EGP lakh".
func FormatLakhs(value decimal.Decimal, decimals int32) string {
	return value.Div(lakh).StringFixed(decimals) + " " + Currency.String() + " lakh"
}

// FormatCrores renders value in crores, e.g. "1.25 EGP crore".
func FormatCrores(value decimal.Decimal, decimals int32) string {
	return value.Div(crore).StringFixed(decimals) + " " + Currency.String() + " crore"
}

// FormatSmart picks crores, lakhs or the plain format by magnitude.
func FormatSmart(value decimal.Decimal) string {
	switch {
	case value.GreaterThanOrEqual(crore):
		return FormatCrores(value, 2)
	case value.GreaterThanOrEqual(lakh):
		return FormatLakhs(value, 1)
	default:
		return FormatCurrency(value)
	}
}

// OrderSummary is an order as listed in the shopper's history.
type OrderSummary struct {
	entity.Order
	FormattedTotal string `json:"formattedTotal"`
}

// Summarize attaches a display total to every order. Large totals are
// shortened to lakhs or crores.
func Summarize(orders []entity.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderSummary{
			Order:          o,
			FormattedTotal: FormatSmart(decimal.NewFromFloat(o.TotalAmount)),
		})
	}
	return out
}
