// Package format renders values for display.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// MoneyFormatter renders amounts in a currency using a locale's grouping
// and decimal separators. Amounts stay decimal throughout.
type MoneyFormatter struct {
	symbol  string
	group   string
	decimal string
}

// NewMoneyFormatter returns a formatter for lang and an ISO 4217 currency code.
// Unknown codes are printed as a prefix, e.g. "CHF 12.00".
func NewMoneyFormatter(lang language.Tag, currency string) *MoneyFormatter {
	currency = strings.ToUpper(currency)
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	group, dec := separators(message.NewPrinter(lang))
	return &MoneyFormatter{
		symbol:  symbol,
		group:   group,
		decimal: dec,
	}
}

// separators reads the locale's separators off a rendered sample number.
// Locales without ASCII digits fall back to "," and ".".
func separators(p *message.Printer) (group, dec string) {
	s := p.Sprint(number.Decimal(1234567.5, number.Scale(1)))
	one, two := strings.Index(s, "1"), strings.Index(s, "2")
	seven, five := strings.LastIndex(s, "7"), strings.LastIndex(s, "5")
	if one < 0 || two <= one || seven < 0 || five <= seven {
		return ",", "."
	}
	return s[one+1 : two], s[seven+1 : five]
}

var defaultMoney = NewMoneyFormatter(language.AmericanEnglish, "USD")

// Format renders amount rounded half-to-even to two decimals. Nil renders
// as zero.
func (f *MoneyFormatter) Format(amount *decimal.Decimal) string {
	v := decimal.Zero
	if amount != nil {
		v = amount.RoundBank(2)
	}
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	whole, frac, _ := strings.Cut(v.StringFixed(2), ".")
	return sign + f.symbol + groupDigits(whole, f.group) + f.decimal + frac
}

func groupDigits(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Money renders amount as US dollars, e.g. $1,234.50
func Money(amount *decimal.Decimal) string {
	return defaultMoney.Format(amount)
}
