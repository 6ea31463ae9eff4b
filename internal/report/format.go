package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers for a locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a formatter for a BCP 47 locale such as "en-IN".
// Unparseable locales fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{p: message.NewPrinter(tag)}
}

// Amount formats a rupee amount rounded to whole rupees with digit grouping.
func (f *Formatter) Amount(d decimal.Decimal) string {
	return "INR " + f.p.Sprintf("%d", d.Round(0).IntPart())
}

// Int formats an integer with digit grouping.
func (f *Formatter) Int(n int) string {
	return f.p.Sprintf("%d", n)
}

// Percent formats a percentage with one decimal.
func (f *Formatter) Percent(v float64) string {
	return f.p.Sprintf("%.1f%%", v)
}
