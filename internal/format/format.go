package format

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	defaultSymbol = "Rp"
)

// Formatter renders whole-unit amounts as localized currency strings.
// Amounts are expected to be non-negative; negative input yields unspecified output.
type Formatter struct {
	tag    language.Tag
	symbol string
}

// New constructs a Formatter using lang for digit grouping and symbol as the prefix.
func New(lang language.Tag, symbol string) *Formatter {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = defaultSymbol
	}
	return &Formatter{tag: lang, symbol: symbol}
}

// Parse builds a Formatter from a BCP 47 language string, falling back to Indonesian.
func Parse(lang, symbol string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		tag = language.Indonesian
	}
	return New(tag, symbol)
}

var rupiah = New(language.Indonesian, defaultSymbol)

// Rupiah returns the shared Indonesian Rupiah formatter.
func Rupiah() *Formatter { return rupiah }

// FmtRupiah formats a whole Rupiah amount.
// Example: FmtRupiah(1000000) => "Rp 1.000.000"
func FmtRupiah(amount int64) string {
	return rupiah.Format(amount)
}

// Format renders amount with the symbol prefix, grouped thousands and no fraction digits.
func (f *Formatter) Format(amount int64) string {
	if f == nil {
		return FmtRupiah(amount)
	}
	p := message.NewPrinter(f.tag)
	return f.symbol + " " + p.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
}

// Symbol returns the currency prefix.
func (f *Formatter) Symbol() string { return f.symbol }

// Year returns the four digit year of t, used by the footer copyright line.
func Year(t time.Time) string {
	return strconv.Itoa(t.Year())
}
