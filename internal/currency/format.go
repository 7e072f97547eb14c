package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type numberStyle struct {
	prefix string
	tag    language.Tag
}

var styles = map[Code]numberStyle{
	BRL: {prefix: "R$ ", tag: language.BrazilianPortuguese},
	USD: {prefix: "US$ ", tag: language.AmericanEnglish},
	EUR: {prefix: "€ ", tag: language.German},
}

const btcPlaces = 6

var flags = map[Code]string{
	USD: "🇺🇸",
	EUR: "🇪🇺",
	BTC: "₿",
	BRL: "🇧🇷",
}

// Format renders amount the way it is displayed for code: locale grouping
// with two to three fraction digits for fiat, six fixed places for BTC.
func Format(amount decimal.Decimal, code Code) string {
	if code == BTC {
		return "₿ " + amount.StringFixed(btcPlaces)
	}
	style, ok := styles[code]
	if !ok {
		return amount.String()
	}
	p := message.NewPrinter(style.tag)
	return style.prefix + p.Sprint(number.Decimal(
		amount.InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(3),
	))
}

// Flag returns the symbol shown next to a currency code.
func Flag(code Code) string {
	return flags[code]
}
