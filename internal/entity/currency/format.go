package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// zeroDecimal currencies have no minor unit worth showing.
var zeroDecimal = map[Code]bool{IDR: true, JPY: true, KRW: true, VND: true}

// Format renders an amount with thousands separators, e.g. "1,200,000 IDR" or "12.50 USD".
func Format(amount float64, c Code) string {
	if zeroDecimal[c] {
		return printer.Sprintf("%.0f %s", amount, c)
	}
	return printer.Sprintf("%.2f %s", amount, c)
}
