// Package money formatea montos decimales para presentación.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatUSD devuelve el monto con separador de miles y dos decimales, ej: "$1,250.50".
// Solo para mostrar: los cálculos siempre se hacen con decimal.
func FormatUSD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Round(2).Float64()
	return sign + "$" + printer.Sprint(number.Decimal(f, number.Scale(2)))
}
