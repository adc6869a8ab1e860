package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.French)

// Format renders an amount as French euro text, e.g. 100 -> "100,00 €".
func Format(amount float64) string {
	return printer.Sprintf("%.2f €", amount)
}
