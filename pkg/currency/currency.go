// Package currency rewrites displayed listing prices using a static rate
// table. Rates are deliberately approximate; swapping in a live-rate source
// only means replacing the table.
package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dealscope/dealscope/pkg/listing"
)

// Default is the display currency sources are assumed to report in.
const Default = "GBP"

var symbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// ratePair is a directed conversion between two currencies.
type ratePair struct {
	from string
	to   string
}

// rates is a fixed pairwise table covering the supported currencies in
// both directions.
var rates = map[ratePair]float64{
	{"GBP", "USD"}: 1.27,
	{"USD", "GBP"}: 0.79,
	{"GBP", "EUR"}: 1.17,
	{"EUR", "GBP"}: 0.85,
	{"USD", "EUR"}: 0.92,
	{"EUR", "USD"}: 1.09,
}

// Supported reports whether a currency code has a symbol and rate entries.
func Supported(code string) bool {
	_, ok := symbols[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Convert rewrites each listing's display price into the target currency.
// Unparsable prices and unknown rate pairs pass through unchanged; that is
// expected, not an error. A target equal to the default display currency is
// a no-op.
func Convert(items []listing.Scored, target string) []listing.Scored {
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" || target == Default {
		return items
	}
	targetSymbol, ok := symbols[target]
	if !ok {
		return items
	}

	out := make([]listing.Scored, len(items))
	for i, item := range items {
		out[i] = item

		current := detectCurrency(item.Price)
		if current == target {
			continue
		}

		amount, ok := parseAmount(item.Price)
		if !ok {
			continue
		}
		rate, ok := rates[ratePair{current, target}]
		if !ok {
			continue
		}

		converted := math.Round(amount * rate)
		out[i].Price = targetSymbol + fmt.Sprintf("%.0f", converted)
		out[i].PriceAmount = &converted
	}
	return out
}

// detectCurrency infers a price string's currency from its symbol. Only $
// and € are recognized as non-default; anything else is assumed to be the
// default currency.
func detectCurrency(price string) string {
	switch {
	case strings.Contains(price, "$"):
		return "USD"
	case strings.Contains(price, "€"):
		return "EUR"
	default:
		return Default
	}
}

func parseAmount(price string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' {
			return r
		}
		return -1
	}, price)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
