package currency

import (
	"fmt"
	"math"
	"strings"
)

// zeroDecimalCurrencies are quoted in whole units by the upstream
// providers; everything else keeps two decimal places.
var zeroDecimalCurrencies = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"CLP": true,
	"VND": true,
}

// Format renders an amount with its currency code and thousands
// separators, e.g. "USD 1,299.50" or "IDR 1.250.000".
func Format(amount float64, code string) string {
	code = strings.ToUpper(code)
	if code == "" {
		code = "USD"
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	var body string
	if zeroDecimalCurrencies[code] {
		intStr := fmt.Sprintf("%.0f", math.Round(amount))
		body = addThousandsSeparator(intStr, ".")
	} else {
		intStr := fmt.Sprintf("%.0f", math.Floor(amount))
		cents := int(math.Round((amount - math.Floor(amount)) * 100))
		if cents == 100 {
			intStr = fmt.Sprintf("%.0f", math.Floor(amount)+1)
			cents = 0
		}
		body = fmt.Sprintf("%s.%02d", addThousandsSeparator(intStr, ","), cents)
	}

	result := code + " " + body
	if negative {
		result = "-" + result
	}
	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
