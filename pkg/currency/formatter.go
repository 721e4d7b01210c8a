package currency

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
)

// Format renders amount with the currency code and its standard number of
// decimals, using "." for thousands and "," for decimals: "COP 1.250.000",
// "USD 1.234,50". Unknown codes get two decimals.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	scale := Scale(code)

	factor := math.Pow(10, float64(scale))
	rounded := math.Round(amount*factor) / factor

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intPart := math.Floor(rounded)
	intStr := fmt.Sprintf("%.0f", intPart)
	formatted := addThousandsSeparator(intStr, ".")

	if scale > 0 {
		frac := math.Round((rounded - intPart) * factor)
		formatted += "," + fmt.Sprintf("%0*d", scale, int64(frac))
	}

	result := formatted
	if code != "" {
		result = code + " " + formatted
	}
	if negative {
		result = "-" + result
	}

	return result
}

// Scale is the number of decimals used for code.
func Scale(code string) int {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
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
