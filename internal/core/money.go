// Package core provides the CPI series, lookups and value conversion.
//
// This file contains functions for parsing user-entered amounts and
// formatting amounts for display.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-entered amount into a non-negative number.
//
// A leading currency symbol and spaces are ignored. Commas are thousands
// separators when the input also contains a dot or when every group after
// the first comma has three digits; a single comma followed by one or two
// digits is a decimal separator. Blank input is zero.
//
// Examples:
//
//	ParseAmount("60000")      -> 60000, nil
//	ParseAmount("₦60,000.50") -> 60000.5, nil
//	ParseAmount("12,5")       -> 12.5, nil
//	ParseAmount("-1")         -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Sc, r)
	})
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}

	switch {
	case strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && isDecimalComma(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		groups := strings.Split(s, ",")
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return 0, ErrInvalidAmount
			}
		}
		s = strings.Join(groups, "")
	}

	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func isDecimalComma(s string) bool {
	i := strings.IndexByte(s, ',')
	frac := len(s) - i - 1
	return frac == 1 || frac == 2
}

// FormatAmount renders v with the currency symbol, thousands separators and
// two decimals, e.g. "₦60,000.00".
func FormatAmount(symbol string, v float64) string {
	cents := int64(math.Round(v * 100))
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := groupThousands(cents/100) + "." + strconv.FormatInt(100+cents%100, 10)[1:]
	if neg {
		return "-" + symbol + s
	}
	return symbol + s
}

// FormatWhole renders v rounded to an integer with thousands separators.
func FormatWhole(v float64) string {
	n := int64(math.Round(v))
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	return groupThousands(n)
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
