package core

import "fmt"

// Convert maps amount between two price levels: amount × cpiTo / cpiFrom.
func Convert(amount, cpiFrom, cpiTo float64) (float64, error) {
	if cpiFrom <= 0 {
		return 0, fmt.Errorf("%w: cpi_from=%v", ErrDivisionByZero, cpiFrom)
	}
	return amount * cpiTo / cpiFrom, nil
}

// PercentChange returns (newValue − oldValue) / oldValue × 100.
func PercentChange(newValue, oldValue float64) (float64, error) {
	if oldValue <= 0 {
		return 0, fmt.Errorf("%w: old value=%v", ErrDivisionByZero, oldValue)
	}
	return (newValue - oldValue) / oldValue * 100, nil
}

// Total sums the values of amounts. An empty mapping totals zero.
func Total(amounts map[string]float64) float64 {
	var sum float64
	for _, v := range amounts {
		sum += v
	}
	return sum
}
