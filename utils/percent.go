package utils

import "math"

// CalculatePercentage returns part as a percentage of total rounded to two decimals.
// Returns 0 if total is 0 or negative.
func CalculatePercentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
