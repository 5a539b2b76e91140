package util

import (
	"fmt"
	"math"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Round Method to round to 2 decimals
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}

// HumanBytes formats a byte count with a binary unit, e.g. 9.77 KiB.
func HumanBytes[T ~int | ~int64](bytes T) string {
	const unit = 1024
	b := float64(bytes)
	if b < unit {
		return fmt.Sprintf("%d B", int64(bytes))
	}

	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	i := -1
	for b >= unit && i < len(units)-1 {
		b /= unit
		i++
	}
	return fmt.Sprintf("%.2f %s", Round(b), units[i])
}

// ShortID returns the first 8 characters of id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
