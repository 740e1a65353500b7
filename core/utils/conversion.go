package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CleanCell trims surrounding whitespace and a leading UTF-8 byte order mark
// from a raw cell or field value.
func CleanCell(val string) string {
	return strings.TrimSpace(strings.TrimPrefix(val, "\uFEFF"))
}

// ParseQuantity converts a quantity cell to a non-negative int.
// Empty cells count as zero. Integral floats ("3.0") are accepted because
// spreadsheet applications often store whole numbers that way.
func ParseQuantity(val string) (int, error) {
	s := CleanCell(val)
	if s == "" {
		return 0, nil
	}

	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 {
			return 0, fmt.Errorf("quantity %q is negative", val)
		}
		return i, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("quantity %q is not a number", val)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("quantity %q is not a whole number", val)
	}
	if f < 0 {
		return 0, fmt.Errorf("quantity %q is negative", val)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("quantity %q is too large", val)
	}
	return int(f), nil
}

// ToBool converts a cell value to bool.
// It accepts "1", "true", "yes" and "y" in any case; ok is false when the
// value is not a recognised boolean at all.
func ToBool(val string) (b bool, ok bool) {
	switch strings.ToLower(CleanCell(val)) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n", "":
		return false, true
	default:
		return false, false
	}
}
