package utils

import (
	"errors"
	"strconv"
	"strings"
)

var ErrNotPositiveInteger = errors.New("value is not a positive integer")

// ParsePositiveInt accepts base-10 integers in [1, math.MaxInt32], the range of the
// INTEGER id columns. Signs, decimals and surrounding whitespace are rejected.
func ParsePositiveInt(raw string) (int, error) {
	if raw == "" || strings.TrimSpace(raw) != raw || strings.HasPrefix(raw, "+") {
		return 0, ErrNotPositiveInteger
	}
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || value <= 0 {
		return 0, ErrNotPositiveInteger
	}
	return int(value), nil
}

// ParseLimit returns fallback for an empty value and otherwise requires an integer
// in [lo, hi].
func ParseLimit(raw string, fallback, lo, hi int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := ParsePositiveInt(raw)
	if err != nil || value < lo || value > hi {
		return 0, ErrNotPositiveInteger
	}
	return value, nil
}
