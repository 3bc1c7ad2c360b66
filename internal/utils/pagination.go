// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page bounds used by list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampPage parses raw page and page_size query values and bounds them to
// [1, ∞) and [1, MaxPageSize]. Empty or malformed values take the defaults.
func ClampPage(rawPage, rawSize string) (page, pageSize int) {
	page = AtoiDefault(rawPage, DefaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = AtoiDefault(rawSize, DefaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// PageWindow returns the [lo, hi) slice bounds of the given page within a
// collection of total elements. Pages past the end yield lo == hi == total.
func PageWindow(total, page, pageSize int) (lo, hi int) {
	if total <= 0 || page < 1 || pageSize < 1 {
		return 0, 0
	}
	lo = (page - 1) * pageSize
	if lo > total {
		return total, total
	}
	hi = lo + pageSize
	if hi > total {
		hi = total
	}
	return lo, hi
}
