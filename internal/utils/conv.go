package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// PageParam reads a 1-based page number; anything unusable means page 1.
func PageParam(s string) int {
	if p := StringToInt(s); p > 1 {
		return p
	}
	return 1
}
