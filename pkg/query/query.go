// Copyright (c) 2026 Dust & Gold. All rights reserved.

/*
Package query parses multi-value URL query parameters into Go slices.

The catalog's ?tags= filter and the EXTRA_ORIGINS configuration value are
both comma-separated lists; this package turns them into clean slices
without the caller touching strings.Split edge cases.
*/
package query

import (
	"strconv"
	"strings"
)

// IntSlice converts repeated query values into integers. Values that do
// not parse are dropped rather than failing the whole request.
func IntSlice(values []string) []int {
	var parsed []int
	for _, value := range values {
		if number, err := strconv.Atoi(value); err == nil {
			parsed = append(parsed, number)
		}
	}
	return parsed
}

// StringSlice splits one comma-separated value into trimmed, non-empty
// entries. An empty input yields nil, so callers can test len() directly.
func StringSlice(value string) []string {
	if value == "" {
		return nil
	}
	var parsed []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parsed = append(parsed, trimmed)
		}
	}
	return parsed
}
