package catalog

import (
	"strconv"
	"strings"
)

// ParseCapacityMW parses a capacity value into MW. It accepts German decimal
// commas and the unit suffixes found in the raw catalogs (GW/MW/kW/W, with or
// without a trailing "p" for peak). Bare numbers above 10000 are assumed to be
// kW. Returns false for values that cannot be parsed; callers skip the record.
func ParseCapacityMW(value string) (float64, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, false
	}
	value = strings.ReplaceAll(value, ",", ".")

	parse := func(s string) (float64, bool) {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	switch {
	case strings.Contains(value, "gw"):
		n, ok := parse(strings.Replace(value, "gw", "", 1))
		return n * 1000, ok
	case strings.Contains(value, "mw"):
		n, ok := parse(strings.Replace(strings.Replace(value, "mw", "", 1), "p", "", 1))
		return n, ok
	case strings.Contains(value, "kw"):
		n, ok := parse(strings.Replace(strings.Replace(value, "kw", "", 1), "p", "", 1))
		return n / 1000, ok
	case strings.Contains(value, "w"):
		n, ok := parse(strings.Replace(value, "w", "", 1))
		return n / 1e6, ok
	default:
		n, ok := parse(value)
		if !ok {
			return 0, false
		}
		if n > 10000 {
			return n / 1000, true
		}
		return n, true
	}
}

// ParseMW parses a plain numeric MW figure, tolerating the German decimal
// comma. Missing or unparsable values yield zero, matching the registry
// convention that an absent capacity field means none booked.
func ParseMW(value string) float64 {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if value == "" {
		return 0
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return n
}
