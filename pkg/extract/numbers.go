package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// parseCount converts the shorthand counters rendered on post pages
// ("1.2M", "987.6K", "3543") into absolute values. Suffix parsing uses
// the displayed precision, so "1.2M" becomes exactly 1200000.
func parseCount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty count")
	}
	s = strings.ReplaceAll(s, ",", "")

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "B"), strings.HasSuffix(s, "b"):
		multiplier = 1_000_000_000
		s = s[:len(s)-1]
	}

	if multiplier == 1 {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid count %q: %w", raw, err)
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", raw, err)
	}
	return int64(f * float64(multiplier)), nil
}
