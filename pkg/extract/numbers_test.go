package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	testCases := []struct {
		raw      string
		expected int64
	}{
		{"3543", 3543},
		{"1,234,567", 1234567},
		{"987.6K", 987600},
		{"12k", 12000},
		{"1.2M", 1200000},
		{"4m", 4000000},
		{"2.1B", 2100000000},
		{" 45 ", 45},
	}

	for _, test := range testCases {
		n, err := parseCount(test.raw)
		require.NoError(t, err, "raw=%q", test.raw)
		require.Equal(t, test.expected, n, "raw=%q", test.raw)
	}
}

func TestParseCountRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.2X", "--3", "K"} {
		_, err := parseCount(raw)
		require.Error(t, err, "raw=%q", raw)
	}
}
