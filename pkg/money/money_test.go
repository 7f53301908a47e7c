package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"25.00", "25"},
		{"+ $25.00", "25"},
		{"- $25.00", "-25"},
		{"$1,025.50", "1025.5"},
		{" 7 ", "7"},
		{"(12.00)", "-12"},
		{"-$0.99", "-0.99"},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "  ", "$", "abc", "1.2.3", "12 USD"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}
