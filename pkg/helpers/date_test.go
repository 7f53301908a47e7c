package helpers

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-15":          "2024-01-15",
		"2024-01-15T10:00:00": "2024-01-15",
		"01/15/2024":          "2024-01-15",
		"1/5/2024":            "2024-01-05",
		" Jan 5, 2024 ":       "2024-01-05",
		"":                    "",
		"sometime":            "sometime",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
}
