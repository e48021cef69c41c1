package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"60000", 60000, true},
		{"60,000", 60000, true},
		{"1,234,567.89", 1234567.89, true},
		{"₦60,000.50", 60000.5, true},
		{"$ 10", 10, true},
		{"12,5", 12.5, true},
		{"12,50", 12.5, true},
		{"0", 0, true},
		{"", 0, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1,2345", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "₦0.00"},
		{15000, "₦15,000.00"},
		{1234567.891, "₦1,234,567.89"},
		{0.05, "₦0.05"},
		{-999.5, "-₦999.50"},
	}
	for _, tc := range cases {
		if got := FormatAmount("₦", tc.in); got != tc.out {
			t.Fatalf("%v expected %q, got %q", tc.in, tc.out, got)
		}
	}
	if got := FormatWhole(1234.6); got != "1,235" {
		t.Fatalf("unexpected whole format %q", got)
	}
}
