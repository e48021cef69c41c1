package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2015-03", time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2015/09/30", time.Date(2015, 9, 30, 0, 0, 0, 0, time.UTC), true},
		{" 2000 ", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"01/02/2020", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseCPI(t *testing.T) {
	if v, err := ParseCPI(" 1,234.5 "); err != nil || v != 1234.5 {
		t.Fatalf("expected 1234.5, got %v (err=%v)", v, err)
	}
	for _, in := range []string{"", ".", "NA", "null"} {
		if _, err := ParseCPI(in); !errors.Is(err, ErrMissingValue) {
			t.Fatalf("%q expected ErrMissingValue, got %v", in, err)
		}
	}
	if _, err := ParseCPI("abc"); !errors.Is(err, ErrInvalidObservation) {
		t.Fatalf("expected ErrInvalidObservation, got %v", err)
	}
}

func TestRawObservationParse(t *testing.T) {
	o, err := RawObservation{Date: "2015-01-01", Value: "100"}.Parse()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if o.CPI != 100 || o.Year() != 2015 {
		t.Fatalf("unexpected observation: %+v", o)
	}

	bads := []RawObservation{
		{Date: "2015-01-01", Value: "0"},
		{Date: "2015-01-01", Value: "-3"},
		{Date: "nope", Value: "10"},
	}
	for i, r := range bads {
		if _, err := r.Parse(); !errors.Is(err, ErrInvalidObservation) {
			t.Fatalf("case %d expected ErrInvalidObservation, got %v", i, err)
		}
	}
}
