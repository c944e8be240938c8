package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},       // zero rate is allowed
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"85", 8500, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyApplyBps(t *testing.T) {
	cases := []struct {
		cents int64
		bps   int64
		want  int64
	}{
		{10000, 2100, 2100}, // 21% of 100.00
		{10000, 0, 0},       // no tax
		{999, 2100, 210},    // 209.79 rounds up
		{100, 50, 1},        // 0.5 rounds up
		{100, 49, 0},        // 0.49 rounds down
		{-10000, 2100, -2100},
	}
	for _, tc := range cases {
		got := Money{Cents: tc.cents}.ApplyBps(tc.bps)
		if got.Cents != tc.want {
			t.Errorf("ApplyBps(%d, %d) = %d, want %d", tc.cents, tc.bps, got.Cents, tc.want)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{-1234, "-12.34"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyFormatCurrency(t *testing.T) {
	if got := (Money{Cents: 1234}).FormatCurrency("EUR"); got != "€12.34" {
		t.Errorf("got %q", got)
	}
	if got := (Money{Cents: -1234}).FormatCurrency("USD"); got != "-$12.34" {
		t.Errorf("got %q", got)
	}
	if got := (Money{Cents: 1234}).FormatCurrency("CHF"); got != "CHF 12.34" {
		t.Errorf("got %q", got)
	}
}
