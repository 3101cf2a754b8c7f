// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl_test

import (
	"math"
	"testing"

	"github.com/creachadair/jsonurl"
	"github.com/creachadair/mds/mtest"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"0", true},
		{"-0", true},
		{"1", true},
		{"25", true},
		{"-25", true},
		{"0.5", true},
		{"-0.5", true},
		{"10.25", true},
		{"1e2", true},
		{"1E2", true},
		{"1e+2", true},
		{"1e-2", true},
		{"0.5e10", true},
		{"-1.25E-3", true},
		{"9223372036854775808", true},

		{"", false},
		{"-", false},
		{"00", false},
		{"01", false},
		{"-01", false},
		{"1.", false},
		{".5", false},
		{"1.e2", false},
		{"1e", false},
		{"1e+", false},
		{"1e-", false},
		{"1ee2", false},
		{"0x10", false},
		{"+1", false},
		{"1 ", false},
		{" 1", false},
		{"1.2.3", false},
		{"1e2e3", false},
		{"NaN", false},
		{"Infinity", false},
	}
	for _, test := range tests {
		if _, ok := jsonurl.ParseNumber([]byte(test.input)); ok != test.ok {
			t.Errorf("ParseNumber(%q): got %v, want %v", test.input, ok, test.ok)
		}
	}
}

func TestNumberParts(t *testing.T) {
	tests := []struct {
		input    string
		negative bool
		intPart  jsonurl.Span
		fracPart jsonurl.Span
		expPart  jsonurl.Span
		exp      jsonurl.Exponent
	}{
		{"0", false, jsonurl.Span{Pos: 0, End: 1}, jsonurl.Span{}, jsonurl.Span{}, jsonurl.ExpNone},
		{"-25", true, jsonurl.Span{Pos: 1, End: 3}, jsonurl.Span{}, jsonurl.Span{}, jsonurl.ExpNone},
		{"10.25", false, jsonurl.Span{Pos: 0, End: 2}, jsonurl.Span{Pos: 3, End: 5}, jsonurl.Span{}, jsonurl.ExpNone},
		{"2e5", false, jsonurl.Span{Pos: 0, End: 1}, jsonurl.Span{}, jsonurl.Span{Pos: 2, End: 3}, jsonurl.ExpBare},
		{"2E+5", false, jsonurl.Span{Pos: 0, End: 1}, jsonurl.Span{}, jsonurl.Span{Pos: 3, End: 4}, jsonurl.ExpPositive},
		{"-1.25e-3", true, jsonurl.Span{Pos: 1, End: 2}, jsonurl.Span{Pos: 3, End: 5}, jsonurl.Span{Pos: 7, End: 8}, jsonurl.ExpNegative},
	}
	for _, test := range tests {
		n, ok := jsonurl.ParseNumber([]byte(test.input))
		if !ok {
			t.Errorf("ParseNumber(%q): unexpectedly invalid", test.input)
			continue
		}
		if n.Negative != test.negative {
			t.Errorf("%q negative: got %v, want %v", test.input, n.Negative, test.negative)
		}
		if n.IntPart != test.intPart {
			t.Errorf("%q integer part: got %v, want %v", test.input, n.IntPart, test.intPart)
		}
		if n.FracPart != test.fracPart {
			t.Errorf("%q fractional part: got %v, want %v", test.input, n.FracPart, test.fracPart)
		}
		if n.ExpPart != test.expPart {
			t.Errorf("%q exponent part: got %v, want %v", test.input, n.ExpPart, test.expPart)
		}
		if n.Exp != test.exp {
			t.Errorf("%q exponent form: got %v, want %v", test.input, n.Exp, test.exp)
		}
		if got := n.String(); got != test.input {
			t.Errorf("%q text: got %q", test.input, got)
		}
	}
}

func mustNumber(t *testing.T, s string) jsonurl.NumberText {
	t.Helper()
	n, ok := jsonurl.ParseNumber([]byte(s))
	if !ok {
		t.Fatalf("ParseNumber(%q): unexpectedly invalid", s)
	}
	return n
}

func TestNumberInt64(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"0", 0, true},
		{"25", 25, true},
		{"-25", -25, true},
		{"9223372036854775807", math.MaxInt64, true},
		{"-9223372036854775808", math.MinInt64, true},

		{"9223372036854775808", 0, false}, // out of range
		{"1.5", 0, false},                 // fractional
		{"1e3", 0, false},                 // exponent form
	}
	for _, test := range tests {
		n := mustNumber(t, test.input)
		got, ok := n.Int64()
		if got != test.want || ok != test.ok {
			t.Errorf("Int64(%q): got (%d, %v), want (%d, %v)", test.input, got, ok, test.want, test.ok)
		}
	}
}

func TestNumberBigInt(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"0", "0", true},
		{"-25", "-25", true},
		{"1e3", "1000", true},
		{"-2e2", "-200", true},
		{"2E+5", "200000", true},
		{"9223372036854775808", "9223372036854775808", true},

		{"1.5", "", false},    // fractional
		{"1e-3", "", false},   // negative exponent
		{"1e5000", "", false}, // exponent too large to expand
	}
	for _, test := range tests {
		n := mustNumber(t, test.input)
		z, ok := n.BigInt()
		if ok != test.ok {
			t.Errorf("BigInt(%q): got ok=%v, want %v", test.input, ok, test.ok)
			continue
		}
		if ok && z.String() != test.want {
			t.Errorf("BigInt(%q): got %s, want %s", test.input, z, test.want)
		}
	}
}

func TestNumberFloat64(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0", 0},
		{"0.5", 0.5},
		{"1e2", 100},
		{"-2.5e-1", -0.25},
		{"1e999", math.Inf(1)}, // out of range rounds to infinity
		{"-1e999", math.Inf(-1)},
	}
	for _, test := range tests {
		n := mustNumber(t, test.input)
		if got := n.Float64(); got != test.want {
			t.Errorf("Float64(%q): got %v, want %v", test.input, got, test.want)
		}
	}

	// A zero descriptor has no valid text.
	mtest.MustPanic(t, func() {
		var n jsonurl.NumberText
		n.Float64()
	})
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"25", int64(25)},
		{"-25", int64(-25)},
		{"1e+2", int64(100)},    // exponent expanded exactly
		{"1e18", int64(1e18)},
		{"0.5", 0.5},
		{"1e-2", 0.01},
		{"9223372036854775808", "9223372036854775808"}, // *big.Int, compared by text
	}
	for _, test := range tests {
		n := mustNumber(t, test.input)
		got := n.Value()
		switch want := test.want.(type) {
		case int64:
			if v, ok := got.(int64); !ok || v != want {
				t.Errorf("Value(%q): got %v (%T), want %d", test.input, got, got, want)
			}
		case float64:
			if v, ok := got.(float64); !ok || v != want {
				t.Errorf("Value(%q): got %v (%T), want %v", test.input, got, got, want)
			}
		case string:
			z, ok := got.(interface{ String() string })
			if !ok || z.String() != want {
				t.Errorf("Value(%q): got %v (%T), want %s", test.input, got, got, want)
			}
		}
	}
}

func TestNumberNonFractional(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"1e2", true},
		{"1E+2", true},
		{"-10", true},
		{"1.5", false},
		{"1e-2", false},
	}
	for _, test := range tests {
		n := mustNumber(t, test.input)
		if got := n.IsNonFractional(); got != test.want {
			t.Errorf("IsNonFractional(%q): got %v, want %v", test.input, got, test.want)
		}
	}
}
