// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl_test

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/creachadair/jsonurl"
	"github.com/google/go-cmp/cmp"
)

func mustMarshal(t *testing.T, v any, opts *jsonurl.Options) string {
	t.Helper()
	got, err := jsonurl.Marshal(v, opts)
	if err != nil {
		t.Fatalf("Marshal %+v failed: %v", v, err)
	}
	return got
}

func TestMarshal(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},

		{25, "25"},
		{int64(-3), "-3"},
		{uint(7), "7"},
		{uint64(1 << 40), "1099511627776"},
		{1.5, "1.5"},
		{float64(100000), "100000"},
		{float32(0.25), "0.25"},
		{1e-5, "1e-05"},
		{1e21, "1e21"}, // the sign of a positive exponent is dropped
		{json.Number("1e+2"), "1e+2"},

		{"", "''"},
		{"hello", "hello"},
		{"hello world", "hello+world"},
		{"don't", "don't"},
		{"e", "e"},

		// Strings that would read back as another type are quoted.
		{"true", "'true'"},
		{"false", "'false'"},
		{"null", "'null'"},
		{"25", "'25'"},
		{"1e 2", "'1e+2'"},

		// Reserved characters force quoting; a leading quote or a
		// character with no quoted form is percent-encoded.
		{"a:b", "'a:b'"},
		{"a,b", "'a,b'"},
		{"a(b)c", "'a(b)c'"},
		{"a=b", "'a=b'"},
		{"'hi'", "'%27hi%27'"},
		{"1e+2", "'1e%2B2'"},
		{"%", "'%25'"},
		{"café", "'caf%C3%A9'"},

		{map[string]any{}, "()"},
		{map[string]any{"a": int64(1)}, "(a:1)"},
		{map[string]any{"b": int64(2), "a": int64(1)}, "(a:1,b:2)"}, // keys sorted
		{map[string]any{"": int64(1)}, "('':1)"},
		{map[string]any{"true": int64(1)}, "(true:1)"}, // keys never need lookalike protection
		{[]any{}, "()"},
		{[]any{int64(1), "x"}, "(1,x)"},
		{[]any{int64(1), []any{int64(2), int64(3)}, int64(4)}, "(1,(2,3),4)"},
		{map[string]any{"a": []any{true, nil}}, "(a:(true,null))"},
		{map[string]any{"a": map[string]any{}}, "(a:())"},
	}
	for _, test := range tests {
		got, err := jsonurl.Marshal(test.input, nil)
		if err != nil {
			t.Errorf("Marshal %+v failed: %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("Marshal %+v: got %#q, want %#q", test.input, got, test.want)
		}
	}

	t.Run("BigInt", func(t *testing.T) {
		z, ok := new(big.Int).SetString("9223372036854775808", 10)
		if !ok {
			t.Fatal("SetString failed")
		}
		if got := mustMarshal(t, z, nil); got != "9223372036854775808" {
			t.Errorf("Marshal: got %#q", got)
		}
	})

	t.Run("Append", func(t *testing.T) {
		got, err := jsonurl.Append([]byte("x="), 25, nil)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if string(got) != "x=25" {
			t.Errorf("Append: got %#q, want %#q", got, "x=25")
		}
	})
}

func TestMarshalErrors(t *testing.T) {
	bad := []any{
		math.NaN(),
		math.Inf(1),
		math.Inf(-1),
		json.Number("bogus"),
		json.Number("01"),
		make(chan int),
		[]int{1, 2}, // only []any is marshalable
		map[string]any{"a": make(chan int)},
		[]any{"ok", func() {}},
		"bad utf8 \xc3",
	}
	for _, v := range bad {
		if got, err := jsonurl.Marshal(v, nil); err == nil {
			t.Errorf("Marshal %+v: got %#q, want error", v, got)
		}
	}
}

func TestMarshalAQF(t *testing.T) {
	opts := &jsonurl.Options{AQF: true}
	tests := []struct {
		input any
		want  string
	}{
		{nil, "null"},
		{true, "true"},
		{int64(25), "25"},

		{"", "!e"},
		{"hello", "hello"},
		{"a b", "a+b"},
		{"e", "e"},

		// Structural characters, "!", and "+" take "!" escapes.
		{"(a)", "!(a!)"},
		{"a,b", "a!,b"},
		{"a:b", "a!:b"},
		{"a!b", "a!!b"},
		{"1e+1", "1e!+1"},
		{"!e", "!!e"},

		// Lookalikes escape their first character; when it has no "!"
		// form a percent escape is used instead.
		{"1e2", "!1e2"},
		{"-1", "!-1"},
		{"true", "%74rue"},
		{"false", "%66alse"},
		{"null", "%6Eull"},

		// Quotes are ordinary characters in AQF text.
		{"'hi'", "'hi'"},

		{map[string]any{"": int64(1)}, "(!e:1)"},
		{[]any{"true", int64(1)}, "(%74rue,1)"},
	}
	for _, test := range tests {
		got, err := jsonurl.Marshal(test.input, opts)
		if err != nil {
			t.Errorf("Marshal %+v failed: %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("Marshal %+v: got %#q, want %#q", test.input, got, test.want)
		}
	}
}

func TestMarshalOptions(t *testing.T) {
	t.Run("ImpliedStrings", func(t *testing.T) {
		opts := &jsonurl.Options{ImpliedStringLiterals: true}
		tests := []struct {
			input any
			want  string
		}{
			{"true", "true"}, // no classification on reparse, no quoting
			{"25", "25"},
			{"", ""},
			{nil, ""}, // null has no spelling; it coerces to the empty string
			{"a b", "a+b"},
			{"'x'", "'x'"},
			{map[string]any{"a": "", "b": nil}, "(a:,b:)"},
		}
		for _, test := range tests {
			if got := mustMarshal(t, test.input, opts); got != test.want {
				t.Errorf("Marshal %+v: got %#q, want %#q", test.input, got, test.want)
			}
		}
	})

	t.Run("NoEmptyComposite", func(t *testing.T) {
		opts := &jsonurl.Options{NoEmptyComposite: true}
		if got := mustMarshal(t, map[string]any{}, opts); got != "(:)" {
			t.Errorf("Empty object: got %#q, want %#q", got, "(:)")
		}
		if got := mustMarshal(t, []any{}, opts); got != "()" {
			t.Errorf("Empty array: got %#q, want %#q", got, "()")
		}
	})

	t.Run("SkipNulls", func(t *testing.T) {
		opts := &jsonurl.Options{SkipNulls: true}
		tests := []struct {
			input any
			want  string
		}{
			{map[string]any{"a": nil, "b": int64(1)}, "(b:1)"},
			{map[string]any{"a": nil}, "()"},
			{[]any{nil, int64(1), nil}, "(1)"},
			{[]any{nil}, "()"},
		}
		for _, test := range tests {
			if got := mustMarshal(t, test.input, opts); got != test.want {
				t.Errorf("Marshal %+v: got %#q, want %#q", test.input, got, test.want)
			}
		}
	})
}

func TestMarshalImplied(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		m := map[string]any{"b": "x y", "a": int64(1), "c": []any{int64(2), int64(3)}}
		got, err := jsonurl.MarshalImpliedObject(m, nil)
		if err != nil {
			t.Fatalf("MarshalImpliedObject failed: %v", err)
		}
		if want := "a:1,b:x+y,c:(2,3)"; got != want {
			t.Errorf("Got %#q, want %#q", got, want)
		}

		// Form encoding changes only the top-level separators.
		got, err = jsonurl.MarshalImpliedObject(m, &jsonurl.Options{FormURLEncoded: true})
		if err != nil {
			t.Fatalf("MarshalImpliedObject failed: %v", err)
		}
		if want := "a=1&b=x+y&c=(2,3)"; got != want {
			t.Errorf("Got %#q, want %#q", got, want)
		}

		if got, err := jsonurl.MarshalImpliedObject(nil, nil); err != nil || got != "" {
			t.Errorf("Empty: got (%#q, %v), want (\"\", nil)", got, err)
		}
	})

	t.Run("Array", func(t *testing.T) {
		vs := []any{int64(1), "two", []any{int64(3)}}
		got, err := jsonurl.MarshalImpliedArray(vs, nil)
		if err != nil {
			t.Fatalf("MarshalImpliedArray failed: %v", err)
		}
		if want := "1,two,(3)"; got != want {
			t.Errorf("Got %#q, want %#q", got, want)
		}

		got, err = jsonurl.MarshalImpliedArray(vs, &jsonurl.Options{FormURLEncoded: true})
		if err != nil {
			t.Fatalf("MarshalImpliedArray failed: %v", err)
		}
		if want := "1&two&(3)"; got != want {
			t.Errorf("Got %#q, want %#q", got, want)
		}

		if got, err := jsonurl.MarshalImpliedArray(nil, nil); err != nil || got != "" {
			t.Errorf("Empty: got (%#q, %v), want (\"\", nil)", got, err)
		}
	})
}

// Strings chosen to stress the quoting and escaping rules must parse
// back to themselves in every variant.
func TestMarshalStringRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"hello world",
		"true",
		"null",
		"25",
		"1e+2",
		"1e 2",
		"-",
		"don't",
		"'quoted'",
		"a:b,c:(d)",
		"a&b=c",
		"!e",
		"a!b",
		"%41",
		"café",
		"tab\tnewline\n",
	}
	variants := []*jsonurl.Options{
		nil,
		{AQF: true},
		{ImpliedStringLiterals: true},
		{AQF: true, ImpliedStringLiterals: true},
	}
	for _, opts := range variants {
		for _, s := range inputs {
			text, err := jsonurl.Marshal(s, opts)
			if err != nil {
				t.Errorf("Marshal %q (%+v) failed: %v", s, opts, err)
				continue
			}
			v, err := jsonurl.Parse(text, opts)
			if err != nil {
				t.Errorf("Parse %#q (%+v) failed: %v", text, opts, err)
				continue
			}
			if v != any(s) {
				t.Errorf("Round trip %q via %#q: got %#v", s, text, v)
			}
		}
	}
}

func TestMarshalValueRoundTrip(t *testing.T) {
	values := []any{
		nil,
		true,
		int64(25),
		-0.5,
		"x y z",
		map[string]any{"true": "false", "n": nil},
		// The empty composite realizes as a map on reparse, so only an
		// empty map survives unchanged.
		[]any{int64(1), map[string]any{}, map[string]any{"a": ""}},
		map[string]any{"q": []any{"1e+2", int64(100)}},
	}
	for _, v := range values {
		text, err := jsonurl.Marshal(v, nil)
		if err != nil {
			t.Errorf("Marshal %+v failed: %v", v, err)
			continue
		}
		got, err := jsonurl.Parse(text, nil)
		if err != nil {
			t.Errorf("Parse %#q failed: %v", text, err)
			continue
		}
		if diff := cmp.Diff(v, got); diff != "" {
			t.Errorf("Round trip of %+v via %#q: (-want, +got)\n%s", v, text, diff)
		}
	}
}
