// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package percent_test

import (
	"errors"
	"testing"

	"github.com/creachadair/jsonurl/internal/percent"
	"go4.org/mem"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		input     string
		plusSpace bool
		want      rune
		size      int
	}{
		{"a", false, 'a', 1},
		{"~", false, '~', 1},
		{"+", false, '+', 1},
		{"+", true, ' ', 1},
		{"%20", false, ' ', 3},
		{"%41bc", false, 'A', 3},
		{"%7e", false, '~', 3},
		{"%C3%A9", false, 'é', 6},
		{"%c3%a9", false, 'é', 6},
		{"%E2%82%AC", false, '€', 9},
		{"%F0%9F%99%82", false, '\U0001F642', 12},
	}
	for _, tc := range tests {
		got, size, err := percent.Decode(mem.S(tc.input), 0, tc.plusSpace)
		if err != nil {
			t.Errorf("Decode %q: unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want || size != tc.size {
			t.Errorf("Decode %q: got %q/%d, want %q/%d", tc.input, got, size, tc.want, tc.size)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"%", percent.ErrBadEscape},        // missing digits
		{"%4", percent.ErrBadEscape},       // missing digit
		{"%4g", percent.ErrBadEscape},      // invalid digit
		{"%%41", percent.ErrBadEscape},     // percent is not a digit
		{"%C3", percent.ErrBadUTF8},        // missing continuation
		{"%C3a", percent.ErrBadUTF8},       // unescaped continuation
		{"%C3%", percent.ErrBadEscape},     // truncated continuation
		{"%C3%C3", percent.ErrBadUTF8},     // invalid continuation value
		{"%80", percent.ErrBadUTF8},        // bare continuation byte
		{"%C0%80", percent.ErrBadUTF8},     // overlong encoding of NUL
		{"%E0%80%A0", percent.ErrBadUTF8},  // overlong encoding of space
		{"%ED%A0%80", percent.ErrBadUTF8},  // surrogate half
		{"%F4%90%80%80", percent.ErrBadUTF8}, // beyond U+10FFFF
		{"%FA%80%80%80%80", percent.ErrBadUTF8}, // 5-byte lead
		{"%FF", percent.ErrBadUTF8},        // invalid lead byte
	}
	for _, tc := range tests {
		if _, _, err := percent.Decode(mem.S(tc.input), 0, false); !errors.Is(err, tc.want) {
			t.Errorf("Decode %q: got error %v, want %v", tc.input, err, tc.want)
		}
	}
}

func TestAppendString(t *testing.T) {
	table := percent.NewTable("abcdefghijklmnopqrstuvwxyz0123456789-._~")
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"a b", "a+b"},
		{"a+b", "a%2Bb"},
		{"50%", "50%25"},
		{"étude", "%C3%A9tude"},
		{"€10", "%E2%82%AC10"},
		{"a\U0001F642z", "a%F0%9F%99%82z"},
		{"UP", "%55%50"}, // uppercase not in the pass set
	}
	for _, tc := range tests {
		got, err := percent.AppendString(nil, mem.S(tc.input), table)
		if err != nil {
			t.Errorf("AppendString %q: unexpected error: %v", tc.input, err)
			continue
		}
		if string(got) != tc.want {
			t.Errorf("AppendString %q: got %q, want %q", tc.input, got, tc.want)
		}
	}

	if got, err := percent.AppendString(nil, mem.S("bad\xffbyte"), table); err == nil {
		t.Errorf("AppendString invalid UTF-8: got %q, want error", got)
	}
}

func TestAppendRune(t *testing.T) {
	table := percent.NewTable("az")
	if _, err := percent.AppendRune(nil, 0xD800, table); err == nil {
		t.Error("AppendRune surrogate: want error")
	}
	got, err := percent.AppendRune([]byte("x="), 'é', table)
	if err != nil {
		t.Fatalf("AppendRune: unexpected error: %v", err)
	}
	if want := "x=%C3%A9"; string(got) != want {
		t.Errorf("AppendRune: got %q, want %q", got, want)
	}
}
