// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package percent implements the character encoding layer of JSON→URL
// text: percent escapes (%XX) and the form-encoding convention that a
// plus sign stands for a space.
//
// Decoding operates on raw octets. A percent escape whose octet has the
// high bit set introduces a UTF-8 encoded sequence, all of whose octets
// must themselves be percent escaped; the decoder reassembles the code
// point and rejects malformed, overlong, surrogate, and out-of-range
// sequences.
package percent

import (
	"errors"
	"unicode"

	"go4.org/mem"
)

var (
	// ErrBadEscape reports a percent sign not followed by two hex digits.
	ErrBadEscape = errors.New("invalid percent escape")

	// ErrBadUTF8 reports percent-escaped octets that do not form a valid
	// UTF-8 sequence.
	ErrBadUTF8 = errors.New("invalid UTF-8 escape")

	// ErrBadRune reports an input rune that has no encoded form.
	ErrBadRune = errors.New("invalid rune")
)

// Decode decodes a single encoded unit of src beginning at offset pos,
// and returns the resulting rune along with the number of input bytes it
// occupies. A byte that is not "%" or "+" decodes as itself. If plusSpace
// is true a "+" decodes as a space, otherwise as itself.
//
// The caller must ensure pos < src.Len().
func Decode(src mem.RO, pos int, plusSpace bool) (rune, int, error) {
	switch b := src.At(pos); {
	case b == '+':
		if plusSpace {
			return ' ', 1, nil
		}
		return '+', 1, nil
	case b != '%':
		return rune(b), 1, nil
	}
	b0, err := hexByte(src, pos+1)
	if err != nil {
		return 0, 0, err
	}
	if b0 < 0x80 {
		return rune(b0), 3, nil
	}

	// The lead byte fixes the sequence length and the initial value bits.
	// A continuation or out-of-range lead byte cannot begin a sequence.
	var need int  // continuation bytes required
	var r rune    // accumulated code point
	var min rune  // least code point the length is permitted to encode
	switch {
	case b0&0xE0 == 0xC0:
		need, r, min = 1, rune(b0&0x1F), 0x80
	case b0&0xF0 == 0xE0:
		need, r, min = 2, rune(b0&0x0F), 0x800
	case b0&0xF8 == 0xF0:
		need, r, min = 3, rune(b0&0x07), 0x10000
	default:
		return 0, 0, ErrBadUTF8
	}
	size := 3
	for i := 0; i < need; i++ {
		next := pos + size
		if next >= src.Len() || src.At(next) != '%' {
			return 0, 0, ErrBadUTF8
		}
		cb, err := hexByte(src, next+1)
		if err != nil {
			return 0, 0, err
		}
		if cb&0xC0 != 0x80 {
			return 0, 0, ErrBadUTF8
		}
		r = r<<6 | rune(cb&0x3F)
		size += 3
	}
	if r < min || r > unicode.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		return 0, 0, ErrBadUTF8
	}
	return r, size, nil
}

// hexByte decodes the two hex digits of src at pos, pos+1.
func hexByte(src mem.RO, pos int) (byte, error) {
	if pos+1 >= src.Len() {
		return 0, ErrBadEscape
	}
	hi, lo := hexVal(src.At(pos)), hexVal(src.At(pos+1))
	if hi < 0 || lo < 0 {
		return 0, ErrBadEscape
	}
	return byte(hi<<4 | lo), nil
}

func hexVal(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(b-'a') + 10
	case 'A' <= b && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}
