// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package percent

import (
	"unicode/utf8"

	"go4.org/mem"
)

// A Table maps each ASCII byte to the action the encoder takes for it.
// Bytes not covered by the table (and all non-ASCII bytes) are escaped.
// The zero value of a table entry is Escape.
type Table [128]byte

// Actions an encoding Table may assign to a byte.
const (
	Escape byte = iota // emit a %XX escape
	Pass               // emit the byte unmodified
	Space              // emit a "+" (the byte is a space)
)

// NewTable constructs a Table that passes each byte of pass through
// unmodified and encodes a space as "+". All other bytes are escaped.
func NewTable(pass string) *Table {
	var t Table
	for i := 0; i < len(pass); i++ {
		t[pass[i]] = Pass
	}
	t[' '] = Space
	return &t
}

// AppendRune appends the encoding of r under t to dst and returns the
// updated slice. It reports ErrBadRune if r is not a valid Unicode code
// point.
func AppendRune(dst []byte, r rune, t *Table) ([]byte, error) {
	if r < utf8.RuneSelf {
		switch t[r] {
		case Pass:
			return append(dst, byte(r)), nil
		case Space:
			return append(dst, '+'), nil
		}
		return appendEscape(dst, byte(r)), nil
	}
	if !utf8.ValidRune(r) {
		return nil, ErrBadRune
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	for _, b := range buf[:n] {
		dst = appendEscape(dst, b)
	}
	return dst, nil
}

// AppendString appends the encoding of src under t to dst and returns the
// updated slice. It reports ErrBadRune if src is not valid UTF-8.
func AppendString(dst []byte, src mem.RO, t *Table) ([]byte, error) {
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if r == utf8.RuneError && n <= 1 {
			return nil, ErrBadRune
		}
		var err error
		dst, err = AppendRune(dst, r, t)
		if err != nil {
			return nil, err
		}
		src = src.SliceFrom(n)
	}
	return dst, nil
}

func appendEscape(dst []byte, b byte) []byte {
	const digits = "0123456789ABCDEF"
	return append(dst, '%', digits[b>>4], digits[b&15])
}
