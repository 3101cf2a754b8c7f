// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

// Character class bits for the parse-side table. The classes are derived
// from the query production of RFC 3986: a byte legal in a literal must
// survive a URL query string without escaping, and the bytes the grammar
// reserves for itself are excluded from the literal classes.
const (
	chLit    = 1 << iota // legal in an unquoted literal
	chQuoted             // legal inside a quoted string
	chStruct             // structural: ( ) , :
	chForm               // form separator: & =
	chQuote              // the string delimiter '
)

var charBits [128]uint8

func init() {
	set := func(s string, bit uint8) {
		for i := 0; i < len(s); i++ {
			charBits[s[i]] |= bit
		}
	}
	set("abcdefghijklmnopqrstuvwxyz", chLit|chQuoted)
	set("ABCDEFGHIJKLMNOPQRSTUVWXYZ", chLit|chQuoted)
	set("0123456789", chLit|chQuoted)
	set("-._~!$*;/?@", chLit|chQuoted)
	set("'", chLit|chQuote) // ordinary mid-literal, a delimiter at the start
	set("():,", chStruct|chQuoted)
	set("&=", chForm|chQuoted)
}

// classOf returns the class bits of c, or 0 for non-ASCII bytes.
func classOf(c byte) uint8 {
	if c < 128 {
		return charBits[c]
	}
	return 0
}
