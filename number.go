// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

// An Exponent describes the exponent form of a numeric literal.
type Exponent byte

// Constants defining the valid Exponent values.
const (
	ExpNone     Exponent = iota // no exponent part
	ExpBare                     // "e" with no sign
	ExpPositive                 // "e+"
	ExpNegative                 // "e-"
)

// bigExpLimit bounds the exponent magnitude for which BigInt will expand
// a literal to an exact integer. Larger exponents describe values too big
// to be worth materializing.
const bigExpLimit = 4096

// A NumberText records the syntactic parts of a validated numeric
// literal. The spans index the literal text, which is a view into a
// buffer owned by the scanner: a NumberText obtained from a Scanner is
// valid only until the scanner next advances. Use String to retain the
// text beyond that.
type NumberText struct {
	text []byte

	Negative bool     // the literal has a leading minus sign
	IntPart  Span     // digits of the integer part
	FracPart Span     // digits of the fractional part, if any
	ExpPart  Span     // digits of the exponent, if any
	Exp      Exponent // the form of the exponent
}

// ParseNumber reports whether text is a valid numeric literal of the
// JSON→URL grammar, and if so returns a descriptor of its parts. The
// grammar of numbers is that of RFC 8259. Classification applies to the
// undecoded text of a literal, so escaping or percent-encoding any
// character of a number yields a string instead.
func ParseNumber(text []byte) (NumberText, bool) {
	n := NumberText{text: text}
	i := 0
	if i < len(text) && text[i] == '-' {
		n.Negative = true
		i++
	}

	// Integer part: a zero, or a nonzero digit followed by more digits.
	start := i
	for i < len(text) && isDigitByte(text[i]) {
		i++
	}
	if i == start || (text[start] == '0' && i-start > 1) {
		return NumberText{}, false
	}
	n.IntPart = Span{Pos: start, End: i}

	// Fractional part.
	if i < len(text) && text[i] == '.' {
		i++
		start = i
		for i < len(text) && isDigitByte(text[i]) {
			i++
		}
		if i == start {
			return NumberText{}, false
		}
		n.FracPart = Span{Pos: start, End: i}
	}

	// Exponent part.
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		i++
		n.Exp = ExpBare
		if i < len(text) {
			switch text[i] {
			case '+':
				n.Exp = ExpPositive
				i++
			case '-':
				n.Exp = ExpNegative
				i++
			}
		}
		start = i
		for i < len(text) && isDigitByte(text[i]) {
			i++
		}
		if i == start {
			return NumberText{}, false
		}
		n.ExpPart = Span{Pos: start, End: i}
	}

	if i != len(text) {
		return NumberText{}, false
	}
	return n, true
}

func isDigitByte(b byte) bool { return '0' <= b && b <= '9' }

// Text returns the text of the literal. The result is valid only as long
// as the underlying buffer; see the type comment.
func (n *NumberText) Text() []byte { return n.text }

// String returns a copy of the text of the literal.
func (n *NumberText) String() string { return string(n.text) }

// IsNonFractional reports whether the literal denotes an integer: it has
// no fractional digits and no negative exponent.
func (n *NumberText) IsNonFractional() bool {
	return n.FracPart.IsEmpty() && n.Exp != ExpNegative
}

// Int64 returns the value of a literal with no fraction and no exponent,
// or false if the literal has either or does not fit in an int64.
func (n *NumberText) Int64() (int64, bool) {
	if !n.FracPart.IsEmpty() || n.Exp != ExpNone {
		return 0, false
	}
	v, err := strconv.ParseInt(string(n.text), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BigInt returns the exact value of a non-fractional literal as a big
// integer, expanding any exponent. It returns false if the literal is
// fractional or its exponent exceeds an internal bound.
func (n *NumberText) BigInt() (*big.Int, bool) {
	if !n.IsNonFractional() {
		return nil, false
	}
	z, ok := new(big.Int).SetString(string(n.text[n.IntPart.Pos:n.IntPart.End]), 10)
	if !ok {
		return nil, false
	}
	if !n.ExpPart.IsEmpty() {
		exp, err := strconv.Atoi(string(n.text[n.ExpPart.Pos:n.ExpPart.End]))
		if err != nil || exp > bigExpLimit {
			return nil, false
		}
		z.Mul(z, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	}
	if n.Negative {
		z.Neg(z)
	}
	return z, true
}

// Float64 returns the value of the literal as a float64. Values whose
// magnitude is out of range round to an infinity, as in most languages'
// floating-point parsers. Float64 panics if the text is not a valid
// literal, which cannot happen for a NumberText produced by ParseNumber
// or a Scanner.
func (n *NumberText) Float64() float64 {
	v, err := strconv.ParseFloat(string(n.text), 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			return v // ±Inf
		}
		panic(fmt.Sprintf("invalid number %q", n.text))
	}
	return v
}

// Value returns the Go value of the literal: an int64 if the value is an
// integer in range, a *big.Int for an integer out of int64 range, and
// otherwise a float64.
func (n *NumberText) Value() any {
	if v, ok := n.Int64(); ok {
		return v
	}
	if n.IsNonFractional() {
		if z, ok := n.BigInt(); ok {
			if z.IsInt64() {
				return z.Int64()
			}
			return z
		}
	}
	return n.Float64()
}
