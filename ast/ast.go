// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an abstract syntax tree for JSON→URL values, and a
// parser that constructs syntax trees from JSON→URL source text.
//
// Unlike the native-value parser in the jsonurl package, the tree
// preserves the order of object members and the source location of every
// value.
package ast

import (
	"fmt"
	"math/big"

	"github.com/creachadair/jsonurl"
)

// A Value is an arbitrary JSON→URL value.
type Value interface{ Span() jsonurl.Span }

// A Datum is a Value with a text representation.
type Datum interface {
	Value
	Text() string
}

func newSpan(pos, end int) jsonurl.Span { return jsonurl.Span{Pos: pos, End: end} }

// An Object is a collection of key-value members.
type Object struct {
	pos, end int
	Members  []*Member
}

// Span satisfies the Value interface.
func (o Object) Span() jsonurl.Span { return newSpan(o.pos, o.end) }

// Find returns the first member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	pos, end int

	Key   string
	Value Value
}

// Span satisfies the Value interface.
func (m Member) Span() jsonurl.Span { return newSpan(m.pos, m.end) }

// An Array is a sequence of values.
type Array struct {
	pos, end int

	Values []Value
}

// Span satisfies the Value interface.
func (a Array) Span() jsonurl.Span { return newSpan(a.pos, a.end) }

type datum struct {
	pos, end int
	text     []byte
}

// Span satisfies the Value interface.
func (d datum) Span() jsonurl.Span { return newSpan(d.pos, d.end) }

// Text satisfies the Datum interface. For a String the text is already
// decoded; for a Number it is the number as written in the source.
func (d datum) Text() string { return string(d.text) }

// A Number is a numeric value.
type Number struct{ datum }

func (n Number) parse() *jsonurl.NumberText {
	v, ok := jsonurl.ParseNumber(n.text)
	if !ok {
		panic(fmt.Sprintf("jsonurl/ast: invalid number %q", n.text))
	}
	return &v
}

// Int64 returns n as an int64. It panics if n has a fraction or an
// exponent.
func (n Number) Int64() int64 {
	v, ok := n.parse().Int64()
	if !ok {
		panic(fmt.Sprintf("jsonurl/ast: number %q is not an int64", n.text))
	}
	return v
}

// BigInt returns n as a *big.Int. It panics if n is fractional.
func (n Number) BigInt() *big.Int {
	v, ok := n.parse().BigInt()
	if !ok {
		panic(fmt.Sprintf("jsonurl/ast: number %q is not an integer", n.text))
	}
	return v
}

// Float64 returns n as a float64.
func (n Number) Float64() float64 { return n.parse().Float64() }

// Value returns n as an int64 if it fits, as a *big.Int if it is any
// other non-fractional value, and as a float64 otherwise.
func (n Number) Value() any { return n.parse().Value() }

// A Bool is a Boolean constant, true or false.
type Bool struct {
	datum
	value bool
}

// Value reports the truth value of b.
func (b Bool) Value() bool { return b.value }

// A String is a string value. Its text is fully decoded.
type String struct{ datum }

// Null represents the null constant.
type Null struct{ datum }

// Empty represents the distinguished empty composite "()", which a
// consumer may read as an empty object or an empty array.
type Empty struct {
	pos, end int
}

// Span satisfies the Value interface.
func (e Empty) Span() jsonurl.Span { return newSpan(e.pos, e.end) }
