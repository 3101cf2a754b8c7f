// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

// Default parse limits, used where the corresponding field of Limits is
// zero or negative.
const (
	DefaultMaxParseChars  = 1 << 15 // input length in bytes
	DefaultMaxParseDepth  = 1 << 5  // nesting depth of composites
	DefaultMaxParseValues = 1 << 12 // total keys and values
)

// Limits bounds the work a single parse is permitted to perform, so that
// hostile input cannot force unbounded memory or time. A zero field
// selects the corresponding default.
type Limits struct {
	// MaxParseChars limits the number of input bytes the scanner will
	// consume, counted once per position regardless of pushback.
	MaxParseChars int

	// MaxParseDepth limits the nesting depth of composite values. A value
	// enclosed in no parentheses is at depth 0, the members of an implied
	// or outermost composite are at depth 1.
	MaxParseDepth int

	// MaxParseValues limits the total number of values in the input. Every
	// literal, composite, and object key counts toward the total.
	MaxParseValues int
}

func (l Limits) maxChars() int  { return orDefault(l.MaxParseChars, DefaultMaxParseChars) }
func (l Limits) maxDepth() int  { return orDefault(l.MaxParseDepth, DefaultMaxParseDepth) }
func (l Limits) maxValues() int { return orDefault(l.MaxParseValues, DefaultMaxParseValues) }

func orDefault(v, dflt int) int {
	if v <= 0 {
		return dflt
	}
	return v
}

// Options configures the optional behaviors of the JSON→URL grammar.
// A nil *Options is ready to use and selects all the defaults. The
// scanner does not modify an Options value, so one value may be shared
// among any number of scanners.
type Options struct {
	// AQF, if true, selects the address-bar query string friendly variant
	// of the grammar: quoted strings are disabled, and a "!" introduces a
	// character escape. A literal containing any "!" escape is always a
	// string, regardless of its decoded text.
	AQF bool

	// CoerceNullToEmptyString, if true, reports the literal null as an
	// empty string literal instead.
	CoerceNullToEmptyString bool

	// EmptyUnquotedKey, if true, permits a zero-length object key with no
	// quotes, as in "(:1)".
	EmptyUnquotedKey bool

	// EmptyUnquotedValue, if true, permits a zero-length literal value
	// with no quotes, as in "(1,,3)".
	EmptyUnquotedValue bool

	// FormURLEncoded, if true, accepts "&" as a value separator and "="
	// as a name separator among the members of the outermost composite.
	// Runs of consecutive "&" act as a single separator, and leading and
	// trailing runs are ignored in implied composites.
	FormURLEncoded bool

	// ImpliedStringLiterals, if true, treats every literal as a string:
	// no literal is classified as a boolean, number, or null, quote and
	// escape processing still applies, and zero-length literals are
	// permitted everywhere.
	ImpliedStringLiterals bool

	// NoEmptyComposite, if true, removes the ambiguous empty composite
	// from the grammar: "()" is an empty array and "(:)" is an empty
	// object.
	NoEmptyComposite bool

	// SkipNulls, if true, discards null literals: an array element that
	// is null is dropped, and an object member whose value is null is
	// omitted.
	SkipNulls bool

	// MissingValue, if set, supplies a value for an implied object member
	// that has no value, such as "b" in "a=1&b". It is consulted by the
	// value builders; the scanner itself reports a MissingValue event.
	// If nil, a member without a value is an error.
	MissingValue func(key string) (any, error)

	// Limits bounds the amount of work a parse may perform.
	Limits Limits
}

// ptr returns o if non-nil, or else a default options value.
func (o *Options) ptr() *Options {
	if o == nil {
		return defaultOptions
	}
	return o
}

var defaultOptions = new(Options)

// A TypeSet is a set of value kinds, used to constrain the kind of value
// an input is permitted to contain.
type TypeSet uint

// Constants defining the members of a TypeSet.
const (
	TypeObject TypeSet = 1 << iota
	TypeArray
	TypeString
	TypeNumber
	TypeBoolean
	TypeNull

	// AnyType permits every value kind. It is the default.
	AnyType = TypeObject | TypeArray | TypeString | TypeNumber | TypeBoolean | TypeNull
)

// Implied selects an implied outermost composite, whose enclosing
// parentheses are omitted from the input.
type Implied byte

// Constants defining the valid Implied values.
const (
	ImpliedNone   Implied = iota // the input is a complete value
	ImpliedArray                 // the input is the body of an array
	ImpliedObject                // the input is the body of an object
)
