// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/creachadair/jsonurl/internal/percent"
	"go4.org/mem"
)

// Marshal encodes v as JSON→URL text. A nil opts pointer selects the
// default options.
//
// The value may be nil, bool, string, int, int64, uint, uint64, float32,
// float64, *big.Int, or json.Number, or a map[string]any or []any whose
// values are themselves marshalable. Any other type reports an error, as
// do NaN and infinite floating-point values, which have no representation
// in the grammar.
//
// Strings are written unquoted when every character is literal-safe and
// the encoded text cannot be mistaken for a number, boolean, or null.
// Otherwise they are single-quoted, or in AQF mode protected with a "!"
// escape on the leading character. Map keys are written in sorted order.
// When opts.SkipNulls is true, nil object members and array elements are
// omitted from the output.
func Marshal(v any, opts *Options) (string, error) {
	dst, err := Append(nil, v, opts)
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

// Append appends the JSON→URL encoding of v to dst and returns the
// updated slice, with the semantics of [Marshal].
func Append(dst []byte, v any, opts *Options) ([]byte, error) {
	w := writer{o: opts.ptr()}
	return w.value(dst, v)
}

// MarshalImpliedObject encodes m as the body of an object whose enclosing
// parentheses are omitted, suitable for use as a URL query string. When
// opts.FormURLEncoded is true the top-level members are separated by "&"
// and keys are bound to values with "="; otherwise by "," and ":". An
// empty (or, under SkipNulls, all-null) map encodes as "".
func MarshalImpliedObject(m map[string]any, opts *Options) (string, error) {
	w := writer{o: opts.ptr()}
	dst, err := w.members(nil, m, w.memberKeys(m), true)
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

// MarshalImpliedArray encodes vs as the body of an array whose enclosing
// parentheses are omitted. When opts.FormURLEncoded is true the top-level
// elements are separated by "&", otherwise by ",". An empty (or, under
// SkipNulls, all-null) slice encodes as "".
func MarshalImpliedArray(vs []any, opts *Options) (string, error) {
	w := writer{o: opts.ptr()}
	dst, err := w.elements(nil, w.elems(vs), true)
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

// Write-side safety bits. The encoder makes a single pass over each
// string keeping running AND and OR accumulators of these bits, which
// together decide whether the string can be written bare or must be
// quoted, and whether it contains spaces.
const (
	wLit   uint8 = 1 << iota // may appear raw in an unquoted literal
	wQuo                     // may appear raw inside a quoted string
	wSpace                   // is the space character
)

var (
	wbits [128]uint8

	litTable *percent.Table // unquoted literals and implied-string text
	quoTable *percent.Table // quoted-string interiors
	aqfTable *percent.Table // AQF literal bytes that take no "!" escape
)

func init() {
	var lit, quo, aqf []byte
	for c := byte(0); c < 128; c++ {
		b := charBits[c]
		if b&chLit != 0 {
			wbits[c] |= wLit
			lit = append(lit, c)
			if c != '!' {
				aqf = append(aqf, c)
			}
		}
		if b&chQuoted != 0 {
			wbits[c] |= wQuo
			quo = append(quo, c)
		}
	}
	// The space byte is representable in every mode, so it must not zero
	// the AND accumulator; its own bit records that it was seen.
	wbits[' '] = wLit | wQuo | wSpace

	litTable = percent.NewTable(string(lit))
	quoTable = percent.NewTable(string(quo))
	aqfTable = percent.NewTable(string(aqf))
}

type writer struct {
	o *Options
}

func (w *writer) value(dst []byte, v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		if w.o.ImpliedStringLiterals {
			return w.str(dst, "", false)
		}
		return append(dst, "null"...), nil
	case bool:
		if t {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case string:
		return w.str(dst, t, false)
	case int:
		return strconv.AppendInt(dst, int64(t), 10), nil
	case int64:
		return strconv.AppendInt(dst, t, 10), nil
	case uint:
		return strconv.AppendUint(dst, uint64(t), 10), nil
	case uint64:
		return strconv.AppendUint(dst, t, 10), nil
	case float32:
		return appendFloat(dst, float64(t), 32)
	case float64:
		return appendFloat(dst, t, 64)
	case *big.Int:
		if t == nil {
			return w.value(dst, nil)
		}
		return t.Append(dst, 10), nil
	case json.Number:
		if _, ok := ParseNumber([]byte(t)); !ok {
			return nil, fmt.Errorf("jsonurl: invalid number %q", string(t))
		}
		return append(dst, t...), nil
	case map[string]any:
		return w.object(dst, t)
	case []any:
		return w.array(dst, t)
	default:
		return nil, fmt.Errorf("jsonurl: cannot marshal %T", v)
	}
}

func (w *writer) object(dst []byte, m map[string]any) ([]byte, error) {
	keys := w.memberKeys(m)
	if len(keys) == 0 {
		if w.o.NoEmptyComposite {
			return append(dst, "(:)"...), nil
		}
		return append(dst, "()"...), nil
	}
	dst = append(dst, '(')
	dst, err := w.members(dst, m, keys, false)
	if err != nil {
		return nil, err
	}
	return append(dst, ')'), nil
}

// memberKeys returns the keys of m in sorted order, omitting keys whose
// value is null when SkipNulls is set.
func (w *writer) memberKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if w.o.SkipNulls && v == nil {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (w *writer) members(dst []byte, m map[string]any, keys []string, top bool) ([]byte, error) {
	sep, bind := byte(','), byte(':')
	if top && w.o.FormURLEncoded {
		sep, bind = '&', '='
	}
	var err error
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, sep)
		}
		dst, err = w.str(dst, k, true)
		if err != nil {
			return nil, err
		}
		dst = append(dst, bind)
		dst, err = w.value(dst, m[k])
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (w *writer) array(dst []byte, vs []any) ([]byte, error) {
	vs = w.elems(vs)
	if len(vs) == 0 {
		return append(dst, "()"...), nil
	}
	dst = append(dst, '(')
	dst, err := w.elements(dst, vs, false)
	if err != nil {
		return nil, err
	}
	return append(dst, ')'), nil
}

// elems returns the elements of vs that will be written, dropping nulls
// when SkipNulls is set.
func (w *writer) elems(vs []any) []any {
	if !w.o.SkipNulls {
		return vs
	}
	out := vs[:0:0]
	for _, v := range vs {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func (w *writer) elements(dst []byte, vs []any, top bool) ([]byte, error) {
	sep := byte(',')
	if top && w.o.FormURLEncoded {
		sep = '&'
	}
	var err error
	for i, v := range vs {
		if i > 0 {
			dst = append(dst, sep)
		}
		dst, err = w.value(dst, v)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// str appends the encoding of s as a literal. Keys never need lookalike
// protection, since a key position always reads back as a string.
func (w *writer) str(dst []byte, s string, key bool) ([]byte, error) {
	if w.o.AQF {
		return w.aqfStr(dst, s, key)
	}
	if w.o.ImpliedStringLiterals {
		// No classification happens on reparse, so no quoting either;
		// reserved characters are percent-encoded.
		return percent.AppendString(dst, mem.S(s), litTable)
	}
	if s == "" {
		return append(dst, "''"...), nil
	}

	and, or := ^uint8(0), uint8(0)
	for i := 0; i < len(s); i++ {
		var b uint8
		if c := s[i]; c < 128 {
			b = wbits[c]
		}
		and &= b
		or |= b
	}

	if and&wLit != 0 && s[0] != '\'' {
		n := len(dst)
		enc, err := percent.AppendString(dst, mem.S(s), litTable)
		if err != nil {
			return nil, err
		}
		if key || !lookalike(enc[n:]) {
			return enc, nil
		}
		dst = enc[:n] // mistakable for a non-string value; quote it instead
	}

	dst = append(dst, '\'')
	if and&wQuo != 0 && or&wSpace == 0 {
		dst = append(dst, s...)
	} else {
		var err error
		dst, err = percent.AppendString(dst, mem.S(s), quoTable)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '\''), nil
}

// aqfStr appends the AQF encoding of s. The empty string has a
// distinguished form, and a value that reads back as a number, boolean,
// or null gets a "!" escape on its first character, or a percent escape
// when that character has no defined "!" form.
func (w *writer) aqfStr(dst []byte, s string, key bool) ([]byte, error) {
	if s == "" {
		return append(dst, "!e"...), nil
	}
	n := len(dst)
	dst, err := w.aqfBody(dst, s)
	if err != nil {
		return nil, err
	}
	if key || w.o.ImpliedStringLiterals || !lookalike(dst[n:]) {
		return dst, nil
	}
	dst = dst[:n]
	if c := s[0]; isBangSafe(c) {
		dst = append(dst, '!', c)
	} else {
		const digits = "0123456789ABCDEF"
		dst = append(dst, '%', digits[c>>4], digits[c&15])
	}
	return w.aqfBody(dst, s[1:])
}

func (w *writer) aqfBody(dst []byte, s string) ([]byte, error) {
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && n <= 1 {
			return nil, percent.ErrBadRune
		}
		if r < 128 && aqfSpecial(byte(r)) {
			dst = append(dst, '!', byte(r))
			i += n
			continue
		}
		var err error
		dst, err = percent.AppendRune(dst, r, aqfTable)
		if err != nil {
			return nil, err
		}
		i += n
	}
	return dst, nil
}

// aqfSpecial reports whether c must be written with a "!" escape in AQF
// text: the structural characters, the escape lead itself, and the plus
// sign, whose bare form stands for a space.
func aqfSpecial(c byte) bool {
	switch c {
	case '!', '(', ')', ',', ':', '+':
		return true
	}
	return false
}

// lookalike reports whether enc, the encoded form of a bare literal,
// would be classified as something other than a string on reparse. The
// check runs on encoded text so that spaces already written as "+" are
// accounted for.
func lookalike(enc []byte) bool {
	if mem.B(enc).Equal(mem.S("true")) || mem.B(enc).Equal(mem.S("false")) || mem.B(enc).Equal(mem.S("null")) {
		return true
	}
	_, ok := ParseNumber(enc)
	return ok
}

func appendFloat(dst []byte, f float64, bits int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("jsonurl: cannot marshal %v", f)
	}
	n := len(dst)
	dst = strconv.AppendFloat(dst, f, 'g', -1, bits)

	// A positive exponent renders as "e+05"; drop the sign, which stands
	// for a space everywhere else in the encoded text.
	if i := bytes.Index(dst[n:], []byte("e+")); i >= 0 {
		i += n + 1
		dst = append(dst[:i], dst[i+1:]...)
	}
	return dst, nil
}
