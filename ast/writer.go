// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"

	"github.com/creachadair/jsonurl"
)

// Marshal encodes v as JSON→URL text. Unlike [jsonurl.Marshal], object
// members are written in the order they occur in the tree, not sorted by
// key. The output is always fully parenthesized.
func Marshal(v Value, opts *jsonurl.Options) (string, error) {
	dst, err := Append(nil, v, opts)
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

// Append appends the JSON→URL encoding of v to dst and returns the
// updated slice, with the semantics of [Marshal].
func Append(dst []byte, v Value, opts *jsonurl.Options) ([]byte, error) {
	if opts == nil {
		opts = new(jsonurl.Options)
	}
	return appendValue(dst, v, opts)
}

func appendValue(dst []byte, v Value, opts *jsonurl.Options) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return appendNull(dst, opts)
	case *Null:
		return appendNull(dst, opts)
	case *Bool:
		if t.Value() {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case *String:
		return jsonurl.AppendLiteral(dst, t.Text(), opts)
	case *Number:
		if _, ok := jsonurl.ParseNumber(t.text); !ok {
			return nil, fmt.Errorf("jsonurl/ast: invalid number %q", t.Text())
		}
		return append(dst, t.text...), nil
	case *Empty:
		return append(dst, "()"...), nil
	case *Member:
		return appendMember(dst, t, opts)
	case *Object:
		return appendObject(dst, t, opts)
	case *Array:
		return appendArray(dst, t, opts)
	default:
		return nil, fmt.Errorf("jsonurl/ast: cannot encode %T", v)
	}
}

func appendNull(dst []byte, opts *jsonurl.Options) ([]byte, error) {
	if opts.ImpliedStringLiterals {
		return jsonurl.AppendLiteral(dst, "", opts)
	}
	return append(dst, "null"...), nil
}

// isNull reports whether v is absent or the null constant.
func isNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(*Null)
	return ok
}

func appendObject(dst []byte, obj *Object, opts *jsonurl.Options) ([]byte, error) {
	ms := obj.Members
	if opts.SkipNulls {
		var keep []*Member
		for _, m := range ms {
			if !isNull(m.Value) {
				keep = append(keep, m)
			}
		}
		ms = keep
	}
	if len(ms) == 0 {
		if opts.NoEmptyComposite {
			return append(dst, "(:)"...), nil
		}
		return append(dst, "()"...), nil
	}
	dst = append(dst, '(')
	var err error
	for i, m := range ms {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, err = appendMember(dst, m, opts)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ')'), nil
}

func appendMember(dst []byte, m *Member, opts *jsonurl.Options) ([]byte, error) {
	dst, err := jsonurl.AppendLiteral(dst, m.Key, opts)
	if err != nil {
		return nil, err
	}
	dst = append(dst, ':')
	return appendValue(dst, m.Value, opts)
}

func appendArray(dst []byte, arr *Array, opts *jsonurl.Options) ([]byte, error) {
	vs := arr.Values
	if opts.SkipNulls {
		var keep []Value
		for _, v := range vs {
			if !isNull(v) {
				keep = append(keep, v)
			}
		}
		vs = keep
	}
	if len(vs) == 0 {
		return append(dst, "()"...), nil
	}
	dst = append(dst, '(')
	var err error
	for i, v := range vs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, err = appendValue(dst, v, opts)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ')'), nil
}
