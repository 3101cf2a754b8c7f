// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"

	"github.com/creachadair/jsonurl"
)

// Parse parses text as a single JSON→URL value. A nil opts pointer
// selects the default options.
func Parse(text string, opts *jsonurl.Options) (Value, error) {
	return parseWith(jsonurl.NewStream(text, opts), nil)
}

// ParseImpliedObject parses text as the body of an object whose
// enclosing parentheses are omitted, as in a query string. The span of
// the resulting object covers the whole input.
func ParseImpliedObject(text string, opts *jsonurl.Options) (*Object, error) {
	st := jsonurl.NewStream(text, opts)
	st.SetType(jsonurl.AnyType, jsonurl.ImpliedObject)
	root := &Object{end: len(text)}
	if _, err := parseWith(st, root); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseImpliedArray parses text as the body of an array whose enclosing
// parentheses are omitted. The span of the resulting array covers the
// whole input.
func ParseImpliedArray(text string, opts *jsonurl.Options) (*Array, error) {
	st := jsonurl.NewStream(text, opts)
	st.SetType(jsonurl.AnyType, jsonurl.ImpliedArray)
	root := &Array{end: len(text)}
	if _, err := parseWith(st, root); err != nil {
		return nil, err
	}
	return root, nil
}

func parseWith(st *jsonurl.Stream, root Value) (Value, error) {
	h := new(parseHandler)
	if root != nil {
		h.push(root)
	}
	if err := st.Parse(h); err != nil {
		return nil, err
	}
	if len(h.stk) != 1 {
		return nil, errors.New("incomplete value")
	}
	return h.stk[0], nil
}

// A parseHandler implements the jsonurl.Handler interface to construct
// abstract syntax trees.
type parseHandler struct {
	stk []Value
}

func (h *parseHandler) top() Value { return h.stk[len(h.stk)-1] }

func (h *parseHandler) pop() Value {
	last := h.top()
	h.stk = h.stk[:len(h.stk)-1]
	return last
}

func (h *parseHandler) push(v Value) { h.stk = append(h.stk, v) }

// attach delivers the completed value v to its destination: the member
// or array currently under construction, or the root of the tree.
func (h *parseHandler) attach(v Value) error {
	if len(h.stk) == 0 {
		h.push(v)
		return nil
	}
	switch prev := h.top().(type) {
	case *Member:
		prev.Value = v
		prev.end = v.Span().End
		h.pop()
	case *Array:
		prev.Values = append(prev.Values, v)
	default:
		panic("jsonurl/ast: value not inside a member or array")
	}
	return nil
}

// discardDangling removes a member whose value event was suppressed, as
// happens under the SkipNulls option, from the stack and from its
// enclosing object.
func (h *parseHandler) discardDangling() {
	if len(h.stk) == 0 {
		return
	}
	if m, ok := h.top().(*Member); ok && m.Value == nil {
		h.pop()
		obj := h.top().(*Object)
		obj.Members = obj.Members[:len(obj.Members)-1]
	}
}

func (h *parseHandler) BeginObject(loc jsonurl.Anchor) error {
	h.push(&Object{pos: loc.Location().Pos})
	return nil
}

func (h *parseHandler) EndObject(loc jsonurl.Anchor) error {
	h.discardDangling()
	o := h.pop().(*Object)
	o.end = loc.Location().End
	return h.attach(o)
}

func (h *parseHandler) BeginArray(loc jsonurl.Anchor) error {
	h.push(&Array{pos: loc.Location().Pos})
	return nil
}

func (h *parseHandler) EndArray(loc jsonurl.Anchor) error {
	a := h.pop().(*Array)
	a.end = loc.Location().End
	return h.attach(a)
}

func (h *parseHandler) BeginMember(loc jsonurl.Anchor) error {
	// The object this member belongs to is atop the stack. Add the new
	// member to its collection eagerly, so that no separate reduction is
	// needed once its value arrives.
	h.discardDangling()
	span := loc.Location().Span
	m := &Member{pos: span.Pos, end: span.End, Key: string(loc.Text())}
	obj := h.top().(*Object)
	obj.Members = append(obj.Members, m)
	h.push(m)
	return nil
}

func (h *parseHandler) Value(loc jsonurl.Anchor) error {
	span := loc.Location().Span
	d := datum{pos: span.Pos, end: span.End, text: loc.Copy()}
	switch ev := loc.Event(); ev {
	case jsonurl.String, jsonurl.EmptyLiteral:
		return h.attach(&String{datum: d})
	case jsonurl.Number:
		return h.attach(&Number{datum: d})
	case jsonurl.True, jsonurl.False:
		return h.attach(&Bool{datum: d, value: ev == jsonurl.True})
	case jsonurl.Null:
		return h.attach(&Null{datum: d})
	default:
		return fmt.Errorf("unknown value %v", ev)
	}
}

func (h *parseHandler) EmptyComposite(loc jsonurl.Anchor) error {
	span := loc.Location().Span
	return h.attach(&Empty{pos: span.Pos, end: span.End})
}

// MissingValue reports an error for an object member with no value. A
// consumer that wants to supply default values should parse with the
// jsonurl package and its Options.MissingValue hook instead.
func (h *parseHandler) MissingValue(loc jsonurl.Anchor) error {
	return &jsonurl.SyntaxError{
		Code:     jsonurl.CodeMissingValue,
		Offset:   loc.Location().Pos,
		Location: loc.Location().First,
	}
}

func (h *parseHandler) EndOfInput(loc jsonurl.Anchor) {
	h.discardDangling()
}
