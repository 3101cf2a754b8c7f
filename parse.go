// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

// Parse parses text as a single JSON→URL value and returns its Go form:
//
//	object        map[string]any
//	array         []any
//	string        string
//	number        int64, *big.Int, or float64
//	true, false   bool
//	null          nil
//
// The distinguished empty composite "()" parses as an empty map. A nil
// opts pointer selects the default options. In case of a syntax error
// the returned error has type [*SyntaxError]; if the input exceeds a
// parse limit it has type [*LimitError].
func Parse(text string, opts *Options) (any, error) {
	return build(NewScanner(text, opts), emptyAsObject)
}

// ParseObject parses text as an object.
func ParseObject(text string, opts *Options) (map[string]any, error) {
	sc := NewScanner(text, opts)
	sc.SetType(TypeObject, ImpliedNone)
	v, err := build(sc, emptyAsObject)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// ParseArray parses text as an array. The empty composite "()" parses as
// an empty array here, matching the declared result type.
func ParseArray(text string, opts *Options) ([]any, error) {
	sc := NewScanner(text, opts)
	sc.SetType(TypeArray, ImpliedNone)
	v, err := build(sc, emptyAsArray)
	if err != nil {
		return nil, err
	}
	vs, _ := v.([]any)
	return vs, nil
}

// ParseImpliedObject parses text as the body of an object whose enclosing
// parentheses are omitted, as in a query string "a=1&b=2".
func ParseImpliedObject(text string, opts *Options) (map[string]any, error) {
	sc := NewScanner(text, opts)
	sc.SetType(AnyType, ImpliedObject)
	v, err := build(sc, emptyAsObject)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// ParseImpliedArray parses text as the body of an array whose enclosing
// parentheses are omitted, as in "1,2,3".
func ParseImpliedArray(text string, opts *Options) ([]any, error) {
	sc := NewScanner(text, opts)
	sc.SetType(AnyType, ImpliedArray)
	v, err := build(sc, emptyAsArray)
	if err != nil {
		return nil, err
	}
	vs, _ := v.([]any)
	return vs, nil
}

// emptyKind selects the realization of the empty composite "()".
type emptyKind byte

const (
	emptyAsObject emptyKind = iota // "()" becomes map[string]any{}
	emptyAsArray                   // "()" becomes []any{}
)

type objFrame struct {
	m      map[string]any
	key    string
	hasKey bool
}

type arrFrame struct {
	vs []any
}

// build drives sc to completion, assembling native Go values from its
// events. Composites under construction live on an explicit stack, one
// frame per unfinished object or array.
func build(sc *Scanner, empty emptyKind) (any, error) {
	var stk []any
	var root any

	if im := sc.implied; im == ImpliedObject {
		stk = append(stk, &objFrame{m: make(map[string]any)})
	} else if im == ImpliedArray {
		stk = append(stk, &arrFrame{vs: []any{}})
	}
	implied := len(stk) != 0

	place := func(v any) {
		if len(stk) == 0 {
			root = v
			return
		}
		switch f := stk[len(stk)-1].(type) {
		case *objFrame:
			f.m[f.key] = v
			f.hasKey = false
		case *arrFrame:
			f.vs = append(f.vs, v)
		}
	}

	for {
		ev, err := sc.Next()
		if err != nil {
			return nil, err
		}
		switch ev {
		case StartObject:
			stk = append(stk, &objFrame{m: make(map[string]any)})
		case StartArray:
			stk = append(stk, &arrFrame{vs: []any{}})
		case EndObject:
			f := stk[len(stk)-1].(*objFrame)
			stk = stk[:len(stk)-1]
			place(f.m)
		case EndArray:
			f := stk[len(stk)-1].(*arrFrame)
			stk = stk[:len(stk)-1]
			place(f.vs)
		case KeyName:
			f := stk[len(stk)-1].(*objFrame)
			f.key, f.hasKey = string(sc.Text()), true
		case True:
			place(true)
		case False:
			place(false)
		case Null:
			place(nil)
		case Number:
			place(sc.Number().Value())
		case String, EmptyLiteral:
			place(string(sc.Text()))
		case EmptyComposite:
			if empty == emptyAsArray {
				place([]any{})
			} else {
				place(map[string]any{})
			}
		case MissingValue:
			f := stk[len(stk)-1].(*objFrame)
			hook := sc.o.MissingValue
			if hook == nil {
				return nil, &SyntaxError{
					Code:     CodeMissingValue,
					Offset:   sc.Offset(),
					Location: sc.Location().First,
				}
			}
			v, err := hook(f.key)
			if err != nil {
				return nil, err
			}
			place(v)
		case EndStream:
			if implied {
				switch f := stk[0].(type) {
				case *objFrame:
					return f.m, nil
				case *arrFrame:
					return f.vs, nil
				}
			}
			return root, nil
		}
	}
}
