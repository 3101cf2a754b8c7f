// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package jsonurl implements a scanner, parsers, and writers for the
// JSON→URL notation, a compact encoding of JSON-like values designed to
// pass through a URL without escaping.
//
// In JSON→URL text, objects and arrays are both delimited by
// parentheses; an object is distinguished by the ":" binding its keys:
//
//	(a:1,b:(true,false))     {"a": 1, "b": [true, false]}
//	(1,2.5,'hi there')       [1, 2.5, "hi there"]
//
// Spaces are written "+", reserved characters are percent-encoded, and
// strings are single-quoted only when their content requires it.
//
// # Scanning
//
// The Scanner type is a lexical and structural scanner. Construct one
// from input text and call Next to iterate its events:
//
//	s := jsonurl.NewScanner(input, nil)
//	for {
//		ev, err := s.Next()
//		if err != nil {
//			log.Fatalf("Scan failed: %v", err)
//		} else if ev == jsonurl.EndStream {
//			break
//		}
//		log.Printf("Event: %v", ev)
//	}
//
// Nesting is reported directly: Start and End events are delivered in
// matched pairs around the contents of each object and array, so a
// consumer does not need a parse stack of its own. Syntax problems are
// reported as errors of concrete type *SyntaxError, and resource-limit
// violations as *LimitError.
//
// # Parsing
//
// The Parse functions consume a complete input and return native Go
// values: map[string]any for objects, []any for arrays, and string,
// bool, nil, int64, *big.Int, or float64 for the literals. ParseObject
// and ParseArray constrain the type of the outermost value, and
// ParseImpliedObject and ParseImpliedArray read the paren-free forms
// used in URL query strings:
//
//	v, err := jsonurl.ParseImpliedObject("a=1&b=2", &jsonurl.Options{
//		FormURLEncoded: true,
//	})
//
// The ast subpackage provides a positioned syntax tree as an
// alternative result form.
//
// # Streaming
//
// The Stream type implements an event-driven parser. It calls methods
// on a Handler value to report the structure of the input:
//
//	st := jsonurl.NewStream(input, nil)
//	if err := st.Parse(handler); err != nil {
//		log.Fatalf("Parse failed: %v", err)
//	}
//
// The Anchor passed to a handler method is only valid for the duration
// of that method call; the handler must copy any data it needs to
// retain beyond the lifetime of the call.
//
// # Writing
//
// Marshal converts a native Go value to JSON→URL text, and
// MarshalImpliedObject and MarshalImpliedArray write the paren-free
// forms. The writer chooses the most compact literal form that reads
// back as the same value, quoting or escaping strings that would
// otherwise be mistaken for numbers or keywords.
//
// # Variants and options
//
// Options configure both directions of the codec: the address-bar
// friendly AQF variant replaces quoting with "!" escapes, the
// FormURLEncoded flag admits "&" and "=" as top-level separators, and
// ImpliedStringLiterals reads every literal as a string. Limits bound
// the input size, nesting depth, and value count of a parse.
package jsonurl
