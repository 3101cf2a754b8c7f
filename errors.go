// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

import "fmt"

// A Code identifies the grammar rule a malformed input violated.
type Code int

// Constants defining the valid Code values.
const (
	CodeUnknown Code = iota // unclassified error

	CodeBadChar       // character not allowed at this position
	CodeBadEscape     // malformed percent or "!" escape
	CodeBadUTF8       // percent-escaped octets are not valid UTF-8
	CodeUnexpectedEOF // input ended inside an unfinished value
	CodeExtraChars    // input continues past the end of the value
	CodeEmptyKey      // zero-length unquoted key not allowed
	CodeEmptyValue    // zero-length unquoted value not allowed
	CodeBadSeparator  // "&" or "=" not allowed at this position
	CodeMissingValue  // object member without a value
	CodeWrongType     // value kind excluded by SetType
)

var codeStr = [...]string{
	CodeUnknown: "malformed input",

	CodeBadChar:       "unexpected character",
	CodeBadEscape:     "invalid escape sequence",
	CodeBadUTF8:       "invalid encoded UTF-8",
	CodeUnexpectedEOF: "unexpected end of input",
	CodeExtraChars:    "extra characters after value",
	CodeEmptyKey:      "empty key not allowed",
	CodeEmptyValue:    "empty value not allowed",
	CodeBadSeparator:  "misplaced form separator",
	CodeMissingValue:  "missing member value",
	CodeWrongType:     "value type not allowed",
}

func (c Code) String() string {
	v := int(c)
	if v >= len(codeStr) {
		return codeStr[CodeUnknown]
	}
	return codeStr[v]
}

// SyntaxError is the concrete type of grammar errors reported by the
// scanner. Offset is the byte position in the input at which the error
// was detected.
type SyntaxError struct {
	Code     Code
	Offset   int
	Location LineCol

	err error
}

// Error satisfies the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s (offset %d)", e.Location, e.Code, e.Offset)
}

// Unwrap supports error wrapping.
func (e *SyntaxError) Unwrap() error { return e.err }

// A LimitKind labels the parse limit a LimitError exceeded.
type LimitKind int

// Constants defining the valid LimitKind values.
const (
	LimitChars  LimitKind = 1 + iota // Limits.MaxParseChars
	LimitDepth                       // Limits.MaxParseDepth
	LimitValues                      // Limits.MaxParseValues
)

var limitStr = [...]string{
	LimitChars:  "maximum input length",
	LimitDepth:  "maximum nesting depth",
	LimitValues: "maximum value count",
}

func (k LimitKind) String() string {
	v := int(k)
	if v < 1 || v >= len(limitStr) {
		return "parse limit"
	}
	return limitStr[v]
}

// LimitError is the concrete type of errors reported when an input
// exceeds a configured parse limit. Exceeding a limit is not a syntax
// error: the input may be well-formed but too expensive to process.
type LimitError struct {
	Kind   LimitKind
	Offset int
}

// Error satisfies the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%s exceeded (offset %d)", e.Kind, e.Offset)
}
