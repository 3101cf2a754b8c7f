// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

// Event is the type of a structural event in the JSON→URL grammar.
type Event byte

// Constants defining the valid Event values.
const (
	Invalid Event = iota // invalid event

	StartObject // open parenthesis beginning an object
	EndObject   // close parenthesis ending an object
	StartArray  // open parenthesis beginning an array
	EndArray    // close parenthesis ending an array
	KeyName     // object member key

	True   // literal true
	False  // literal false
	Null   // literal null
	Number // numeric literal
	String // string literal

	EmptyComposite // the distinguished empty composite "()"
	EmptyLiteral   // a literal of zero length
	MissingValue   // an implied object member with no value

	EndStream // end of input
)

var eventStr = [...]string{
	Invalid: "invalid event",

	StartObject: "start object",
	EndObject:   "end object",
	StartArray:  "start array",
	EndArray:    "end array",
	KeyName:     "key name",

	True:   "true",
	False:  "false",
	Null:   "null",
	Number: "number",
	String: "string",

	EmptyComposite: "empty composite",
	EmptyLiteral:   "empty literal",
	MissingValue:   "missing value",

	EndStream: "end of stream",
}

func (e Event) String() string {
	v := int(e)
	if v >= len(eventStr) {
		return eventStr[Invalid]
	}
	return eventStr[v]
}

// isLiteral reports whether e carries literal text.
func (e Event) isLiteral() bool {
	switch e {
	case KeyName, True, False, Null, Number, String, EmptyLiteral:
		return true
	}
	return false
}

// eventType maps a literal value event to its member of a TypeSet.
func eventType(e Event) TypeSet {
	switch e {
	case True, False:
		return TypeBoolean
	case Null:
		return TypeNull
	case Number:
		return TypeNumber
	case String, EmptyLiteral:
		return TypeString
	}
	return 0
}
