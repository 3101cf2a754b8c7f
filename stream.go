// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

// An Anchor represents a location in source text. The methods of an
// Anchor report the location, event type, and contents of the anchor.
type Anchor interface {
	Event() Event        // Returns the event type of the anchor
	Text() []byte        // Returns a view of the decoded text of the anchor
	Copy() []byte        // Returns a copy of the decoded text of the anchor
	Number() *NumberText // Returns the numeric descriptor of the anchor
	Location() Location  // Returns the full location of the anchor
}

// A Handler handles events from parsing an input text. If a method
// reports an error, parsing stops and that error is returned to the
// caller. The parser ensures objects and arrays are correctly balanced,
// and that every member value is preceded by its key.
//
// The Anchor argument to a Handler method is only valid for the duration
// of that method call. If the method needs to retain information about
// the location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose open parenthesis is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close parenthesis is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open parenthesis is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close parenthesis is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc. The text of the key
	// is already decoded.
	BeginMember(loc Anchor) error

	// Report a literal value at the given location. The kind of the value
	// can be recovered from the event; for a Number the descriptor is
	// available from the anchor.
	Value(loc Anchor) error

	// Report the distinguished empty composite "()", which is an empty
	// object or an empty array as the consumer prefers.
	EmptyComposite(loc Anchor) error

	// Report an implied object member that has a key but no value, whose
	// key was delivered to BeginMember.
	MissingValue(loc Anchor) error

	// EndOfInput reports the end of the input text.
	EndOfInput(loc Anchor)
}

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
//
// Unlike a grammar that must be driven by recursive descent, the JSON→URL
// scanner reports structure directly, so a Stream is a plain loop over
// scanner events with no parse stack of its own.
type Stream struct {
	s *Scanner
}

// NewStream constructs a new Stream that consumes the given input text.
// A nil opts pointer selects the default options.
func NewStream(text string, opts *Options) *Stream {
	return &Stream{s: NewScanner(text, opts)}
}

// NewStreamWithScanner constructs a new Stream that consumes input from s.
func NewStreamWithScanner(s *Scanner) *Stream { return &Stream{s: s} }

// SetType constrains the kind of value the input may contain and selects
// an implied outermost composite, as [Scanner.SetType].
func (s *Stream) SetType(allow TypeSet, implied Implied) { s.s.SetType(allow, implied) }

// Parse parses the input text and delivers events to h until either an
// error occurs or the input is exhausted. In case of a syntax error the
// returned error has type [*SyntaxError]; if the input exceeds a parse
// limit it has type [*LimitError].
func (s *Stream) Parse(h Handler) error {
	for {
		ev, err := s.s.Next()
		if err != nil {
			return err
		}
		var herr error
		switch ev {
		case StartObject:
			herr = h.BeginObject(s.s)
		case EndObject:
			herr = h.EndObject(s.s)
		case StartArray:
			herr = h.BeginArray(s.s)
		case EndArray:
			herr = h.EndArray(s.s)
		case KeyName:
			herr = h.BeginMember(s.s)
		case True, False, Null, Number, String, EmptyLiteral:
			herr = h.Value(s.s)
		case EmptyComposite:
			herr = h.EmptyComposite(s.s)
		case MissingValue:
			herr = h.MissingValue(s.s)
		case EndStream:
			h.EndOfInput(s.s)
			return nil
		}
		if herr != nil {
			return herr
		}
	}
}
