// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

import "fmt"

// state is a continuation on the scanner's parse stack. The slot at the
// top of the stack names the production the cursor is inside of; opening
// a composite pushes a slot and closing one pops it, so nesting needs no
// native recursion.
type state byte

const (
	stEndStream state = iota // input complete, report EndStream

	stStart       // before a complete (non-implied) value
	stSkipLeading // absorb leading "&" runs in form encoding
	stSavedEvent  // replay an event held back by disambiguation
	stParen       // after "(", composite kind not yet known

	stImpliedArray      // before an element of an implied array
	stInArray           // before an element of an explicit array
	stArrayAfterElement // after an array element

	stImpliedObject      // before a key of an implied object
	stInObject           // before a key of an explicit object
	stObjectHaveKey      // after a key, before its name separator
	stObjectHaveKeySep   // after a name separator, before the value
	stObjectAfterElement // after an object member
)

// A Scanner reads the structural events of a JSON→URL text. Each call to
// Next advances the scanner to the next event, or reports an error.
//
// The grammar requires one character of lookahead except at an open
// parenthesis, where the kind of the composite is not known until the
// first value inside it has been read. The scanner resolves this by
// scanning that value, reporting the start of the composite, and holding
// the value back to be replayed by the following call to Next.
type Scanner struct {
	src source
	o   *Options
	lit litReader

	maxDepth  int
	maxValues int

	allow   TypeSet
	implied Implied

	stack  []state
	depth  int // number of enclosing composites, implied included
	values int // number of keys and values read so far

	started bool
	done    bool
	err     error

	saved     Event // event held back for replay, or Invalid
	savedSpan Span

	event Event
	span  Span

	// Scratch state of the current literal. The raw buffer accumulates
	// input bytes as written, the text buffer their decoded form.
	raw, text  []byte
	cur        []byte // text of the current event; aliases raw or text
	num        NumberText
	litQuoted  bool // the literal was quoted
	litEscaped bool // the literal contained a "!" escape
	litEmpty   bool // the literal was the empty-string escape "!e"
	litSpan    Span

	tbuf [][]byte // allocation pool for Copy
}

// NewScanner constructs a scanner for the given input text. A nil opts
// pointer selects the default options.
func NewScanner(text string, opts *Options) *Scanner {
	s := &Scanner{o: opts.ptr()}
	s.lit = stdLit{}
	if s.o.AQF {
		s.lit = aqfLit{}
	}
	s.maxDepth = s.o.Limits.maxDepth()
	s.maxValues = s.o.Limits.maxValues()
	s.src.init(text, s.o.Limits.maxChars())
	s.reset(AnyType, ImpliedNone)
	return s
}

// SetType constrains the kind of value the input may contain, and
// selects an implied outermost composite. An allow set of zero permits
// any kind. SetType resets the scanner to the beginning of its input, so
// it is ordinarily called before the first Next.
func (s *Scanner) SetType(allow TypeSet, implied Implied) { s.reset(allow, implied) }

func (s *Scanner) reset(allow TypeSet, implied Implied) {
	if allow == 0 {
		allow = AnyType
	}
	s.allow, s.implied = allow, implied
	s.src.pos, s.src.hw = 0, 0
	s.stack = s.stack[:0]
	s.depth, s.values = 0, 0
	s.started, s.done = false, false
	s.err = nil
	s.saved, s.event = Invalid, Invalid
	s.span, s.savedSpan = Span{}, Span{}
	s.resetLiteral()
	s.cur = nil

	switch implied {
	case ImpliedArray:
		s.push(stImpliedArray)
	case ImpliedObject:
		s.push(stImpliedObject)
	default:
		s.push(stStart)
	}
	if implied != ImpliedNone && s.o.FormURLEncoded {
		s.push(stSkipLeading)
	}
}

// Next advances s to the next event of the input. At the end of input it
// returns EndStream, and calling Next again returns EndStream without
// consuming anything further. After an error the scanner is stuck, and
// every subsequent call reports the same error.
func (s *Scanner) Next() (Event, error) {
	if s.err != nil {
		s.event = Invalid
		return Invalid, s.err
	}
	if s.done {
		s.event = EndStream
		return EndStream, nil
	}
	ev, err := s.step()
	s.event = ev
	return ev, err
}

// step runs the state machine inside a recovery boundary: the scanning
// internals report errors by panicking with *SyntaxError or *LimitError,
// and step converts them back into error returns.
func (s *Scanner) step() (ev Event, err error) {
	defer func() {
		if p := recover(); p != nil {
			switch e := p.(type) {
			case *SyntaxError:
				s.err = e
			case *LimitError:
				s.err = e
			default:
				panic(p)
			}
			ev, err = Invalid, s.err
		}
	}()
	if !s.started {
		s.started = true
		if s.implied != ImpliedNone {
			if s.allow&impliedType(s.implied) == 0 {
				s.src.syntaxErr(CodeWrongType, 0, nil)
			}
			s.bumpDepth(0)
			s.countValue(0)
		}
	}
	return s.advance(), nil
}

func (s *Scanner) advance() Event {
	for {
		switch st := s.top(); st {
		case stEndStream:
			s.done = true
			n := len(s.src.text)
			s.span = Span{Pos: n, End: n}
			s.cur = nil
			return EndStream

		case stSavedEvent:
			s.pop()
			ev := s.saved
			s.saved = Invalid
			s.span = s.savedSpan
			switch {
			case ev == EndArray || ev == EndObject:
				// The close of a canonical empty composite.
				s.depth--
				s.cur = nil
			case ev == Null && s.o.SkipNulls:
				continue
			}
			return ev

		case stSkipLeading:
			s.pop()
			s.skipAmpRun()
			continue

		case stStart:
			c, ok := s.src.peek()
			if !ok {
				s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
			}
			if c == '(' {
				s.pop()
				s.openParen()
				continue
			}
			if classOf(c)&(chStruct|chForm) != 0 {
				s.badSep(c)
			}

			// The whole input is a single literal value.
			s.lit.scan(s)
			ev := s.classifyValue()
			if s.allow&eventType(ev) == 0 {
				s.src.syntaxErr(CodeWrongType, s.litSpan.Pos, nil)
			}
			s.pop()
			s.endCheck()
			s.push(stEndStream)
			if ev == Null && s.o.SkipNulls {
				continue
			}
			return ev

		case stParen:
			return s.parenEvent()

		case stImpliedArray, stInArray:
			c, ok := s.src.peek()
			if !ok {
				if st == stInArray {
					s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
				}
				// End of an implied array. An element is awaited here
				// only at the start of the input or after a separator; a
				// trailing empty element must be enabled by option, and
				// an input with no elements at all is an empty array.
				if s.values > 1 {
					ev := s.emptyElement()
					s.setTop(stArrayAfterElement)
					return ev
				}
				s.setTop(stEndStream)
				continue
			}
			switch {
			case c == '(':
				s.setTop(stArrayAfterElement)
				s.openParen()
				continue
			case c == ',' || (c == '&' && s.formDepth1()):
				// An empty element; the separator is left for the
				// continuation state.
				ev := s.emptyElement()
				s.setTop(stArrayAfterElement)
				return ev
			case c == ')':
				if st == stImpliedArray {
					s.src.syntaxErr(CodeBadChar, s.src.pos, nil)
				}
				// A trailing separator, as in "(1,)": the final element
				// is empty.
				ev := s.emptyElement()
				s.setTop(stArrayAfterElement)
				return ev
			case classOf(c)&(chStruct|chForm) != 0: // ":" or a misplaced separator
				s.badSep(c)
			}
			s.lit.scan(s)
			ev := s.classifyValue()
			s.setTop(stArrayAfterElement)
			if ev == Null && s.o.SkipNulls {
				continue
			}
			return ev

		case stArrayAfterElement:
			c, ok := s.src.peek()
			if !ok {
				if s.impliedTop() {
					s.setTop(stEndStream)
					continue
				}
				s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
			}
			switch {
			case c == ',':
				s.src.next()
				s.setTop(s.nextElemState(stImpliedArray, stInArray))
				continue
			case c == '&' && s.formDepth1():
				s.skipAmpRun()
				if s.src.atEnd() && s.impliedTop() {
					// Trailing separators are ignored in form encoding.
					s.setTop(stEndStream)
				} else {
					s.setTop(s.nextElemState(stImpliedArray, stInArray))
				}
				continue
			case c == ')':
				if s.impliedTop() {
					s.src.syntaxErr(CodeBadChar, s.src.pos, nil)
				}
				return s.closeComposite(EndArray)
			}
			s.badSep(c)

		case stImpliedObject, stInObject:
			c, ok := s.src.peek()
			if !ok {
				if st == stInObject || s.values > 1 {
					// A separator promised another member.
					s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
				}
				s.setTop(stEndStream)
				continue
			}
			switch {
			case c == ':' || (c == '=' && s.formDepth1()):
				// A member with a zero-length key.
				ev := s.emptyKey()
				s.setTop(stObjectHaveKey)
				return ev
			case classOf(c)&(chStruct|chForm) != 0:
				s.badSep(c)
			}
			s.lit.scan(s)
			s.keyCommit()
			s.setTop(stObjectHaveKey)
			return KeyName

		case stObjectHaveKey:
			c, ok := s.src.peek()
			if !ok || c == ',' || c == ')' || (c == '&' && s.formDepth1()) {
				// No name separator follows the key. In an implied
				// object this is a member without a value; anywhere else
				// it is malformed.
				if s.impliedTop() {
					s.setTop(stObjectAfterElement)
					s.span = s.litSpan
					s.cur = nil
					return MissingValue
				}
				s.src.syntaxErr(CodeMissingValue, s.src.pos, nil)
			}
			if c == ':' || (c == '=' && s.formDepth1()) {
				s.src.next()
				s.setTop(stObjectHaveKeySep)
				continue
			}
			s.badSep(c)

		case stObjectHaveKeySep:
			c, ok := s.src.peek()
			if !ok {
				if s.impliedTop() {
					// "a=" at the end of a form encoding: an empty value.
					ev := s.emptyElement()
					s.setTop(stObjectAfterElement)
					return ev
				}
				s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
			}
			switch {
			case c == '(':
				s.setTop(stObjectAfterElement)
				s.openParen()
				continue
			case c == ',' || c == ')' || (c == '&' && s.formDepth1()):
				// An empty member value, as in "(a:)" or "a=&b=2".
				ev := s.emptyElement()
				s.setTop(stObjectAfterElement)
				return ev
			case classOf(c)&(chStruct|chForm) != 0: // ":" or a misplaced separator
				s.badSep(c)
			}
			s.lit.scan(s)
			ev := s.classifyValue()
			s.setTop(stObjectAfterElement)
			if ev == Null && s.o.SkipNulls {
				continue
			}
			return ev

		case stObjectAfterElement:
			c, ok := s.src.peek()
			if !ok {
				if s.impliedTop() {
					s.setTop(stEndStream)
					continue
				}
				s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
			}
			switch {
			case c == ',':
				s.src.next()
				s.setTop(s.nextElemState(stImpliedObject, stInObject))
				continue
			case c == '&' && s.formDepth1():
				s.skipAmpRun()
				if s.src.atEnd() && s.impliedTop() {
					s.setTop(stEndStream)
				} else {
					s.setTop(s.nextElemState(stImpliedObject, stInObject))
				}
				continue
			case c == ')':
				if s.impliedTop() {
					s.src.syntaxErr(CodeBadChar, s.src.pos, nil)
				}
				return s.closeComposite(EndObject)
			}
			s.badSep(c)

		default:
			panic(fmt.Sprintf("invalid scanner state %d", st))
		}
	}
}

// parenEvent disambiguates the composite whose open parenthesis was just
// consumed. The kind is decided by at most one buffered value and one
// character of lookahead beyond it.
func (s *Scanner) parenEvent() Event {
	c, ok := s.src.peek()
	if !ok {
		s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
	}
	switch {
	case c == ')':
		off := s.src.pos - 1 // the open parenthesis
		if s.o.NoEmptyComposite {
			s.checkTopType(TypeArray)
		} else {
			s.checkTopType(TypeObject | TypeArray)
		}
		s.src.next()
		s.pop()
		if len(s.stack) == 0 {
			s.endCheck()
			s.push(stEndStream)
		}
		s.span = Span{Pos: off, End: s.src.pos}
		s.cur = nil
		if s.o.NoEmptyComposite {
			// Without the ambiguous form, "()" reads as an empty array.
			s.saved, s.savedSpan = EndArray, s.span
			s.push(stSavedEvent)
			return StartArray
		}
		s.depth--
		return EmptyComposite

	case c == ':':
		off := s.src.pos - 1
		s.checkTopType(TypeObject)
		if s.o.NoEmptyComposite {
			s.src.next()
			if c2, ok := s.src.peek(); ok && c2 == ')' {
				// "(:)" is the canonical empty object.
				s.src.next()
				s.pop()
				if len(s.stack) == 0 {
					s.endCheck()
					s.push(stEndStream)
				}
				s.span = Span{Pos: off, End: s.src.pos}
				s.cur = nil
				s.saved, s.savedSpan = EndObject, s.span
				s.push(stSavedEvent)
				return StartObject
			}
			s.src.unread() // ":" resumes as an ordinary name separator
		}
		// "(:" begins a member with an empty key, handled as at any other
		// key position: the separator is left for the continuation.
		s.emptyKey()
		s.saved, s.savedSpan = KeyName, s.litSpan
		s.setTop(stObjectHaveKey)
		s.push(stSavedEvent)
		s.span = Span{Pos: off, End: off + 1}
		return StartObject

	case c == '(':
		// Two consecutive open parentheses: only an array can begin so.
		s.checkTopType(TypeArray)
		s.setTop(stInArray)
		return StartArray
	}

	// Ambiguous: scan the first literal, and let the character after it
	// decide the kind of the composite.
	s.lit.scan(s)
	c2, ok := s.src.peek()
	if !ok {
		s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
	}
	switch {
	case c2 == ':' || (c2 == '=' && s.formDepth1()):
		s.checkTopType(TypeObject)
		s.keyCommit()
		s.saved, s.savedSpan = KeyName, s.litSpan
		s.setTop(stObjectHaveKey)
		s.push(stSavedEvent)
		s.span = Span{Pos: s.litSpan.Pos - 1, End: s.litSpan.Pos}
		return StartObject
	case c2 == ',' || c2 == ')' || (c2 == '&' && s.formDepth1()):
		s.checkTopType(TypeArray)
		ev := s.classifyValue()
		s.saved, s.savedSpan = ev, s.litSpan
		s.setTop(stArrayAfterElement)
		s.push(stSavedEvent)
		s.span = Span{Pos: s.litSpan.Pos - 1, End: s.litSpan.Pos}
		return StartArray
	}
	s.src.syntaxErr(CodeBadChar, s.src.pos, nil)
	panic("unreachable")
}

// openParen consumes an open parenthesis and pushes the disambiguation
// state above the caller's continuation.
func (s *Scanner) openParen() {
	off := s.src.pos
	s.src.next()
	s.bumpDepth(off)
	s.countValue(off)
	s.span = Span{Pos: off, End: off + 1}
	s.push(stParen)
}

// closeComposite consumes a close parenthesis and pops its production.
func (s *Scanner) closeComposite(ev Event) Event {
	off := s.src.pos
	s.src.next()
	s.depth--
	s.pop()
	if len(s.stack) == 0 {
		s.endCheck()
		s.push(stEndStream)
	}
	s.span = Span{Pos: off, End: off + 1}
	s.cur = nil
	return ev
}

// classifyValue classifies the literal just scanned as a value event,
// enforcing the empty-value options and the value count limit.
func (s *Scanner) classifyValue() Event {
	ev := s.lit.classify(s)
	if ev == EmptyLiteral && s.isEmptyUnquoted() && !s.allowEmptyValue() {
		s.src.syntaxErr(CodeEmptyValue, s.litSpan.Pos, nil)
	}
	s.countValue(s.litSpan.Pos)
	s.span = s.litSpan
	return ev
}

// keyCommit records the literal just scanned as an object member key.
func (s *Scanner) keyCommit() {
	if s.isEmptyUnquoted() && !s.allowEmptyKey() {
		s.src.syntaxErr(CodeEmptyKey, s.litSpan.Pos, nil)
	}
	s.countValue(s.litSpan.Pos)
	s.span = s.litSpan
	s.cur = s.text
}

// emptyElement reports a zero-length value at a position where a
// structural character ended a literal before it began.
func (s *Scanner) emptyElement() Event {
	off := s.src.pos
	if !s.allowEmptyValue() {
		s.src.syntaxErr(CodeEmptyValue, off, nil)
	}
	s.resetLiteral()
	s.countValue(off)
	s.litSpan = Span{Pos: off, End: off}
	s.span = s.litSpan
	s.cur = s.text
	return EmptyLiteral
}

// emptyKey reports a zero-length key at a position where the name
// separator immediately follows the start of a member.
func (s *Scanner) emptyKey() Event {
	off := s.src.pos
	if !s.allowEmptyKey() {
		s.src.syntaxErr(CodeEmptyKey, off, nil)
	}
	s.resetLiteral()
	s.countValue(off)
	s.litSpan = Span{Pos: off, End: off}
	s.span = s.litSpan
	s.cur = s.text
	return KeyName
}

// isEmptyUnquoted reports whether the scanned literal is empty without
// an explicit marker (quotes or an escape).
func (s *Scanner) isEmptyUnquoted() bool { return len(s.raw) == 0 && !s.litQuoted }

func (s *Scanner) allowEmptyValue() bool {
	return s.o.EmptyUnquotedValue || s.o.ImpliedStringLiterals
}

func (s *Scanner) allowEmptyKey() bool {
	return s.o.EmptyUnquotedKey || s.o.ImpliedStringLiterals
}

// skipAmpRun consumes a run of consecutive "&" separators.
func (s *Scanner) skipAmpRun() {
	for {
		c, ok := s.src.peek()
		if !ok || c != '&' {
			return
		}
		s.src.next()
	}
}

// badSep reports a structural or separator character that is not valid
// at the current position.
func (s *Scanner) badSep(c byte) {
	code := CodeBadChar
	if classOf(c)&chForm != 0 {
		code = CodeBadSeparator
	}
	s.src.syntaxErr(code, s.src.pos, nil)
}

// formDepth1 reports whether form separators are structural at the
// cursor: form encoding is enabled and the cursor is among the members
// of the outermost composite.
func (s *Scanner) formDepth1() bool {
	return s.o.FormURLEncoded && s.depth == 1
}

// checkTopType enforces the SetType constraint when opening the
// outermost composite.
func (s *Scanner) checkTopType(t TypeSet) {
	if s.depth == 1 && s.implied == ImpliedNone && s.allow&t == 0 {
		s.src.syntaxErr(CodeWrongType, s.span.Pos, nil)
	}
}

// endCheck verifies that no input remains once the outermost value is
// complete.
func (s *Scanner) endCheck() {
	if !s.src.atEnd() {
		s.src.syntaxErr(CodeExtraChars, s.src.pos, nil)
	}
}

func (s *Scanner) countValue(off int) {
	s.values++
	if s.values > s.maxValues {
		panic(&LimitError{Kind: LimitValues, Offset: off})
	}
}

func (s *Scanner) bumpDepth(off int) {
	s.depth++
	if s.depth > s.maxDepth {
		panic(&LimitError{Kind: LimitDepth, Offset: off})
	}
}

// impliedTop reports whether the cursor is in the body of an implied
// outermost composite.
func (s *Scanner) impliedTop() bool {
	return s.implied != ImpliedNone && len(s.stack) == 1
}

func (s *Scanner) nextElemState(implied, explicit state) state {
	if s.impliedTop() {
		return implied
	}
	return explicit
}

func impliedType(im Implied) TypeSet {
	if im == ImpliedObject {
		return TypeObject
	}
	return TypeArray
}

func (s *Scanner) push(st state) { s.stack = append(s.stack, st) }
func (s *Scanner) top() state    { return s.stack[len(s.stack)-1] }

func (s *Scanner) setTop(st state) { s.stack[len(s.stack)-1] = st }

func (s *Scanner) pop() state {
	st := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	return st
}

// Event returns the event reported by the most recent call to Next.
func (s *Scanner) Event() Event { return s.event }

// Err returns the error reported by the most recent call to Next, or nil.
func (s *Scanner) Err() error { return s.err }

// Text returns the decoded text of the current literal event, or the
// undecoded text for a numeric literal. The return value is only valid
// until the next call of Next. The caller must copy the contents of the
// returned slice if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.cur }

// Copy returns a copy of the text of the current literal event.
func (s *Scanner) Copy() []byte { return s.copyOf(s.cur) }

// Number returns the descriptor of the current numeric literal. Its
// contents are meaningful only when the current event is Number, and
// remain valid only until the next call of Next.
func (s *Scanner) Number() *NumberText { return &s.num }

// Span returns the location span of the current event.
func (s *Scanner) Span() Span { return s.span }

// Offset returns the starting offset of the current event.
func (s *Scanner) Offset() int { return s.span.Pos }

// Location returns the complete location of the current event.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.span,
		First: s.src.lineCol(s.span.Pos),
		Last:  s.src.lineCol(s.span.End),
	}
}

func (s *Scanner) copyOf(text []byte) []byte {
	const minBlockSlop = 4
	const smallSizeFraction = 16
	const bufBlockBytes = 16384

	// For values bigger than smallSizeFraction of the block size, don't
	// bother batching, make an outright copy.
	if len(text) >= bufBlockBytes/smallSizeFraction {
		return append([]byte(nil), text...)
	}

	// Look for a block with space enough to hold a copy of text.
	i := 0
	for i < len(s.tbuf) {
		if n := len(s.tbuf[i]) + len(text); n < cap(s.tbuf[i]) {
			// There is room in this block.
			break
		} else if cap(s.tbuf[i])-len(text) < minBlockSlop {
			// There is no room in this block, but it is nearly-enough full.
			// Allocate a fresh block at this location and release the old
			// one. The old block is retained until its copies are released.
			s.tbuf[i] = make([]byte, 0, bufBlockBytes)
			break
		}
		i++
	}
	if i == len(s.tbuf) {
		// No block had room; add a new empty one to the arena.
		s.tbuf = append(s.tbuf, make([]byte, 0, bufBlockBytes))
	}
	p := len(s.tbuf[i])
	s.tbuf[i] = append(s.tbuf[i], text...)
	return s.tbuf[i][p : p+len(text)]
}
