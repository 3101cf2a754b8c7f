// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

import (
	"unicode/utf8"

	"go4.org/mem"
)

// A litReader scans and classifies literal values. The implementations
// embody the two variants of the grammar: the standard form, in which
// strings may be quoted, and the AQF form, in which quotes are ordinary
// characters and "!" introduces an escape.
type litReader interface {
	// scan consumes the maximal literal at the cursor into the scanner's
	// scratch buffers, recording its span and decoration flags.
	scan(s *Scanner)

	// classify maps the scanned literal to its value event and arranges
	// the scanner's current-text view.
	classify(s *Scanner) Event
}

type stdLit struct{}

func (stdLit) scan(s *Scanner) {
	s.resetLiteral()
	off := s.src.pos
	if c, ok := s.src.peek(); ok && classOf(c)&chQuote != 0 && !s.o.ImpliedStringLiterals {
		s.scanQuoted()
		s.litSpan = Span{Pos: off, End: s.src.pos}
		return
	}
	for {
		c, ok := s.src.peek()
		if !ok {
			break
		}
		cl := classOf(c)
		if cl&chStruct != 0 {
			break
		}
		if cl&chForm != 0 {
			if s.formDepth1() {
				break
			}
			s.src.syntaxErr(CodeBadSeparator, s.src.pos, nil)
		}
		switch {
		case c == '%' || c == '+':
			s.decodeInto()
		case cl&chLit != 0:
			s.src.next()
			s.raw = append(s.raw, c)
			s.text = append(s.text, c)
		default:
			s.src.syntaxErr(CodeBadChar, s.src.pos, nil)
		}
	}
	s.litSpan = Span{Pos: off, End: s.src.pos}
}

func (stdLit) classify(s *Scanner) Event {
	if s.litQuoted {
		s.cur = s.text
		if len(s.text) == 0 {
			return EmptyLiteral
		}
		return String
	}
	return s.classifyPlain()
}

type aqfLit struct{}

func (aqfLit) scan(s *Scanner) {
	s.resetLiteral()
	off := s.src.pos
	for {
		c, ok := s.src.peek()
		if !ok {
			break
		}
		cl := classOf(c)
		if cl&chStruct != 0 {
			break
		}
		if cl&chForm != 0 {
			if s.formDepth1() {
				break
			}
			s.src.syntaxErr(CodeBadSeparator, s.src.pos, nil)
		}
		switch {
		case c == '!':
			s.scanBang()
		case c == '%' || c == '+':
			s.decodeInto()
		case cl&chLit != 0:
			s.src.next()
			s.raw = append(s.raw, c)
			s.text = append(s.text, c)
		default:
			s.src.syntaxErr(CodeBadChar, s.src.pos, nil)
		}
	}

	// The lone escape "!e" denotes an empty string.
	if s.litEscaped && len(s.raw) == 2 && s.raw[0] == '!' && s.raw[1] == 'e' {
		s.text = s.text[:0]
		s.litEmpty = true
	}
	s.litSpan = Span{Pos: off, End: s.src.pos}
}

func (aqfLit) classify(s *Scanner) Event {
	if s.litEmpty {
		s.cur = s.text
		return EmptyLiteral
	}
	if s.litEscaped {
		s.cur = s.text
		return String
	}
	return s.classifyPlain()
}

// classifyPlain classifies an unquoted, unescaped literal by its raw
// text: the exact texts "true", "false", and "null" and the texts
// matching the number grammar are the non-string literals, and anything
// else is a string. Because the raw text is compared, percent-encoding
// any character of such a literal makes it a string: "%74rue" is the
// string "true".
func (s *Scanner) classifyPlain() Event {
	if len(s.raw) == 0 {
		s.cur = s.text
		return EmptyLiteral
	}
	if s.o.ImpliedStringLiterals {
		s.cur = s.text
		return String
	}
	switch raw := mem.B(s.raw); {
	case raw.Equal(mem.S("true")):
		s.cur = s.raw
		return True
	case raw.Equal(mem.S("false")):
		s.cur = s.raw
		return False
	case raw.Equal(mem.S("null")):
		if s.o.CoerceNullToEmptyString {
			s.text = s.text[:0]
			s.cur = s.text
			return EmptyLiteral
		}
		s.cur = s.raw
		return Null
	}
	if n, ok := ParseNumber(s.raw); ok {
		s.num = n
		s.cur = s.raw
		return Number
	}
	s.cur = s.text
	return String
}

// scanQuoted consumes a quoted string through its closing quote. The
// delimiters are not recorded in the scratch buffers.
func (s *Scanner) scanQuoted() {
	s.src.next() // opening quote
	s.litQuoted = true
	for {
		c, ok := s.src.peek()
		if !ok {
			s.src.syntaxErr(CodeUnexpectedEOF, s.src.pos, nil)
		}
		switch {
		case c == '\'':
			s.src.next()
			return
		case c == '%' || c == '+':
			s.decodeInto()
		case classOf(c)&chQuoted != 0:
			s.src.next()
			s.raw = append(s.raw, c)
			s.text = append(s.text, c)
		default:
			s.src.syntaxErr(CodeBadChar, s.src.pos, nil)
		}
	}
}

// decodeInto decodes one percent or plus unit at the cursor, recording
// the raw bytes and the decoded rune in the scratch buffers.
func (s *Scanner) decodeInto() {
	start := s.src.pos
	r, _ := s.src.decode(true)
	s.raw = append(s.raw, s.src.text[start:s.src.pos]...)
	s.text = utf8.AppendRune(s.text, r)
}

// scanBang consumes a "!" escape. Any escape marks the literal as a
// string, whatever its decoded text: "1e!+1" is the string "1e+1", not
// a number.
func (s *Scanner) scanBang() {
	off := s.src.pos
	s.src.next() // '!'
	c, ok := s.src.peek()
	if !ok || !isBangSafe(c) {
		s.src.syntaxErr(CodeBadEscape, off, nil)
	}
	s.src.next()
	s.litEscaped = true
	s.raw = append(s.raw, '!', c)
	s.text = append(s.text, c)
}

// isBangSafe reports whether c may follow the "!" escape character.
func isBangSafe(c byte) bool {
	switch c {
	case '!', '(', ')', ',', ':', '+', '-', 'e':
		return true
	}
	return isDigitByte(c)
}

// resetLiteral clears the scratch buffers and decoration flags.
func (s *Scanner) resetLiteral() {
	s.raw, s.text = s.raw[:0], s.text[:0]
	s.litQuoted, s.litEscaped, s.litEmpty = false, false, false
	s.num = NumberText{}
}
