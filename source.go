// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

import (
	"errors"

	"github.com/creachadair/jsonurl/internal/percent"
	"go4.org/mem"
)

// A source is a cursor over a fully-addressable input with one byte of
// pushback. Consumption is metered against a byte limit: the meter is a
// high-water mark over the input offset, so a byte that is pushed back
// and read again is charged only once. When the meter would pass the
// limit, the read panics with a *LimitError instead of returning.
//
// All grammar errors funnel through syntaxErr, which panics with a
// *SyntaxError carrying the offset where the error was detected. The
// scanner's outermost entry point recovers both panic types.
type source struct {
	text string
	pos  int // offset of the next unread byte
	hw   int // high-water mark of consumed offsets
	max  int // greatest number of bytes that may be consumed
}

func (s *source) init(text string, maxChars int) {
	s.text = text
	s.pos, s.hw = 0, 0
	s.max = maxChars
}

// next returns and consumes the next input byte. It reports false at the
// end of input.
func (s *source) next() (byte, bool) {
	if s.pos >= len(s.text) {
		return 0, false
	}
	if s.pos >= s.hw {
		if s.hw >= s.max {
			panic(&LimitError{Kind: LimitChars, Offset: s.pos})
		}
		s.hw++
	}
	b := s.text[s.pos]
	s.pos++
	return b, true
}

// unread pushes the last byte returned by next back onto the input.
// At most one byte may be unread between reads.
func (s *source) unread() { s.pos-- }

// peek returns the next input byte without consuming it, or reports
// false at the end of input.
func (s *source) peek() (byte, bool) {
	b, ok := s.next()
	if !ok {
		return 0, false
	}
	s.unread()
	return b, true
}

// atEnd reports whether the input is exhausted.
func (s *source) atEnd() bool { return s.pos >= len(s.text) }

// decode consumes one percent-encoded unit at the cursor and returns the
// decoded rune and the number of input bytes consumed. Malformed escapes
// are reported via syntaxErr.
func (s *source) decode(plusSpace bool) (rune, int) {
	start := s.pos
	r, n, err := percent.Decode(mem.S(s.text), start, plusSpace)
	if err != nil {
		code := CodeBadEscape
		if errors.Is(err, percent.ErrBadUTF8) {
			code = CodeBadUTF8
		}
		s.syntaxErr(code, start, err)
	}
	for i := 0; i < n; i++ {
		s.next()
	}
	return r, n
}

// syntaxErr panics with a *SyntaxError for the given code and offset.
func (s *source) syntaxErr(code Code, offset int, cause error) {
	panic(&SyntaxError{
		Code:     code,
		Offset:   offset,
		Location: s.lineCol(offset),
		err:      cause,
	})
}

// lineCol computes the line and column of the given input offset. Line
// breaks are rare in practice, so positions are derived on demand rather
// than tracked during the scan.
func (s *source) lineCol(offset int) LineCol {
	line, start := 1, 0
	for i := 0; i < offset && i < len(s.text); i++ {
		if s.text[i] == '\n' {
			line++
			start = i + 1
		}
	}
	return LineCol{Line: line, Column: offset - start}
}
