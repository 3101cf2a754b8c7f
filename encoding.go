// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jsonurl

// EncodeLiteral encodes s as a single literal under opts: bare when
// possible, otherwise quoted in standard form or escaped in AQF form.
// The result is exactly the text [Marshal] would produce for s. It
// reports an error if s is not valid UTF-8.
func EncodeLiteral(s string, opts *Options) (string, error) {
	dst, err := AppendLiteral(nil, s, opts)
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

// AppendLiteral appends the encoding of s as a single literal to dst and
// returns the updated slice, with the semantics of [EncodeLiteral].
func AppendLiteral(dst []byte, s string, opts *Options) ([]byte, error) {
	w := writer{o: opts.ptr()}
	return w.str(dst, s, false)
}

// DecodeLiteral decodes text as a single literal under opts and returns
// its text as the scanner reports it: for a string, the decoded
// characters, with quotation marks removed, "!" escapes unescaped, and
// percent escapes and "+" replaced by the characters they encode; for a
// number, boolean, or null, the text as written. Options that rewrite
// literal text, such as CoerceNullToEmptyString, still apply. A
// composite input reports an error with code CodeWrongType.
func DecodeLiteral(text string, opts *Options) ([]byte, error) {
	sc := NewScanner(text, opts)
	ev, err := sc.Next()
	if err != nil {
		return nil, err
	}
	if !ev.isLiteral() {
		return nil, &SyntaxError{Code: CodeWrongType, Offset: sc.Offset(), Location: sc.Location().First}
	}
	return sc.Copy(), nil
}
