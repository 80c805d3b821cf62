package engine

import (
	"bytes"
	"encoding/json"
	"io"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

// byteSource tokenizes a byte slice with encoding/json's Decoder, which is
// the only decoder exposing InputOffset for token spans. Start offsets are
// recovered by skipping the separator bytes (whitespace, ',' and ':') that
// follow the previous token in the raw input.
type byteSource struct {
	data    []byte
	dec     *json.Decoder
	stack   []frame
	prevEnd int64
}

// NewBytes wraps a byte slice into a span-tracking TokenSource.
func NewBytes(b []byte) TokenSource {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &byteSource{data: b, dec: dec}
}

func (s *byteSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return Token{}, io.EOF
		}
		return Token{}, err
	}
	end := s.dec.InputOffset()
	start := s.tokenStart()
	s.prevEnd = end

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject, Start: start, End: end}, nil
		case '}':
			s.pop()
			return Token{Kind: KindEndObject, Start: start, End: end}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return Token{Kind: KindBeginArray, Start: start, End: end}, nil
		case ']':
			s.pop()
			return Token{Kind: KindEndArray, Start: start, End: end}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Start: start, End: end}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v, Start: start, End: end}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v, Start: start, End: end}, nil
	case json.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v), Start: start, End: end}, nil
	case nil:
		s.valueDone()
		return Token{Kind: KindNull, Start: start, End: end}, nil
	}
	s.valueDone()
	return Token{Kind: KindNull, Start: start, End: end}, nil
}

// tokenStart scans forward from the end of the previous token past the
// separator bytes that may precede the current one.
func (s *byteSource) tokenStart() int64 {
	i := s.prevEnd
	for i < int64(len(s.data)) {
		switch s.data[i] {
		case ' ', '\t', '\n', '\r', ',', ':':
			i++
		default:
			return i
		}
	}
	return i
}

func (s *byteSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

// valueDone flips the enclosing object frame back to expecting a key after a
// complete member value.
func (s *byteSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
