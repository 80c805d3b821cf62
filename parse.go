package jsondoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	eng "github.com/confkit/jsondoc/internal/engine"
)

// ParseValue decodes a single JSON value of any kind. Trailing non-whitespace
// input is a parse failure. Numbers without a fraction or exponent that fit
// in int64 decode as Int, everything else as Float.
func ParseValue(data []byte) (Value, error) {
	src := eng.NewBytes(data)
	tok, err := src.NextToken()
	if err != nil {
		return nil, parseIssue(err)
	}
	v, err := buildValue(src, tok)
	if err != nil {
		return nil, parseIssue(err)
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("trailing content after top-level value")
		}
		return nil, parseIssue(err)
	}
	return v, nil
}

func buildValue(src eng.TokenSource, tok eng.Token) (Value, error) {
	switch tok.Kind {
	case eng.KindBeginObject:
		return buildObject(src)
	case eng.KindBeginArray:
		return buildArray(src)
	case eng.KindString:
		return String(tok.String), nil
	case eng.KindNumber:
		return numberValue(tok.Number), nil
	case eng.KindBool:
		return Bool(tok.Bool), nil
	case eng.KindNull:
		return Null{}, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func buildObject(src eng.TokenSource) (Value, error) {
	obj := NewObject()
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == eng.KindEndObject {
			return obj, nil
		}
		if tok.Kind != eng.KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := buildValue(src, vt)
		if err != nil {
			return nil, err
		}
		obj.Set(tok.String, v)
	}
}

func buildArray(src eng.TokenSource) (Value, error) {
	var items []Value
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == eng.KindEndArray {
			return &Array{items: items}, nil
		}
		v, err := buildValue(src, tok)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

// numberValue maps a JSON number literal onto the Int/Float split of the
// value union.
func numberValue(lit string) Value {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(i)
		}
	}
	// The tokenizer already validated the literal; ParseFloat only saturates
	// on overflow.
	f, _ := strconv.ParseFloat(lit, 64)
	return Float(f)
}

func parseIssue(err error) Issues {
	return Issues{{Path: "", Code: CodeParseError, Message: err.Error(), Severity: Error}}
}
