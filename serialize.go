package jsondoc

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Serialize converts a value tree back to text. When original is non-empty
// and still parses, the output preserves the original byte layout everywhere
// except the minimal regions covering the differences between the two trees.
// Without an original (or when the original can no longer be read) the
// output is the canonical deterministic pretty-print: sorted keys, two-space
// indent, trailing newline.
//
// Re-parsing the output always yields a tree equal to root.
func Serialize(root *Object, original []byte) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("jsondoc: nil root")
	}
	if len(original) > 0 {
		if out, ok := serializePreserving(root, original); ok {
			return out, nil
		}
	}
	buf := appendCanonical(nil, root, "")
	return append(buf, '\n'), nil
}

func appendCanonical(buf []byte, v Value, indent string) []byte {
	switch t := v.(type) {
	case *Object:
		if t.Len() == 0 {
			return append(buf, "{}"...)
		}
		keys := t.Keys()
		sort.Strings(keys)
		inner := indent + "  "
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, '\n')
			buf = append(buf, inner...)
			buf = appendString(buf, k)
			buf = append(buf, ": "...)
			val, _ := t.Get(k)
			buf = appendCanonical(buf, val, inner)
		}
		buf = append(buf, '\n')
		buf = append(buf, indent...)
		return append(buf, '}')
	case *Array:
		if len(t.items) == 0 {
			return append(buf, "[]"...)
		}
		inner := indent + "  "
		buf = append(buf, '[')
		for i, it := range t.items {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, '\n')
			buf = append(buf, inner...)
			buf = appendCanonical(buf, it, inner)
		}
		buf = append(buf, '\n')
		buf = append(buf, indent...)
		return append(buf, ']')
	default:
		return appendScalar(buf, v)
	}
}

// appendCompact renders a value on a single line: the style used for values
// the preserving serializer has no original bytes for.
func appendCompact(buf []byte, v Value) []byte {
	switch t := v.(type) {
	case *Object:
		buf = append(buf, '{')
		i := 0
		t.Range(func(k string, val Value) bool {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = appendString(buf, k)
			buf = append(buf, ": "...)
			buf = appendCompact(buf, val)
			i++
			return true
		})
		return append(buf, '}')
	case *Array:
		buf = append(buf, '[')
		for i, it := range t.items {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = appendCompact(buf, it)
		}
		return append(buf, ']')
	default:
		return appendScalar(buf, v)
	}
}

func appendScalar(buf []byte, v Value) []byte {
	switch t := v.(type) {
	case Null:
		return append(buf, "null"...)
	case Bool:
		if t {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case Int:
		return strconv.AppendInt(buf, int64(t), 10)
	case Float:
		b, err := gojson.Marshal(float64(t))
		if err != nil {
			// NaN/Inf cannot appear in a parsed tree.
			return append(buf, '0')
		}
		buf = append(buf, b...)
		if !bytes.ContainsAny(b, ".eE") {
			// keep the fraction so the literal re-parses as a float
			buf = append(buf, ".0"...)
		}
		return buf
	case String:
		return appendString(buf, string(t))
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	b, err := gojson.MarshalWithOption(s, gojson.DisableHTMLEscape())
	if err != nil {
		b, _ = gojson.Marshal(s)
	}
	return append(buf, b...)
}
