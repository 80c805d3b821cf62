package jsondoc

import (
	"strconv"
	"strings"
)

// Path identifies a location in a value tree by repeated object-key (or
// numeric-index-as-string) descent from the root. The zero value addresses
// the root itself.
type Path []string

// ParsePath splits a dotted path ("a.b.0") into segments. The empty string
// yields the root path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// Field returns a new path extended by an object key.
func (p Path) Field(name string) Path {
	return append(append(Path{}, p...), name)
}

// Index returns a new path extended by an array index.
func (p Path) Index(i int) Path {
	return append(append(Path{}, p...), strconv.Itoa(i))
}

// String renders the dotted form used for edited-path bookkeeping and
// validator output.
func (p Path) String() string { return strings.Join(p, ".") }

// Pointer renders the path as an RFC 6901 JSON Pointer, escaping '~' and '/'.
func (p Path) Pointer() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(seg, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// index parses a path segment as a non-negative array index.
func index(seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
