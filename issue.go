package jsondoc

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeParseError           = "parse_error"
	CodeTypeMismatch         = "type_mismatch"
	CodeRequiredFieldMissing = "required_field_missing"
	CodeInvalidFormat        = "invalid_format"
	CodePatternMismatch      = "pattern_mismatch"
	CodeEnumViolation        = "enum_violation"
	CodeMinimumViolation     = "minimum_violation"
	CodeMaximumViolation     = "maximum_violation"
	CodeMinLengthViolation   = "min_length_violation"
	CodeMaxLengthViolation   = "max_length_violation"
	CodeAdditionalProperty   = "additional_property_not_allowed"
	CodeDeprecated           = "deprecated"
	CodeOther                = "other"
)

// Severity classifies a finding as advisory or blocking. Warnings never make
// a document invalid.
type Severity int

const (
	Warn Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Issue represents a single finding from parsing or validation.
type Issue struct {
	Path     string // Dotted path (for example: items.2.price); empty for the root.
	Code     string // One of the codes listed above.
	Message  string
	Severity Severity
	// Params carries structured parameters (e.g., {"min":1, "got":42}) for
	// i18n and observability.
	Params map[string]any
}

// Issues is an ordered collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		p := it.Path
		if p == "" {
			p = "."
		}
		// e.g. type_mismatch at a.b
		fmt.Fprintf(b, "%s at %s", it.Code, p)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Valid reports whether the collection contains no error-severity entries.
// Warnings alone never block a save.
func (iss Issues) Valid() bool {
	for _, it := range iss {
		if it.Severity == Error {
			return false
		}
	}
	return true
}

// GroupByPath buckets findings by their path, preserving the original order
// inside each bucket. Display layers use this; the flat list stays
// authoritative.
func (iss Issues) GroupByPath() map[string]Issues {
	out := make(map[string]Issues, len(iss))
	for _, it := range iss {
		out[it.Path] = append(out[it.Path], it)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given path with the provided code, message,
// severity and params map. Convenience for call sites with many parameters.
func IssueAt(p Path, code, msg string, sev Severity, params map[string]any) Issue {
	return Issue{Path: p.String(), Code: code, Message: msg, Severity: sev, Params: params}
}
