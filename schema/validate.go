package schema

import (
	"fmt"
	"unicode/utf8"

	"github.com/confkit/jsondoc"
	"github.com/confkit/jsondoc/i18n"
)

// Validate walks a document tree against the schema and returns every
// finding in one pass. It never stops early and never fails: a
// partially-conforming, user-edited tree produces a full list of typed
// findings the editor can group and display. The result is valid for saving
// when no entry has error severity.
func Validate(root *jsondoc.Object, s *Schema) jsondoc.Issues {
	var iss jsondoc.Issues
	if root == nil || s == nil {
		return iss
	}
	validateValue(root, s, nil, &iss)
	return iss
}

func validateValue(v jsondoc.Value, s *Schema, at jsondoc.Path, iss *jsondoc.Issues) {
	if s == nil {
		return
	}
	if len(s.Types) > 0 && !typeMatches(v, s.Types) {
		*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeTypeMismatch,
			fmt.Sprintf("%s: expected %v, got %s", i18n.T(jsondoc.CodeTypeMismatch, nil), s.Types, v.Kind()),
			jsondoc.Error, map[string]any{"expected": s.Types, "got": v.Kind().String()}))
		// the declared facets assume the declared type; stop at this node
		return
	}
	if len(s.Enum) > 0 && !inEnum(v, s.Enum) {
		*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeEnumViolation,
			i18n.T(jsondoc.CodeEnumViolation, nil), jsondoc.Error, nil))
	}

	switch t := v.(type) {
	case jsondoc.String:
		validateString(string(t), s, at, iss)
	case jsondoc.Int:
		validateNumber(float64(t), s, at, iss)
	case jsondoc.Float:
		validateNumber(float64(t), s, at, iss)
	case *jsondoc.Object:
		validateObject(t, s, at, iss)
	case *jsondoc.Array:
		if s.Items != nil {
			for i, it := range t.Items() {
				validateValue(it, s.Items, at.Index(i), iss)
			}
		}
	}
}

func validateString(str string, s *Schema, at jsondoc.Path, iss *jsondoc.Issues) {
	if s.Pattern != "" {
		re, err := compilePattern(s.Pattern)
		if err != nil {
			*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeOther,
				fmt.Sprintf("unusable pattern %q: %v", s.Pattern, err), jsondoc.Warn, nil))
		} else if !re.MatchString(str) {
			*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodePatternMismatch,
				fmt.Sprintf("%s %q", i18n.T(jsondoc.CodePatternMismatch, nil), s.Pattern),
				jsondoc.Error, map[string]any{"pattern": s.Pattern}))
		}
	}
	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeMinLengthViolation,
			i18n.T(jsondoc.CodeMinLengthViolation, nil), jsondoc.Error,
			map[string]any{"min": *s.MinLength, "got": n}))
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeMaxLengthViolation,
			i18n.T(jsondoc.CodeMaxLengthViolation, nil), jsondoc.Error,
			map[string]any{"max": *s.MaxLength, "got": n}))
	}
	if s.Format != "" {
		if ok, known := checkFormat(s.Format, str); known && !ok {
			*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeInvalidFormat,
				fmt.Sprintf("%s: not a valid %s", i18n.T(jsondoc.CodeInvalidFormat, nil), s.Format),
				jsondoc.Warn, map[string]any{"format": s.Format}))
		}
	}
}

func validateNumber(f float64, s *Schema, at jsondoc.Path, iss *jsondoc.Issues) {
	if s.Minimum != nil && f < *s.Minimum {
		*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeMinimumViolation,
			i18n.T(jsondoc.CodeMinimumViolation, nil), jsondoc.Error,
			map[string]any{"min": *s.Minimum, "got": f}))
	}
	if s.Maximum != nil && f > *s.Maximum {
		*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeMaximumViolation,
			i18n.T(jsondoc.CodeMaximumViolation, nil), jsondoc.Error,
			map[string]any{"max": *s.Maximum, "got": f}))
	}
}

func validateObject(obj *jsondoc.Object, s *Schema, at jsondoc.Path, iss *jsondoc.Issues) {
	for _, k := range s.Required {
		if _, present := obj.Get(k); !present {
			*iss = append(*iss, jsondoc.IssueAt(at, jsondoc.CodeRequiredFieldMissing,
				fmt.Sprintf("%s: %q", i18n.T(jsondoc.CodeRequiredFieldMissing, nil), k),
				jsondoc.Error, map[string]any{"field": k}))
		}
	}
	obj.Range(func(k string, v jsondoc.Value) bool {
		var child *Schema
		if s.Properties != nil {
			child, _ = s.Properties.Get(k)
		}
		if child != nil {
			if child.Deprecated {
				*iss = append(*iss, jsondoc.IssueAt(at.Field(k), jsondoc.CodeDeprecated,
					i18n.T(jsondoc.CodeDeprecated, nil), jsondoc.Warn, nil))
			}
			validateValue(v, child, at.Field(k), iss)
			return true
		}
		switch {
		case s.Additional == nil:
			// permissive: undeclared keys pass untouched
		case s.Additional.Schema != nil:
			validateValue(v, s.Additional.Schema, at.Field(k), iss)
		case !s.Additional.Allowed:
			*iss = append(*iss, jsondoc.IssueAt(at.Field(k), jsondoc.CodeAdditionalProperty,
				fmt.Sprintf("%s %q", i18n.T(jsondoc.CodeAdditionalProperty, nil), k),
				jsondoc.Warn, map[string]any{"key": k}))
		}
		return true
	})
}

func typeMatches(v jsondoc.Value, types []string) bool {
	name := v.Kind().String()
	for _, t := range types {
		if t == name {
			return true
		}
		// an integral number satisfies a float constraint
		if t == TypeFloat && name == TypeInt {
			return true
		}
	}
	return false
}

func inEnum(v jsondoc.Value, enum []jsondoc.Value) bool {
	for _, e := range enum {
		if jsondoc.Equal(v, e) {
			return true
		}
	}
	return false
}
