// Package schema implements the declarative schema subset that localization
// and feature-flag repositories describe their documents with: types,
// nested properties, required keys, enums, patterns, formats, bounds,
// deprecation and additional-property policy. It parses schema files from
// JSON or YAML, flattens them into a path-indexed property table, and
// validates value trees against them.
package schema

import (
	"errors"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/confkit/jsondoc"
)

// Recognized type names. "integer", "number" and "boolean" parse as aliases.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeNull   = "null"
	TypeArray  = "array"
	TypeObject = "object"
)

// ErrInvalidSchema wraps every schema parse failure.
var ErrInvalidSchema = errors.New("schema: invalid schema document")

// Schema is one node of the parsed schema tree.
type Schema struct {
	// Types holds the accepted type names; empty accepts any type.
	Types      []string
	Properties *orderedmap.OrderedMap[string, *Schema]
	Required   []string
	Pattern    string
	Format     string
	Enum       []jsondoc.Value
	Minimum    *float64
	Maximum    *float64
	MinLength  *int
	MaxLength  *int
	Deprecated bool
	// Additional constrains object keys outside Properties; nil allows them.
	Additional *Additional
	// Items validates array elements when set.
	Items   *Schema
	Default jsondoc.Value
}

// Additional is the parsed additionalProperties facet: either a plain
// allow/deny boolean or a sub-schema extra keys must satisfy.
type Additional struct {
	Allowed bool
	Schema  *Schema
}

// AllowsAdditional reports whether keys outside Properties are acceptable on
// this node. A nil schema or facet is permissive.
func (s *Schema) AllowsAdditional() bool {
	if s == nil || s.Additional == nil {
		return true
	}
	return s.Additional.Allowed || s.Additional.Schema != nil
}

// Parse decodes a JSON schema file.
func Parse(data []byte) (*Schema, error) {
	v, err := jsondoc.ParseValue(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	obj, ok := v.(*jsondoc.Object)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be an object, got %s", ErrInvalidSchema, v.Kind())
	}
	return fromObject(obj, nil)
}

func fromObject(obj *jsondoc.Object, at jsondoc.Path) (*Schema, error) {
	s := &Schema{}

	if v, ok := obj.Get("type"); ok {
		switch t := v.(type) {
		case jsondoc.String:
			name, err := normalizeType(string(t), at)
			if err != nil {
				return nil, err
			}
			s.Types = []string{name}
		case *jsondoc.Array:
			for _, it := range t.Items() {
				ts, ok := it.(jsondoc.String)
				if !ok {
					return nil, badFacet(at, "type", "entries must be strings")
				}
				name, err := normalizeType(string(ts), at)
				if err != nil {
					return nil, err
				}
				s.Types = append(s.Types, name)
			}
		default:
			return nil, badFacet(at, "type", "must be a string or array of strings")
		}
	}

	if v, ok := obj.Get("properties"); ok {
		po, ok := v.(*jsondoc.Object)
		if !ok {
			return nil, badFacet(at, "properties", "must be an object")
		}
		s.Properties = orderedmap.New[string, *Schema]()
		var err error
		po.Range(func(k string, pv jsondoc.Value) bool {
			co, ok := pv.(*jsondoc.Object)
			if !ok {
				err = badFacet(at.Field(k), "properties", "each property must be an object")
				return false
			}
			var child *Schema
			if child, err = fromObject(co, at.Field(k)); err != nil {
				return false
			}
			s.Properties.Set(k, child)
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	if v, ok := obj.Get("required"); ok {
		arr, ok := v.(*jsondoc.Array)
		if !ok {
			return nil, badFacet(at, "required", "must be an array of strings")
		}
		for _, it := range arr.Items() {
			name, ok := it.(jsondoc.String)
			if !ok {
				return nil, badFacet(at, "required", "must be an array of strings")
			}
			s.Required = append(s.Required, string(name))
		}
	}

	var err error
	if s.Pattern, err = stringFacet(obj, "pattern", at); err != nil {
		return nil, err
	}
	if s.Format, err = stringFacet(obj, "format", at); err != nil {
		return nil, err
	}

	if v, ok := obj.Get("enum"); ok {
		arr, ok := v.(*jsondoc.Array)
		if !ok {
			return nil, badFacet(at, "enum", "must be an array")
		}
		for _, it := range arr.Items() {
			s.Enum = append(s.Enum, it.Clone())
		}
	}

	if s.Minimum, err = numberFacet(obj, "minimum", at); err != nil {
		return nil, err
	}
	if s.Maximum, err = numberFacet(obj, "maximum", at); err != nil {
		return nil, err
	}
	if s.MinLength, err = intFacet(obj, "minLength", at); err != nil {
		return nil, err
	}
	if s.MaxLength, err = intFacet(obj, "maxLength", at); err != nil {
		return nil, err
	}

	if v, ok := obj.Get("deprecated"); ok {
		b, ok := v.(jsondoc.Bool)
		if !ok {
			return nil, badFacet(at, "deprecated", "must be a boolean")
		}
		s.Deprecated = bool(b)
	}

	if v, ok := obj.Get("additionalProperties"); ok {
		switch t := v.(type) {
		case jsondoc.Bool:
			s.Additional = &Additional{Allowed: bool(t)}
		case *jsondoc.Object:
			sub, err := fromObject(t, at.Field("additionalProperties"))
			if err != nil {
				return nil, err
			}
			s.Additional = &Additional{Allowed: true, Schema: sub}
		default:
			return nil, badFacet(at, "additionalProperties", "must be a boolean or an object")
		}
	}

	if v, ok := obj.Get("items"); ok {
		io, ok := v.(*jsondoc.Object)
		if !ok {
			return nil, badFacet(at, "items", "must be an object")
		}
		if s.Items, err = fromObject(io, at.Field("items")); err != nil {
			return nil, err
		}
	}

	if v, ok := obj.Get("default"); ok {
		s.Default = v.Clone()
	}

	return s, nil
}

func normalizeType(name string, at jsondoc.Path) (string, error) {
	switch name {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeNull, TypeArray, TypeObject:
		return name, nil
	case "integer":
		return TypeInt, nil
	case "number":
		return TypeFloat, nil
	case "boolean":
		return TypeBool, nil
	}
	return "", fmt.Errorf("%w: unknown type %q at %q", ErrInvalidSchema, name, at.String())
}

func stringFacet(obj *jsondoc.Object, field string, at jsondoc.Path) (string, error) {
	v, ok := obj.Get(field)
	if !ok {
		return "", nil
	}
	s, ok := v.(jsondoc.String)
	if !ok {
		return "", badFacet(at, field, "must be a string")
	}
	return string(s), nil
}

func numberFacet(obj *jsondoc.Object, field string, at jsondoc.Path) (*float64, error) {
	v, ok := obj.Get(field)
	if !ok {
		return nil, nil
	}
	switch t := v.(type) {
	case jsondoc.Int:
		f := float64(t)
		return &f, nil
	case jsondoc.Float:
		f := float64(t)
		return &f, nil
	}
	return nil, badFacet(at, field, "must be a number")
}

func intFacet(obj *jsondoc.Object, field string, at jsondoc.Path) (*int, error) {
	v, ok := obj.Get(field)
	if !ok {
		return nil, nil
	}
	i, ok := v.(jsondoc.Int)
	if !ok {
		return nil, badFacet(at, field, "must be an integer")
	}
	n := int(i)
	return &n, nil
}

func badFacet(at jsondoc.Path, field, why string) error {
	loc := at.String()
	if loc == "" {
		loc = "(root)"
	}
	return fmt.Errorf("%w: %s at %s %s", ErrInvalidSchema, field, loc, why)
}

// resolve walks nested properties (and items for numeric segments) down to
// the sub-schema for path, or nil when the path leaves declared territory.
func (s *Schema) resolve(path jsondoc.Path) *Schema {
	cur := s
	for _, seg := range path {
		if cur == nil {
			return nil
		}
		if cur.Properties != nil {
			if child, ok := cur.Properties.Get(seg); ok {
				cur = child
				continue
			}
		}
		if cur.Items != nil {
			if _, ok := arrayIndex(seg); ok {
				cur = cur.Items
				continue
			}
		}
		return nil
	}
	return cur
}

func arrayIndex(seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// RequiredFields returns the required key set declared at path. Unresolvable
// paths are permissive: no keys are required.
func (s *Schema) RequiredFields(path jsondoc.Path) []string {
	sub := s.resolve(path)
	if sub == nil || len(sub.Required) == 0 {
		return nil
	}
	return append([]string(nil), sub.Required...)
}

// AllowsAdditionalProperties reports the additional-property policy at path.
// Unresolvable paths are permissive.
func (s *Schema) AllowsAdditionalProperties(path jsondoc.Path) bool {
	return s.resolve(path).AllowsAdditional()
}
