package schema

import (
	"github.com/confkit/jsondoc"
)

// PropertyInfo is the flattened projection of one declared property:
// everything an editor needs to render and constrain a single field, keyed
// by its dotted path from the document root.
type PropertyInfo struct {
	Path       string
	Types      []string
	Required   bool
	Pattern    string
	Format     string
	Enum       []jsondoc.Value
	Minimum    *float64
	Maximum    *float64
	MinLength  *int
	MaxLength  *int
	Deprecated bool
	Default    jsondoc.Value
}

// ExtractPropertyInfo walks properties depth-first and returns one entry per
// reachable property. Required is resolved against the parent's required
// set. On a path collision the deeper entry wins.
func ExtractPropertyInfo(s *Schema) map[string]PropertyInfo {
	out := map[string]PropertyInfo{}
	flattenProperties(s, nil, out)
	return out
}

func flattenProperties(s *Schema, at jsondoc.Path, out map[string]PropertyInfo) {
	if s == nil || s.Properties == nil {
		return
	}
	required := make(map[string]struct{}, len(s.Required))
	for _, k := range s.Required {
		required[k] = struct{}{}
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		p := at.Field(pair.Key)
		child := pair.Value
		_, isRequired := required[pair.Key]
		out[p.String()] = PropertyInfo{
			Path:       p.String(),
			Types:      append([]string(nil), child.Types...),
			Required:   isRequired,
			Pattern:    child.Pattern,
			Format:     child.Format,
			Enum:       append([]jsondoc.Value(nil), child.Enum...),
			Minimum:    child.Minimum,
			Maximum:    child.Maximum,
			MinLength:  child.MinLength,
			MaxLength:  child.MaxLength,
			Deprecated: child.Deprecated,
			Default:    child.Default,
		}
		flattenProperties(child, p, out)
	}
}
