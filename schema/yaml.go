package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/confkit/jsondoc"
)

// ParseYAML decodes a YAML schema file. Config repositories carry schemas in
// both syntaxes; the YAML node walk keeps property order the same way the
// JSON path does.
func ParseYAML(data []byte) (*Schema, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if n.Kind != yaml.DocumentNode || len(n.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSchema)
	}
	v, err := yamlValue(n.Content[0])
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*jsondoc.Object)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be a mapping, got %s", ErrInvalidSchema, v.Kind())
	}
	return fromObject(obj, nil)
}

func yamlValue(n *yaml.Node) (jsondoc.Value, error) {
	switch n.Kind {
	case yaml.MappingNode:
		obj := jsondoc.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]jsondoc.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return jsondoc.NewArray(items...), nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!int":
			i, err := strconv.ParseInt(n.Value, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad integer %q", ErrInvalidSchema, n.Value)
			}
			return jsondoc.Int(i), nil
		case "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad float %q", ErrInvalidSchema, n.Value)
			}
			return jsondoc.Float(f), nil
		case "!!bool":
			return jsondoc.Bool(strings.EqualFold(n.Value, "true")), nil
		case "!!null":
			return jsondoc.Null{}, nil
		default:
			return jsondoc.String(n.Value), nil
		}
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	}
	return nil, fmt.Errorf("%w: unsupported YAML node kind %d", ErrInvalidSchema, n.Kind)
}
