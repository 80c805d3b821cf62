package schema

import (
	"github.com/confkit/jsondoc"
)

// ApplyDefaults returns a snapshot where properties that are absent from the
// document but declare a default in the schema gain that default. Only
// objects that already exist are descended into; missing intermediate
// containers are never created, matching the edit engine's resolution
// policy. The editor uses this when scaffolding a new entry.
func ApplyDefaults(doc *jsondoc.Document, s *Schema) (*jsondoc.Document, error) {
	out := doc
	for _, op := range collectDefaultOps(doc.Content(), s, nil, nil) {
		next, err := out.Apply(op)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

func collectDefaultOps(obj *jsondoc.Object, s *Schema, at jsondoc.Path, ops []jsondoc.Operation) []jsondoc.Operation {
	if s == nil || s.Properties == nil {
		return ops
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		v, present := obj.Get(pair.Key)
		if !present {
			if child.Default != nil {
				ops = append(ops, jsondoc.SetValue{At: at.Field(pair.Key), Value: child.Default.Clone()})
			}
			continue
		}
		if co, ok := v.(*jsondoc.Object); ok {
			ops = collectDefaultOps(co, child, at.Field(pair.Key), ops)
		}
	}
	return ops
}
