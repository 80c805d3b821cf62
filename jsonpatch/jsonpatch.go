// Package jsonpatch bridges the engine's edit operations to RFC 6902 JSON
// Patch, for tooling that speaks patches rather than the editor's operation
// set. Conversion goes through the canonical byte form; applying a patch
// yields a fresh tree installed with WithUpdatedContent, so the document's
// original text keeps serving as the layout baseline.
package jsonpatch

import (
	"fmt"
	"strconv"

	jsonpatch "github.com/evanphx/json-patch/v5"
	gojson "github.com/goccy/go-json"

	"github.com/confkit/jsondoc"
)

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	// Value stays un-omitted so an explicit null survives the round trip.
	Value any `json:"value"`
}

// FromOperations renders engine operations as an RFC 6902 patch document.
// SetValue with a numeric last segment maps to "replace" (RFC "add" inserts
// into arrays instead of overwriting); everything else maps directly.
func FromOperations(ops []jsondoc.Operation) ([]byte, error) {
	out := make([]patchOp, 0, len(ops))
	for _, op := range ops {
		p, err := translate(op)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return gojson.Marshal(out)
}

func translate(op jsondoc.Operation) (patchOp, error) {
	switch t := op.(type) {
	case jsondoc.SetValue:
		o := "add"
		if len(t.At) > 0 {
			if _, err := strconv.Atoi(t.At[len(t.At)-1]); err == nil {
				o = "replace"
			}
		}
		return patchOp{Op: o, Path: t.At.Pointer(), Value: toNative(t.Value)}, nil
	case jsondoc.AddField:
		return patchOp{Op: "add", Path: t.Parent.Field(t.Key).Pointer(), Value: toNative(t.Value)}, nil
	case jsondoc.DeleteField:
		return patchOp{Op: "remove", Path: t.At.Pointer()}, nil
	case jsondoc.DeleteArrayElement:
		return patchOp{Op: "remove", Path: t.At.Pointer()}, nil
	case jsondoc.InsertArrayElement:
		p := t.At.Pointer() + "/-"
		if t.Index != nil {
			p = t.At.Index(*t.Index).Pointer()
		}
		return patchOp{Op: "add", Path: p, Value: toNative(t.Value)}, nil
	case jsondoc.MoveArrayElement:
		// RFC 6902 move inserts at the post-removal position, matching the
		// engine's semantics exactly.
		return patchOp{
			Op:   "move",
			From: t.At.Index(t.From).Pointer(),
			Path: t.At.Index(t.To).Pointer(),
		}, nil
	}
	return patchOp{}, fmt.Errorf("jsonpatch: unsupported operation %T", op)
}

// Apply runs an RFC 6902 patch against a document and returns the patched
// snapshot. The patch operates on the canonical byte form; layout
// preservation against the original text still applies when the result is
// serialized.
func Apply(doc *jsondoc.Document, patchJSON []byte) (*jsondoc.Document, error) {
	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("jsonpatch: decode: %w", err)
	}
	base, err := jsondoc.Serialize(doc.Content(), nil)
	if err != nil {
		return nil, err
	}
	patched, err := p.Apply(base)
	if err != nil {
		return nil, fmt.Errorf("jsonpatch: apply: %w", err)
	}
	v, err := jsondoc.ParseValue(patched)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*jsondoc.Object)
	if !ok {
		return nil, fmt.Errorf("jsonpatch: patch result is %s, want object", v.Kind())
	}
	return doc.WithUpdatedContent(root), nil
}

func toNative(v jsondoc.Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case jsondoc.Null:
		return nil
	case jsondoc.Bool:
		return bool(t)
	case jsondoc.Int:
		return int64(t)
	case jsondoc.Float:
		return float64(t)
	case jsondoc.String:
		return string(t)
	case *jsondoc.Array:
		out := make([]any, 0, t.Len())
		for _, it := range t.Items() {
			out = append(out, toNative(it))
		}
		return out
	case *jsondoc.Object:
		out := make(map[string]any, t.Len())
		t.Range(func(k string, val jsondoc.Value) bool {
			out[k] = toNative(val)
			return true
		})
		return out
	}
	return nil
}
