package jsondoc

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
)

// Editable is the contract the presentation and publish layers work against:
// anything that exposes a value tree, remembers its source text, and can
// produce edited snapshots and bytes.
type Editable interface {
	Content() *Object
	OriginalText() ([]byte, bool)
	WithUpdatedValue(path Path, v Value) (*Document, error)
	Serialize() ([]byte, error)
}

// Document wraps a parsed value tree together with the raw text it was
// loaded from and the set of paths touched by edits. A Document is never
// mutated: every edit produces a new snapshot and the caller decides which
// one is current.
type Document struct {
	id         string
	sourcePath string
	content    *Object
	original   []byte
	edited     map[string]struct{}
}

var _ Editable = (*Document)(nil)

var docSeq atomic.Uint64

func nextDocID() string { return "doc-" + strconv.FormatUint(docSeq.Add(1), 10) }

// ParseDocument decodes data into a Document. The top-level value must be an
// object; arrays, scalars and malformed text fail with a parse_error Issues
// value and no partial document.
func ParseDocument(data []byte) (*Document, error) {
	v, err := ParseValue(data)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*Object)
	if !ok {
		return nil, Issues{{
			Code:     CodeParseError,
			Message:  fmt.Sprintf("top-level value must be an object, got %s", v.Kind()),
			Severity: Error,
		}}
	}
	text := make([]byte, len(data))
	copy(text, data)
	return &Document{
		id:       nextDocID(),
		content:  root,
		original: text,
		edited:   map[string]struct{}{},
	}, nil
}

// NewDocument builds a programmatic document with no original text. Its
// serialization is canonical and HasChanges always reports false.
func NewDocument(root *Object) *Document {
	if root == nil {
		root = NewObject()
	}
	return &Document{id: nextDocID(), content: root, edited: map[string]struct{}{}}
}

// ID returns the document's opaque identity, stable across edits.
func (d *Document) ID() string { return d.id }

// SourcePath returns the path or URL the document was loaded from, if any.
func (d *Document) SourcePath() string { return d.sourcePath }

// WithSourcePath returns a copy carrying the given source location.
func (d *Document) WithSourcePath(p string) *Document {
	out := d.clone()
	out.sourcePath = p
	return out
}

// Content returns the root object. Callers must treat the tree as read-only
// and go through Apply for changes.
func (d *Document) Content() *Object { return d.content }

// OriginalText returns the raw bytes the document was first loaded from.
func (d *Document) OriginalText() ([]byte, bool) {
	if d.original == nil {
		return nil, false
	}
	return d.original, true
}

// Apply runs one edit operation and returns the resulting snapshot. On
// failure the receiver stays valid and authoritative; the error explains why
// the operation did not resolve.
func (d *Document) Apply(op Operation) (*Document, error) {
	root, err := op.Apply(d.content)
	if err != nil {
		return nil, err
	}
	out := d.clone()
	out.content = root
	out.edited[op.TargetPath().String()] = struct{}{}
	return out, nil
}

// WithUpdatedValue sets value at path. Sugar for Apply(SetValue{...}).
func (d *Document) WithUpdatedValue(path Path, v Value) (*Document, error) {
	return d.Apply(SetValue{At: path, Value: v})
}

// WithUpdatedContent replaces the whole tree, keeping the original text as
// the serialization baseline. The edited-path set resets: provenance of the
// new tree is unknown.
func (d *Document) WithUpdatedContent(root *Object) *Document {
	out := d.clone()
	out.content = root
	out.edited = map[string]struct{}{}
	return out
}

// Serialize produces the document's bytes, preserving the original layout
// outside edited regions when original text is available.
func (d *Document) Serialize() ([]byte, error) {
	return Serialize(d.content, d.original)
}

// HasChanges reports whether serializing the current tree differs from the
// original text. Computed on every call rather than cached, so it stays
// truthful regardless of how the current snapshot was produced. Documents
// without original text never report changes.
func (d *Document) HasChanges() bool {
	if d.original == nil {
		return false
	}
	out, err := d.Serialize()
	if err != nil {
		return true
	}
	return !bytes.Equal(out, d.original)
}

// EditedPaths returns the dotted paths touched by successful edit operations
// since load, sorted. Advisory only: change state comes from HasChanges.
func (d *Document) EditedPaths() []string {
	out := make([]string, 0, len(d.edited))
	for p := range d.edited {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (d *Document) clone() *Document {
	edited := make(map[string]struct{}, len(d.edited))
	for p := range d.edited {
		edited[p] = struct{}{}
	}
	return &Document{
		id:         d.id,
		sourcePath: d.sourcePath,
		content:    d.content,
		original:   d.original,
		edited:     edited,
	}
}
