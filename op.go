package jsondoc

import (
	"errors"
	"fmt"
)

// Operation failure sentinels. Applying an operation never mutates the input
// tree; a non-nil error means "no result" and the caller's snapshot stays
// authoritative.
var (
	// ErrPathUnresolved signals that a path segment before the last does not
	// exist or descends through a scalar. Operations never create missing
	// intermediate containers.
	ErrPathUnresolved = errors.New("jsondoc: path does not resolve")
	// ErrIndexOutOfRange signals an array index outside the valid range.
	// Indices are never clamped.
	ErrIndexOutOfRange = errors.New("jsondoc: array index out of range")
	// ErrKeyNotFound signals a delete of an absent object key.
	ErrKeyNotFound = errors.New("jsondoc: key not found")
	// ErrNotAnArray signals an array operation addressed at a non-array.
	ErrNotAnArray = errors.New("jsondoc: value is not an array")
)

// Operation is one structural mutation expressed as data. Apply resolves the
// operation's path against root and returns a new tree, sharing every
// container the edit did not touch. It returns an explicit error instead of
// silently handing back the unmodified tree, so callers can tell "nothing
// changed because already equal" from "the edit failed to resolve".
type Operation interface {
	Apply(root *Object) (*Object, error)
	// TargetPath is the location the operation edits, recorded on the
	// document's edited-path set after a successful apply.
	TargetPath() Path
}

// SetValue writes Value at the path's last segment. A missing last key on an
// existing object parent is added (appended); an in-range numeric segment on
// an array parent replaces the element.
type SetValue struct {
	At    Path
	Value Value
}

// AddField sets Parent.Key to Value. Sugar for SetValue on Parent+Key.
type AddField struct {
	Parent Path
	Key    string
	Value  Value
}

// DeleteField removes the object key named by the path's last segment.
type DeleteField struct {
	At Path
}

// DeleteArrayElement removes the element at the numeric index named by the
// path's last segment.
type DeleteArrayElement struct {
	At Path
}

// InsertArrayElement inserts Value into the array at At. A nil Index
// appends; otherwise 0 <= *Index <= len must hold (len means append).
type InsertArrayElement struct {
	At    Path
	Value Value
	Index *int
}

// MoveArrayElement removes the element at From and re-inserts it at To in
// the post-removal array: moving index 0 to index 2 in [1,2,3,4] yields
// [2,3,1,4]. Both indices must be valid in the original array.
type MoveArrayElement struct {
	At       Path
	From, To int
}

func (op SetValue) TargetPath() Path           { return op.At }
func (op AddField) TargetPath() Path           { return op.Parent.Field(op.Key) }
func (op DeleteField) TargetPath() Path        { return op.At }
func (op DeleteArrayElement) TargetPath() Path { return op.At }
func (op InsertArrayElement) TargetPath() Path { return op.At }
func (op MoveArrayElement) TargetPath() Path   { return op.At }

func (op SetValue) Apply(root *Object) (*Object, error) {
	if len(op.At) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrPathUnresolved)
	}
	last := op.At[len(op.At)-1]
	return rebuildAt(root, op.At[:len(op.At)-1], func(parent Value) (Value, error) {
		switch c := parent.(type) {
		case *Object:
			out := c.shallowClone()
			out.Set(last, op.Value)
			return out, nil
		case *Array:
			i, ok := index(last)
			if !ok || i >= len(c.items) {
				return nil, fmt.Errorf("%w: %q", ErrIndexOutOfRange, op.At)
			}
			out := c.shallowClone()
			out.items[i] = op.Value
			return out, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrPathUnresolved, op.At)
		}
	})
}

func (op AddField) Apply(root *Object) (*Object, error) {
	return SetValue{At: op.Parent.Field(op.Key), Value: op.Value}.Apply(root)
}

func (op DeleteField) Apply(root *Object) (*Object, error) {
	if len(op.At) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrPathUnresolved)
	}
	last := op.At[len(op.At)-1]
	return rebuildAt(root, op.At[:len(op.At)-1], func(parent Value) (Value, error) {
		obj, ok := parent.(*Object)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPathUnresolved, op.At)
		}
		if _, present := obj.Get(last); !present {
			return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, op.At)
		}
		out := obj.shallowClone()
		out.Delete(last)
		return out, nil
	})
}

func (op DeleteArrayElement) Apply(root *Object) (*Object, error) {
	if len(op.At) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrPathUnresolved)
	}
	last := op.At[len(op.At)-1]
	return rebuildAt(root, op.At[:len(op.At)-1], func(parent Value) (Value, error) {
		arr, ok := parent.(*Array)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotAnArray, op.At)
		}
		i, ok := index(last)
		if !ok || i >= len(arr.items) {
			return nil, fmt.Errorf("%w: %q", ErrIndexOutOfRange, op.At)
		}
		items := make([]Value, 0, len(arr.items)-1)
		items = append(items, arr.items[:i]...)
		items = append(items, arr.items[i+1:]...)
		return &Array{items: items}, nil
	})
}

func (op InsertArrayElement) Apply(root *Object) (*Object, error) {
	return rebuildAt(root, op.At, func(v Value) (Value, error) {
		arr, ok := v.(*Array)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotAnArray, op.At)
		}
		i := len(arr.items)
		if op.Index != nil {
			i = *op.Index
			if i < 0 || i > len(arr.items) {
				return nil, fmt.Errorf("%w: insert at %d of %q", ErrIndexOutOfRange, i, op.At)
			}
		}
		items := make([]Value, 0, len(arr.items)+1)
		items = append(items, arr.items[:i]...)
		items = append(items, op.Value)
		items = append(items, arr.items[i:]...)
		return &Array{items: items}, nil
	})
}

func (op MoveArrayElement) Apply(root *Object) (*Object, error) {
	return rebuildAt(root, op.At, func(v Value) (Value, error) {
		arr, ok := v.(*Array)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotAnArray, op.At)
		}
		n := len(arr.items)
		if op.From < 0 || op.From >= n || op.To < 0 || op.To >= n {
			return nil, fmt.Errorf("%w: move %d->%d of %q", ErrIndexOutOfRange, op.From, op.To, op.At)
		}
		moved := arr.items[op.From]
		items := make([]Value, 0, n)
		items = append(items, arr.items[:op.From]...)
		items = append(items, arr.items[op.From+1:]...)
		// To addresses the post-removal array.
		items = append(items[:op.To], append([]Value{moved}, items[op.To:]...)...)
		return &Array{items: items}, nil
	})
}

// rebuildAt descends the path prefix, applies edit to the value it resolves
// to, and rebuilds the spine from leaf to root with shallow clones. Every
// container off the edited path is shared with the input tree.
func rebuildAt(root *Object, prefix Path, edit func(Value) (Value, error)) (*Object, error) {
	out, err := rebuildValue(root, prefix, edit)
	if err != nil {
		return nil, err
	}
	obj, ok := out.(*Object)
	if !ok {
		// The root slot can only hold an object; an edit that replaces the
		// root wholesale with another kind is a caller bug surfaced softly.
		return nil, fmt.Errorf("%w: root replaced with %s", ErrPathUnresolved, out.Kind())
	}
	return obj, nil
}

func rebuildValue(v Value, prefix Path, edit func(Value) (Value, error)) (Value, error) {
	if len(prefix) == 0 {
		return edit(v)
	}
	seg := prefix[0]
	switch c := v.(type) {
	case *Object:
		child, ok := c.Get(seg)
		if !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrPathUnresolved, seg)
		}
		replaced, err := rebuildValue(child, prefix[1:], edit)
		if err != nil {
			return nil, err
		}
		out := c.shallowClone()
		out.Set(seg, replaced)
		return out, nil
	case *Array:
		i, ok := index(seg)
		if !ok || i >= len(c.items) {
			return nil, fmt.Errorf("%w: bad index %q", ErrPathUnresolved, seg)
		}
		replaced, err := rebuildValue(c.items[i], prefix[1:], edit)
		if err != nil {
			return nil, err
		}
		out := c.shallowClone()
		out.items[i] = replaced
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q descends through a %s", ErrPathUnresolved, seg, v.Kind())
	}
}
