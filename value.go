package jsondoc

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind discriminates the variants of the Value union.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is the closed union of JSON values. Consumers switch exhaustively on
// the concrete type (or Kind) instead of runtime type-checking loose any
// trees. Trees are owned exclusively by their root; edits never mutate a
// Value in place.
type Value interface {
	Kind() Kind
	// Clone returns a deep copy of the value.
	Clone() Value
}

// Null is the JSON null value.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Int is a JSON number without a fraction or exponent that fits in int64.
type Int int64

// Float is any other JSON number.
type Float float64

// String is a JSON string.
type String string

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }

func (v Null) Clone() Value   { return v }
func (v Bool) Clone() Value   { return v }
func (v Int) Clone() Value    { return v }
func (v Float) Clone() Value  { return v }
func (v String) Clone() Value { return v }

// Array is an ordered sequence of values.
type Array struct {
	items []Value
}

// NewArray builds an array from the given items. The slice is retained.
func NewArray(items ...Value) *Array { return &Array{items: items} }

func (*Array) Kind() Kind { return KindArray }

func (a *Array) Len() int { return len(a.items) }

// At returns the element at index i; the index must be in range.
func (a *Array) At(i int) Value { return a.items[i] }

// Items returns the backing slice. Callers must not modify it; build a new
// Array (or apply an operation) instead.
func (a *Array) Items() []Value { return a.items }

func (a *Array) Clone() Value {
	items := make([]Value, len(a.items))
	for i, it := range a.items {
		items[i] = it.Clone()
	}
	return &Array{items: items}
}

// shallowClone copies the element slice but shares the elements.
func (a *Array) shallowClone() *Array {
	items := make([]Value, len(a.items))
	copy(items, a.items)
	return &Array{items: items}
}

// Object is a JSON object whose keys keep insertion order. Setting an
// existing key keeps its position; new keys append at the end, which is what
// the order-preserving serializer relies on.
type Object struct {
	members *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{members: orderedmap.New[string, Value]()}
}

func (*Object) Kind() Kind { return KindObject }

func (o *Object) Len() int { return o.members.Len() }

func (o *Object) Get(key string) (Value, bool) { return o.members.Get(key) }

// Set writes key to v, appending the key when absent.
func (o *Object) Set(key string, v Value) { o.members.Set(key, v) }

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	_, present := o.members.Delete(key)
	return present
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.members.Len())
	for pair := o.members.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each member in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for pair := o.members.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

func (o *Object) Clone() Value {
	out := NewObject()
	for pair := o.members.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value.Clone())
	}
	return out
}

// shallowClone copies the member table but shares the member values.
func (o *Object) shallowClone() *Object {
	out := NewObject()
	for pair := o.members.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// Equal reports deep structural equality. Int and Float never compare equal
// even when numerically identical, mirroring how values parse: a document
// edit that swaps 1 for 1.0 is a real change.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case String:
		return av == b.(String)
	case *Array:
		bv := b.(*Array)
		if len(av.items) != len(bv.items) {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		ap, bp := av.members.Oldest(), bv.members.Oldest()
		for ap != nil && bp != nil {
			if ap.Key != bp.Key || !Equal(ap.Value, bp.Value) {
				return false
			}
			ap, bp = ap.Next(), bp.Next()
		}
		return ap == nil && bp == nil
	}
	return false
}
