package jsondoc

import (
	"bytes"

	eng "github.com/confkit/jsondoc/internal/engine"
)

// The preserving serializer walks the edited tree and a span-tracking reparse
// of the original text in lock-step by path, copying verbatim byte ranges for
// untouched subtrees and re-rendering only the touched spans. When the new
// tree diverges from the original in a way byte surgery cannot express
// (reordered object keys, rewritten arrays), the affected region falls back
// to a fresh render and everything around it stays verbatim.

// spanNode records where a value sits in the original text. start/end delimit
// the value text itself; for containers, closeGapStart marks where the
// whitespace before the closing bracket begins.
type spanNode struct {
	val           Value
	start, end    int
	members       []spanMember
	elems         []spanElem
	closeGapStart int
}

// spanMember is one object member. The gap covers the whitespace between the
// preceding separator (comma or opening brace) and the key; the bytes from
// keyEnd to the value's start hold the colon and its surrounding whitespace.
type spanMember struct {
	key              string
	gapStart         int
	keyStart, keyEnd int
	val              *spanNode
}

type spanElem struct {
	gapStart int
	val      *spanNode
}

func serializePreserving(root *Object, original []byte) ([]byte, bool) {
	src := eng.NewBytes(original)
	tok, err := src.NextToken()
	if err != nil {
		return nil, false
	}
	span, err := buildSpan(src, tok, original)
	if err != nil || span.val.Kind() != KindObject {
		return nil, false
	}
	buf := make([]byte, 0, len(original)+64)
	buf = append(buf, original[:span.start]...)
	buf = emitPreserved(buf, original, span, root)
	buf = append(buf, original[span.end:]...)
	return buf, true
}

func buildSpan(src eng.TokenSource, tok eng.Token, data []byte) (*spanNode, error) {
	switch tok.Kind {
	case eng.KindBeginObject:
		n := &spanNode{start: int(tok.Start)}
		obj := NewObject()
		byKey := map[string]int{}
		prevEnd := int(tok.End)
		for {
			t, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if t.Kind == eng.KindEndObject {
				n.end = int(t.End)
				n.closeGapStart = prevEnd
				n.val = obj
				return n, nil
			}
			m := spanMember{
				key:      t.String,
				gapStart: gapAfterComma(data, prevEnd, int(t.Start)),
				keyStart: int(t.Start),
				keyEnd:   int(t.End),
			}
			vt, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			child, err := buildSpan(src, vt, data)
			if err != nil {
				return nil, err
			}
			m.val = child
			obj.Set(t.String, child.val)
			if i, dup := byKey[t.String]; dup {
				// duplicate key: last value wins, keep one member entry
				n.members[i] = m
			} else {
				byKey[t.String] = len(n.members)
				n.members = append(n.members, m)
			}
			prevEnd = child.end
		}
	case eng.KindBeginArray:
		n := &spanNode{start: int(tok.Start)}
		var items []Value
		prevEnd := int(tok.End)
		for {
			t, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if t.Kind == eng.KindEndArray {
				n.end = int(t.End)
				n.closeGapStart = prevEnd
				n.val = &Array{items: items}
				return n, nil
			}
			e := spanElem{gapStart: gapAfterComma(data, prevEnd, int(t.Start))}
			child, err := buildSpan(src, t, data)
			if err != nil {
				return nil, err
			}
			e.val = child
			items = append(items, child.val)
			n.elems = append(n.elems, e)
			prevEnd = child.end
		}
	case eng.KindString:
		return &spanNode{val: String(tok.String), start: int(tok.Start), end: int(tok.End)}, nil
	case eng.KindNumber:
		return &spanNode{val: numberValue(tok.Number), start: int(tok.Start), end: int(tok.End)}, nil
	case eng.KindBool:
		return &spanNode{val: Bool(tok.Bool), start: int(tok.Start), end: int(tok.End)}, nil
	default:
		return &spanNode{val: Null{}, start: int(tok.Start), end: int(tok.End)}, nil
	}
}

// gapAfterComma returns the offset just past the separating comma between
// from and to, or from when there is none (first member/element).
func gapAfterComma(data []byte, from, to int) int {
	for i := from; i < to; i++ {
		if data[i] == ',' {
			return i + 1
		}
	}
	return from
}

func emitPreserved(buf, orig []byte, old *spanNode, v Value) []byte {
	if Equal(old.val, v) {
		return append(buf, orig[old.start:old.end]...)
	}
	switch nv := v.(type) {
	case *Object:
		if old.val.Kind() == KindObject {
			return emitObject(buf, orig, old, nv)
		}
	case *Array:
		if old.val.Kind() == KindArray {
			return emitArray(buf, orig, old, nv)
		}
	}
	return appendCompact(buf, v)
}

func emitObject(buf, orig []byte, old *spanNode, obj *Object) []byte {
	oldKeys := make(map[string]struct{}, len(old.members))
	for i := range old.members {
		oldKeys[old.members[i].key] = struct{}{}
	}
	if !emitOrderMatches(old, obj, oldKeys) {
		return appendCompact(buf, obj)
	}

	buf = append(buf, '{')
	written := 0
	for i := range old.members {
		m := &old.members[i]
		nv, ok := obj.Get(m.key)
		if !ok {
			continue
		}
		if written > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, orig[m.gapStart:m.keyEnd]...)
		buf = append(buf, orig[m.keyEnd:m.val.start]...)
		buf = emitPreserved(buf, orig, m.val, nv)
		written++
	}
	gap, colon := appendStyle(orig, old)
	obj.Range(func(k string, nv Value) bool {
		if _, ok := oldKeys[k]; ok {
			return true
		}
		if written > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, gap...)
		buf = appendString(buf, k)
		buf = append(buf, colon...)
		buf = appendCompact(buf, nv)
		written++
		return true
	})
	buf = append(buf, orig[old.closeGapStart:old.end-1]...)
	return append(buf, '}')
}

// emitOrderMatches checks that surviving keys keep their original relative
// order and that added keys all sit after them, i.e. the order byte surgery
// would emit equals the tree's order. Edit operations maintain this; a
// wholesale content replacement may not.
func emitOrderMatches(old *spanNode, obj *Object, oldKeys map[string]struct{}) bool {
	var want []string
	for i := range old.members {
		if _, ok := obj.Get(old.members[i].key); ok {
			want = append(want, old.members[i].key)
		}
	}
	obj.Range(func(k string, _ Value) bool {
		if _, kept := oldKeys[k]; !kept {
			want = append(want, k)
		}
		return true
	})
	i := 0
	match := true
	obj.Range(func(k string, _ Value) bool {
		if i >= len(want) || want[i] != k {
			match = false
			return false
		}
		i++
		return true
	})
	return match && i == len(want)
}

// appendStyle infers the separator and colon style for keys appended to an
// existing object from its sibling members.
func appendStyle(orig []byte, old *spanNode) (gap, colon string) {
	colon = ": "
	if len(old.members) == 0 {
		gap = ""
		if bytes.ContainsRune(orig[old.start:old.end], '\n') {
			gap = "\n"
		}
		return gap, colon
	}
	first := &old.members[0]
	colon = string(orig[first.keyEnd:first.val.start])
	last := &old.members[len(old.members)-1]
	g := orig[last.gapStart:last.keyStart]
	switch {
	case bytes.ContainsRune(g, '\n'):
		gap = string(g[bytes.LastIndexByte(g, '\n'):])
	case len(old.members) >= 2:
		gap = string(g)
	default:
		gap = " "
	}
	return gap, colon
}

func emitArray(buf, orig []byte, old *spanNode, arr *Array) []byte {
	items := arr.items
	oldN := len(old.elems)
	if len(items) < oldN {
		if idxs, ok := matchSubsequence(old, items); ok {
			buf = append(buf, '[')
			for j, oi := range idxs {
				e := &old.elems[oi]
				if j > 0 {
					buf = append(buf, ',')
				}
				buf = append(buf, orig[e.gapStart:e.val.end]...)
			}
			buf = append(buf, orig[old.closeGapStart:old.end-1]...)
			return append(buf, ']')
		}
		return emitArrayRestyled(buf, orig, old, items)
	}

	// lock-step over the shared prefix, then append the growth
	buf = append(buf, '[')
	for i := 0; i < oldN; i++ {
		e := &old.elems[i]
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, orig[e.gapStart:e.val.start]...)
		buf = emitPreserved(buf, orig, e.val, items[i])
	}
	gap := arrayAppendGap(orig, old)
	for i := oldN; i < len(items); i++ {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, gap...)
		buf = appendCompact(buf, items[i])
	}
	buf = append(buf, orig[old.closeGapStart:old.end-1]...)
	return append(buf, ']')
}

// matchSubsequence greedily matches the new items against the old elements in
// order; success means the edit was deletions only and the survivors can be
// copied verbatim.
func matchSubsequence(old *spanNode, items []Value) ([]int, bool) {
	idxs := make([]int, 0, len(items))
	oi := 0
	for _, it := range items {
		for oi < len(old.elems) && !Equal(old.elems[oi].val.val, it) {
			oi++
		}
		if oi == len(old.elems) {
			return nil, false
		}
		idxs = append(idxs, oi)
		oi++
	}
	return idxs, true
}

// emitArrayRestyled re-renders the whole array region in the original's
// single-line or multi-line style. Used for rewrites byte surgery cannot
// express, e.g. moved elements.
func emitArrayRestyled(buf, orig []byte, old *spanNode, items []Value) []byte {
	if len(items) == 0 || len(old.elems) == 0 {
		buf = append(buf, '[')
		for i, it := range items {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = appendCompact(buf, it)
		}
		buf = append(buf, orig[old.closeGapStart:old.end-1]...)
		return append(buf, ']')
	}
	firstGap := string(orig[old.elems[0].gapStart:old.elems[0].val.start])
	sepGap := firstGap
	if len(old.elems) >= 2 {
		sepGap = string(orig[old.elems[1].gapStart:old.elems[1].val.start])
	}
	buf = append(buf, '[')
	for i, it := range items {
		g := firstGap
		if i > 0 {
			buf = append(buf, ',')
			g = sepGap
		}
		buf = append(buf, g...)
		buf = appendCompact(buf, it)
	}
	buf = append(buf, orig[old.closeGapStart:old.end-1]...)
	return append(buf, ']')
}

// arrayAppendGap infers the separator style for elements appended to an
// existing array.
func arrayAppendGap(orig []byte, old *spanNode) string {
	if len(old.elems) == 0 {
		return ""
	}
	last := &old.elems[len(old.elems)-1]
	g := orig[last.gapStart:last.val.start]
	switch {
	case bytes.ContainsRune(g, '\n'):
		return string(g[bytes.LastIndexByte(g, '\n'):])
	case len(old.elems) >= 2:
		return string(g)
	default:
		return " "
	}
}
