package jsondoc_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/confkit/jsondoc"
)

func applyAndSerialize(t *testing.T, src string, ops ...jsondoc.Operation) string {
	t.Helper()
	doc := mustParseDoc(t, src)
	var err error
	for _, op := range ops {
		doc, err = doc.Apply(op)
		if err != nil {
			t.Fatalf("apply %v: %v", op.TargetPath(), err)
		}
	}
	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return string(out)
}

func TestSerialize_UnchangedDocumentIsByteIdentical(t *testing.T) {
	src := "{\n  \"b\":   1,\n  \"a\": { \"x\": [1, 2,  3], \"y\": \"s\\n\" },\n  \"arr\": [ {\"k\": \"v\"} , 4 ]\n}\n"
	got := applyAndSerialize(t, src)
	if got != src {
		t.Fatalf("round trip changed bytes:\n%q\nwant:\n%q", got, src)
	}
}

func TestSerialize_ScalarEditTouchesOnlyItsSpan(t *testing.T) {
	src := "{\n  \"name\":   \"app\",\n  \"port\": 8080\n}\n"
	got := applyAndSerialize(t, src,
		jsondoc.SetValue{At: jsondoc.Path{"port"}, Value: jsondoc.Int(9090)})
	want := "{\n  \"name\":   \"app\",\n  \"port\": 9090\n}\n"
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerialize_NewKeyFollowsSiblingStyle(t *testing.T) {
	src := "{\n  \"one\": 1,\n  \"two\": 2\n}"
	got := applyAndSerialize(t, src,
		jsondoc.SetValue{At: jsondoc.Path{"three"}, Value: jsondoc.Int(3)})
	want := "{\n  \"one\": 1,\n  \"two\": 2,\n  \"three\": 3\n}"
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerialize_NewKeySingleLine(t *testing.T) {
	got := applyAndSerialize(t, `{"a": 1}`,
		jsondoc.SetValue{At: jsondoc.Path{"b"}, Value: jsondoc.Int(2)})
	if got != `{"a": 1, "b": 2}` {
		t.Fatalf("got %q", got)
	}
}

func TestSerialize_NewNestedObjectRendersCompact(t *testing.T) {
	got := applyAndSerialize(t, `{"a": 1}`,
		jsondoc.SetValue{At: jsondoc.Path{"meta"}, Value: mustValue(t, `{"x":1,"y":[true,null]}`)})
	if got != `{"a": 1, "meta": {"x": 1, "y": [true, null]}}` {
		t.Fatalf("got %q", got)
	}
}

func TestSerialize_DeletedMemberSplicesCleanly(t *testing.T) {
	src := "{\n  \"a\": 1,\n  \"b\": 2,\n  \"c\": 3\n}\n"
	got := applyAndSerialize(t, src,
		jsondoc.DeleteField{At: jsondoc.Path{"b"}})
	want := "{\n  \"a\": 1,\n  \"c\": 3\n}\n"
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerialize_ArrayDeletionKeepsSurvivorFormatting(t *testing.T) {
	src := "{\n  \"tags\": [\n    \"alpha\",\n    \"beta\",\n    \"gamma\"\n  ]\n}\n"
	got := applyAndSerialize(t, src,
		jsondoc.DeleteArrayElement{At: jsondoc.Path{"tags", "1"}})
	want := "{\n  \"tags\": [\n    \"alpha\",\n    \"gamma\"\n  ]\n}\n"
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerialize_ArrayAppendSingleLine(t *testing.T) {
	got := applyAndSerialize(t, `{"arr": [1, 2]}`,
		jsondoc.InsertArrayElement{At: jsondoc.Path{"arr"}, Value: jsondoc.Int(3)})
	if got != `{"arr": [1, 2, 3]}` {
		t.Fatalf("got %q", got)
	}
}

func TestSerialize_ArrayAppendMultiLine(t *testing.T) {
	src := "{\n  \"xs\": [\n    1,\n    2\n  ]\n}"
	got := applyAndSerialize(t, src,
		jsondoc.InsertArrayElement{At: jsondoc.Path{"xs"}, Value: jsondoc.Int(3)})
	want := "{\n  \"xs\": [\n    1,\n    2,\n    3\n  ]\n}"
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerialize_ArrayMoveRestyledInPlace(t *testing.T) {
	got := applyAndSerialize(t, `{"a": [1, 2, 3, 4]}`,
		jsondoc.MoveArrayElement{At: jsondoc.Path{"a"}, From: 0, To: 2})
	if got != `{"a": [2, 3, 1, 4]}` {
		t.Fatalf("got %q", got)
	}
}

func TestSerialize_ArrayInsertInMiddle(t *testing.T) {
	got := applyAndSerialize(t, `{"a": [1, 3]}`,
		jsondoc.InsertArrayElement{At: jsondoc.Path{"a"}, Value: jsondoc.Int(2), Index: intPtr(1)})
	if got != `{"a": [1, 2, 3]}` {
		t.Fatalf("got %q", got)
	}
}

func TestSerialize_ReorderedContentFallsBackAndReparses(t *testing.T) {
	doc := mustParseDoc(t, `{"b": 1, "a": 2}`)
	doc = doc.WithUpdatedContent(mustObject(t, `{"a":2,"b":1}`))
	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if string(out) != `{"a": 2, "b": 1}` {
		t.Fatalf("got %q", out)
	}
	if !jsondoc.Equal(mustObject(t, string(out)), doc.Content()) {
		t.Fatalf("output does not re-parse to the document content")
	}
}

func TestSerialize_DuplicateKeysCollapseToLastValue(t *testing.T) {
	doc := mustParseDoc(t, `{"a":1,"a":2}`)
	if v, _ := doc.Content().Get("a"); !jsondoc.Equal(v, jsondoc.Int(2)) {
		t.Fatalf("last duplicate must win, got %v", v)
	}
	got := applyAndSerialize(t, `{"a":1,"a":2}`,
		jsondoc.SetValue{At: jsondoc.Path{"a"}, Value: jsondoc.Int(3)})
	if got != `{"a":3}` {
		t.Fatalf("got %q", got)
	}
}

func TestSerialize_StringRenderingKeepsUnicodeAndHTML(t *testing.T) {
	got := applyAndSerialize(t, `{"s": "x"}`,
		jsondoc.SetValue{At: jsondoc.Path{"s"}, Value: jsondoc.String("héllo <b>\n")})
	want := `{"s": "héllo <b>\n"}`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerialize_NumberRendering(t *testing.T) {
	got := applyAndSerialize(t, `{"i": 0, "f": 0}`,
		jsondoc.SetValue{At: jsondoc.Path{"i"}, Value: jsondoc.Int(3)},
		jsondoc.SetValue{At: jsondoc.Path{"f"}, Value: jsondoc.Float(1.5)})
	if got != `{"i": 3, "f": 1.5}` {
		t.Fatalf("got %q", got)
	}
}

// A float with no fractional part must still read back as a float.
func TestSerialize_IntegralFloatKeepsItsKind(t *testing.T) {
	got := applyAndSerialize(t, `{"f": 1.5, "g": 0}`,
		jsondoc.SetValue{At: jsondoc.Path{"f"}, Value: jsondoc.Float(2)},
		jsondoc.SetValue{At: jsondoc.Path{"g"}, Value: jsondoc.Float(-3)})
	if got != `{"f": 2.0, "g": -3.0}` {
		t.Fatalf("got %q", got)
	}

	back := mustObject(t, got)
	f, _ := back.Get("f")
	if f.Kind() != jsondoc.KindFloat {
		t.Fatalf("f re-parsed as %v", f.Kind())
	}
	if !jsondoc.Equal(back, mustObject(t, `{"f": 2.0, "g": -3.0}`)) {
		t.Fatalf("round trip altered the tree")
	}

	// canonical rendering takes the same path
	out, err := jsondoc.NewDocument(mustObject(t, `{"x": 4.0}`)).Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if string(out) != "{\n  \"x\": 4.0\n}\n" {
		t.Fatalf("canonical output %q", out)
	}
}

func TestSerialize_CanonicalOutputIsDeterministic(t *testing.T) {
	doc := jsondoc.NewDocument(mustObject(t, `{"b":{"y":2,"x":[1,2]},"a":true}`))
	want := "{\n  \"a\": true,\n  \"b\": {\n    \"x\": [\n      1,\n      2\n    ],\n    \"y\": 2\n  }\n}\n"
	for i := 0; i < 3; i++ {
		out, err := doc.Serialize()
		if err != nil {
			t.Fatalf("serialize: %v", err)
		}
		if string(out) != want {
			t.Fatalf("got:\n%q\nwant:\n%q", out, want)
		}
	}
}

func TestSerialize_EmptyObjectCanonical(t *testing.T) {
	out, err := jsondoc.NewDocument(jsondoc.NewObject()).Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if string(out) != "{}\n" {
		t.Fatalf("got %q", out)
	}
}

// A single leaf edit in a large pretty-printed document must produce a diff
// touching only the edited line.
func TestSerialize_LeafEditDiffIsMinimal(t *testing.T) {
	root := jsondoc.NewObject()
	for s := 0; s < 40; s++ {
		sec := jsondoc.NewObject()
		for k := 0; k < 5; k++ {
			sec.Set(fmt.Sprintf("k%d", k), jsondoc.Int(int64(k)))
		}
		root.Set(fmt.Sprintf("s%02d", s), sec)
	}
	base, err := jsondoc.NewDocument(root).Serialize()
	if err != nil {
		t.Fatalf("serialize base: %v", err)
	}

	doc := mustParseDoc(t, string(base))
	doc, err = doc.Apply(jsondoc.SetValue{At: jsondoc.Path{"s17", "k3"}, Value: jsondoc.Int(999)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("serialize edited: %v", err)
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A: difflib.SplitLines(string(base)),
		B: difflib.SplitLines(string(out)),
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	changed := 0
	for _, ln := range strings.Split(diff, "\n") {
		if strings.HasPrefix(ln, "+++") || strings.HasPrefix(ln, "---") {
			continue
		}
		if strings.HasPrefix(ln, "+") || strings.HasPrefix(ln, "-") {
			changed++
		}
	}
	if changed != 2 {
		t.Fatalf("expected a two-line diff, got %d changed lines:\n%s", changed, diff)
	}
	if !strings.Contains(diff, `+    "k3": 999,`) {
		t.Fatalf("diff does not show the edited line:\n%s", diff)
	}
}
