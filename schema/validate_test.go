package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confkit/jsondoc"
	"github.com/confkit/jsondoc/schema"
)

func parseObject(t *testing.T, src string) *jsondoc.Object {
	t.Helper()
	v, err := jsondoc.ParseValue([]byte(src))
	require.NoError(t, err)
	obj, ok := v.(*jsondoc.Object)
	require.True(t, ok)
	return obj
}

func mustSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(src))
	require.NoError(t, err)
	return s
}

func codesByPath(iss jsondoc.Issues) map[string][]string {
	out := map[string][]string{}
	for _, it := range iss {
		out[it.Path] = append(out[it.Path], it.Code)
	}
	return out
}

func TestValidate_CleanDocument(t *testing.T) {
	s := mustSchema(t, appSchema)
	doc := parseObject(t, `{
	  "name": "svc",
	  "port": 8080,
	  "mode": "prod",
	  "tags": ["alpha", "beta"],
	  "limits": {"cpu": 0.5, "mem": 512}
	}`)
	iss := schema.Validate(doc, s)
	require.Empty(t, iss)
	require.True(t, iss.Valid())
}

func TestValidate_CollectsEveryFindingInOnePass(t *testing.T) {
	s := mustSchema(t, appSchema)
	doc := parseObject(t, `{
	  "name": "",
	  "mode": "staging",
	  "tags": ["ok", "NOPE"],
	  "limits": {"mem": 4}
	}`)
	iss := schema.Validate(doc, s)
	require.False(t, iss.Valid())

	got := codesByPath(iss)
	require.Equal(t, []string{jsondoc.CodeRequiredFieldMissing}, got[""], "port missing reports at the root")
	require.Equal(t, []string{jsondoc.CodeMinLengthViolation}, got["name"])
	require.Equal(t, []string{jsondoc.CodeEnumViolation}, got["mode"])
	require.Equal(t, []string{jsondoc.CodePatternMismatch}, got["tags.1"])
	require.Equal(t, []string{jsondoc.CodeRequiredFieldMissing}, got["limits"])
	require.Len(t, iss, 5, "all findings surface in a single pass")
}

func TestValidate_RequiredFieldParams(t *testing.T) {
	s := mustSchema(t, `{"type": "object", "required": ["notes"]}`)
	iss := schema.Validate(parseObject(t, `{}`), s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodeRequiredFieldMissing, iss[0].Code)
	require.Equal(t, "", iss[0].Path)
	require.Equal(t, jsondoc.Error, iss[0].Severity)
	require.Equal(t, "notes", iss[0].Params["field"])
}

func TestValidate_TypeMismatchStopsAtNode(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"port": {"type": "int", "minimum": 1}}
	}`)
	iss := schema.Validate(parseObject(t, `{"port": "8080"}`), s)
	require.Len(t, iss, 1, "facets of the declared type are not checked after a mismatch")
	require.Equal(t, jsondoc.CodeTypeMismatch, iss[0].Code)
	require.Equal(t, "port", iss[0].Path)
}

func TestValidate_IntSatisfiesFloat(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"ratio": {"type": "float", "minimum": 0.5}}
	}`)
	require.Empty(t, schema.Validate(parseObject(t, `{"ratio": 2}`), s))

	iss := schema.Validate(parseObject(t, `{"ratio": 0}`), s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodeMinimumViolation, iss[0].Code)
}

func TestValidate_NumberBounds(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"port": {"type": "int", "minimum": 1, "maximum": 65535}}
	}`)
	iss := schema.Validate(parseObject(t, `{"port": 70000}`), s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodeMaximumViolation, iss[0].Code)
	require.Equal(t, 65535.0, iss[0].Params["max"])
}

func TestValidate_StringLengthCountsRunes(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"label": {"type": "string", "minLength": 3, "maxLength": 5}}
	}`)
	// five runes, more than five bytes
	require.Empty(t, schema.Validate(parseObject(t, `{"label": "héllö"}`), s))

	iss := schema.Validate(parseObject(t, `{"label": "ab"}`), s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodeMinLengthViolation, iss[0].Code)
	require.Equal(t, 2, iss[0].Params["got"])
}

func TestValidate_PatternIsUnanchored(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"id": {"type": "string", "pattern": "[0-9]+"}}
	}`)
	require.Empty(t, schema.Validate(parseObject(t, `{"id": "rev-42"}`), s))

	iss := schema.Validate(parseObject(t, `{"id": "rev"}`), s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodePatternMismatch, iss[0].Code)
}

func TestValidate_UnusablePatternWarns(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"id": {"type": "string", "pattern": "("}}
	}`)
	iss := schema.Validate(parseObject(t, `{"id": "x"}`), s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodeOther, iss[0].Code)
	require.Equal(t, jsondoc.Warn, iss[0].Severity)
	require.True(t, iss.Valid(), "a broken pattern never blocks the document")
}

func TestValidate_FormatFindingsAreWarnings(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {
	    "home":  {"type": "string", "format": "url"},
	    "when":  {"type": "string", "format": "date"},
	    "stamp": {"type": "string", "format": "date-time"},
	    "owner": {"type": "string", "format": "email"},
	    "misc":  {"type": "string", "format": "hostname"}
	  }
	}`)
	require.Empty(t, schema.Validate(parseObject(t, `{
	  "home": "https://example.com/x",
	  "when": "2026-08-30",
	  "stamp": "2026-08-30T12:00:00Z",
	  "owner": "dev@example.com",
	  "misc": "anything goes for unknown formats"
	}`), s))

	iss := schema.Validate(parseObject(t, `{
	  "home": "not a url",
	  "when": "30/08/2026",
	  "stamp": "yesterday",
	  "owner": "nope"
	}`), s)
	require.Len(t, iss, 4)
	for _, it := range iss {
		require.Equal(t, jsondoc.CodeInvalidFormat, it.Code)
		require.Equal(t, jsondoc.Warn, it.Severity)
	}
	require.True(t, iss.Valid())
}

func TestValidate_DeprecatedMemberWarns(t *testing.T) {
	s := mustSchema(t, appSchema)
	doc := parseObject(t, `{"name": "svc", "port": 1, "debug": true}`)
	iss := schema.Validate(doc, s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodeDeprecated, iss[0].Code)
	require.Equal(t, "debug", iss[0].Path)
	require.Equal(t, jsondoc.Warn, iss[0].Severity)
	require.True(t, iss.Valid())
}

func TestValidate_AdditionalProperties(t *testing.T) {
	t.Run("absent facet is permissive", func(t *testing.T) {
		s := mustSchema(t, `{"type": "object", "properties": {"a": {"type": "int"}}}`)
		require.Empty(t, schema.Validate(parseObject(t, `{"a": 1, "extra": true}`), s))
	})

	t.Run("false warns per extra key", func(t *testing.T) {
		s := mustSchema(t, `{
		  "type": "object",
		  "properties": {"a": {"type": "int"}},
		  "additionalProperties": false
		}`)
		iss := schema.Validate(parseObject(t, `{"a": 1, "extra": true, "more": 2}`), s)
		require.Len(t, iss, 2)
		for _, it := range iss {
			require.Equal(t, jsondoc.CodeAdditionalProperty, it.Code)
			require.Equal(t, jsondoc.Warn, it.Severity)
		}
	})

	t.Run("sub-schema validates extra keys", func(t *testing.T) {
		s := mustSchema(t, `{
		  "type": "object",
		  "additionalProperties": {"type": "string"}
		}`)
		require.Empty(t, schema.Validate(parseObject(t, `{"x": "ok"}`), s))
		iss := schema.Validate(parseObject(t, `{"x": 1}`), s)
		require.Len(t, iss, 1)
		require.Equal(t, jsondoc.CodeTypeMismatch, iss[0].Code)
		require.Equal(t, "x", iss[0].Path)
	})
}

func TestValidate_ArrayItemsByIndex(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"xs": {"type": "array", "items": {"type": "int"}}}
	}`)
	iss := schema.Validate(parseObject(t, `{"xs": [1, "two", 3, "four"]}`), s)
	require.Len(t, iss, 2)
	require.Equal(t, "xs.1", iss[0].Path)
	require.Equal(t, "xs.3", iss[1].Path)
}

func TestValidate_EnumUsesStructuralEquality(t *testing.T) {
	s := mustSchema(t, `{
	  "type": "object",
	  "properties": {"v": {"enum": [1, "1"]}}
	}`)
	require.Empty(t, schema.Validate(parseObject(t, `{"v": 1}`), s))
	require.Empty(t, schema.Validate(parseObject(t, `{"v": "1"}`), s))

	// 1.0 parses as a float and floats never equal ints
	iss := schema.Validate(parseObject(t, `{"v": 1.0}`), s)
	require.Len(t, iss, 1)
	require.Equal(t, jsondoc.CodeEnumViolation, iss[0].Code)
}

func TestValidate_NilInputs(t *testing.T) {
	require.Empty(t, schema.Validate(nil, mustSchema(t, `{"type": "object"}`)))
	require.Empty(t, schema.Validate(parseObject(t, `{}`), nil))
}
