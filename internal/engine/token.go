package engine

// Kind represents token kinds from the JSON token source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with its byte span in the input.
// Start/End delimit the token text itself: for strings and keys the span
// includes the surrounding quotes, for containers the opening or closing
// bracket only.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Start  int64
	End    int64
}

// TokenSource is the minimal interface the value and span builders require.
type TokenSource interface {
	NextToken() (Token, error)
}
