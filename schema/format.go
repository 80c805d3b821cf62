package schema

import (
	"net/mail"
	"net/url"
	"regexp"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// patternCache keeps compiled pattern regexps for reuse across validation
// runs; schema repositories repeat the same handful of patterns over many
// documents.
var patternCache = xsync.NewMapOf[string, *regexp.Regexp]()

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// checkFormat reports (valid, recognized) for the format subset the editor
// understands. Unrecognized names are ignored rather than failed, since
// schema authors borrow freely from the wider JSON Schema format registry.
func checkFormat(format, s string) (ok, known bool) {
	switch format {
	case "date":
		_, err := time.Parse("2006-01-02", s)
		return err == nil, true
	case "date-time":
		_, err := time.Parse(time.RFC3339, s)
		return err == nil, true
	case "url", "uri":
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != "", true
	case "email":
		_, err := mail.ParseAddress(s)
		return err == nil, true
	}
	return true, false
}
