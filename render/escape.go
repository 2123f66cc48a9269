package render

import "strings"

// escaper replaces the five markup-significant characters. strings.Replacer
// scans left to right once, so entities it emits are never re-escaped.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape returns text as an HTML-safe sequence. It is not idempotent:
// escaping "&amp;" yields "&amp;amp;", so raw text must be escaped exactly once.
func Escape(text string) string {
	return escaper.Replace(text)
}
