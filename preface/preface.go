// Package preface renders the optional Markdown introduction placed above the
// alphabetic index of a data dictionary.
package preface

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// ErrPrefaceReadFailed indicates the preface file could not be read.
var ErrPrefaceReadFailed = errors.New("failed to read preface")

// HeadingIDPrefix is prepended to generated heading ids so they never collide
// with table anchors, which use the bare table name.
const HeadingIDPrefix = "preface-"

// Render converts markdown to an HTML fragment wrapped in a preface section.
// Raw HTML inside the Markdown is omitted. Blank input renders nothing.
func Render(markdown []byte) (string, error) {
	if len(bytes.TrimSpace(markdown)) == 0 {
		return "", nil
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))

	var buf bytes.Buffer
	if err := md.Convert(markdown, &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("failed to render preface: %w", err)
	}

	var b strings.Builder

	b.WriteString("<section class='preface'>\n")
	b.Write(buf.Bytes())
	b.WriteString("</section>\n")

	return b.String(), nil
}

// RenderFile reads and renders the Markdown file at path.
func RenderFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPrefaceReadFailed, err)
	}

	return Render(data)
}

// headingIDs implements parser.IDs with prefixed, de-duplicated slugs.
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: map[string]bool{}}
}

func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := HeadingIDPrefix + slug(string(value))
	if base == HeadingIDPrefix {
		base += "heading"
	}

	id := base
	for i := 1; h.used[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}

	h.used[id] = true

	return []byte(id)
}

func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = true
}

func slug(text string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}

	return b.String()
}
