// Package prompt renders user-editable prompt templates.
//
// Placeholders use single braces ({label}). Rendering never fails: unknown
// placeholders and unbalanced braces are emitted verbatim so a typo in a
// user template degrades the output instead of breaking the request.
package prompt

import (
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{"
	endTag   = "}"
)

// Render substitutes {name} placeholders in tmpl with values from bindings.
func Render(tmpl string, bindings map[string]string) string {
	if tmpl == "" || !strings.Contains(tmpl, startTag) {
		return tmpl
	}

	head, tail := tmpl, ""
	lastClose := strings.LastIndex(tmpl, endTag)
	if strings.Contains(tmpl[lastClose+1:], startTag) {
		head, tail = tmpl[:lastClose+1], tmpl[lastClose+1:]
	}

	t, err := fasttemplate.NewTemplate(head, startTag, endTag)
	if err != nil {
		return tmpl
	}
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := bindings[strings.TrimSpace(tag)]; ok {
			return io.WriteString(w, v)
		}
		return io.WriteString(w, startTag+tag+endTag)
	}) + tail
}

// FormatForDisplay turns stored literal newline escapes into real line breaks.
// Stored text is never rewritten; this is applied on the way to the screen.
func FormatForDisplay(text string) string {
	text = strings.ReplaceAll(text, `\\n`, "\n")
	return strings.ReplaceAll(text, `\n`, "\n")
}
