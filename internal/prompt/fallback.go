package prompt

import (
	"strings"

	"taletable/internal/models"
)

// DefaultTag names the block used when a category has no block of its own.
const DefaultTag = "default"

// templateDoc is a template document split into its tagged blocks.
// A line of the form [[tag]] opens a block; text before the first tag is untagged.
type templateDoc struct {
	untagged string
	blocks   map[string]string
}

func parseTemplateDoc(doc string) templateDoc {
	parsed := templateDoc{blocks: make(map[string]string)}
	current := ""
	inBlock := false
	var sb strings.Builder

	flush := func() {
		body := strings.Trim(sb.String(), "\n")
		if inBlock {
			if _, seen := parsed.blocks[current]; !seen {
				parsed.blocks[current] = body
			}
		} else {
			parsed.untagged = body
		}
		sb.Reset()
	}

	for _, line := range strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 4 && strings.HasPrefix(trimmed, "[[") && strings.HasSuffix(trimmed, "]]") {
			flush()
			current = strings.TrimSpace(trimmed[2 : len(trimmed)-2])
			inBlock = true
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	flush()
	return parsed
}

// SelectTemplate picks the template for category out of a tagged document:
// the exact [[category]] block, then the [[default]] block, then the untagged
// leading content, then the empty string.
func SelectTemplate(doc, category string) string {
	parsed := parseTemplateDoc(doc)
	if category != "" {
		if body, ok := parsed.blocks[category]; ok {
			return body
		}
	}
	if body, ok := parsed.blocks[DefaultTag]; ok {
		return body
	}
	if strings.TrimSpace(parsed.untagged) != "" {
		return parsed.untagged
	}
	return ""
}

// RenderSnippets renders every snippet through its category template and joins
// the non-empty results into one transient context block.
func RenderSnippets(doc string, snippets []models.ContextSnippet) string {
	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		tmpl := SelectTemplate(doc, s.Category)
		out := Render(tmpl, map[string]string{
			"label":    s.Label,
			"text":     s.Text,
			"category": s.Category,
		})
		if strings.TrimSpace(out) == "" {
			continue
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n\n")
}
