package field

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/goliatone/go-dynform/internal/values"
)

// DefaultLanguage selects the entry of a per-language markdown map when the
// field has no language option.
const DefaultLanguage = "en"

// markdownHandler converts markdown to HTML and sanitizes the result. The
// value may be a string or a map of language code to markdown.
type markdownHandler struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdownHandler() markdownHandler {
	return markdownHandler{md: goldmark.New(), policy: bluemonday.UGCPolicy()}
}

// RenderMarkdown converts source to sanitized HTML.
func RenderMarkdown(source string) (string, error) {
	return newMarkdownHandler().render(source)
}

func (h markdownHandler) render(source string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("field: markdown: %w", err)
	}
	return h.policy.Sanitize(buf.String()), nil
}

func (h markdownHandler) source(value any, opts Options) string {
	translations, ok := values.Map(value)
	if !ok {
		return values.Text(value)
	}
	for _, lang := range []string{opts.String("language"), DefaultLanguage} {
		if text, exists := translations[lang]; exists && lang != "" {
			return values.Text(text)
		}
	}
	keys := make([]string, 0, len(translations))
	for key := range translations {
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return values.Text(translations[keys[0]])
}

func (h markdownHandler) DisplayData(value any, opts Options) (Display, error) {
	source := h.source(value, opts)
	html, err := h.render(source)
	if err != nil {
		return Display{Type: TypeMarkdown, Text: source}, err
	}
	return Display{Type: TypeMarkdown, Text: source, HTML: html}, nil
}

func (h markdownHandler) FormBinding(value any, opts Options) Binding {
	return Binding{
		Control:     ControlTextarea,
		Value:       h.source(value, opts),
		Placeholder: opts.String("placeholder"),
		ReadOnly:    opts.Bool("readonly"),
	}
}
