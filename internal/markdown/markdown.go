// Package markdown renders the previewer's mixed Markdown and JSON input.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"sidebar-toolkit/internal/jsonview"
	"sidebar-toolkit/internal/sanitize"
)

// Block titles.
const (
	TitleCodeBlock = "Code Block (JSON)"
	TitleToolCall  = "Tool Call (JSON)"
)

// Renderer converts Markdown to HTML. ```json fences and <tool_call> blocks
// are lifted out and shown as checked JSON.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GFM, hard line breaks and highlighted code fences.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
	}
}

var blockPattern = regexp.MustCompile("(?is)<tool_call>(.*?)</tool_call>|```json(.*?)```")

// Render converts the previewer's input to HTML.
func (r *Renderer) Render(text string) (string, error) {
	if text == "" {
		return "", nil
	}

	var out strings.Builder
	last := 0
	for _, m := range blockPattern.FindAllStringSubmatchIndex(text, -1) {
		if err := r.writeMarkdown(&out, text[last:m[0]]); err != nil {
			return "", err
		}

		if m[2] >= 0 {
			out.WriteString(JSONBlock(strings.TrimSpace(text[m[2]:m[3]]), TitleToolCall))
		} else {
			out.WriteString(JSONBlock(strings.TrimSpace(text[m[4]:m[5]]), TitleCodeBlock))
		}
		last = m[1]
	}
	if err := r.writeMarkdown(&out, text[last:]); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Markdown converts text without lifting out JSON blocks.
func (r *Renderer) Markdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) writeMarkdown(out *strings.Builder, part string) error {
	if part == "" {
		return nil
	}
	if strings.TrimSpace(part) == "" {
		out.WriteString(part)
		return nil
	}
	rendered, err := r.Markdown(part)
	if err != nil {
		return err
	}
	out.WriteString(rendered)
	return nil
}

// JSONBlock renders src as a checked JSON block. Valid JSON is highlighted;
// otherwise the offending character is marked and the parser message shown.
func JSONBlock(src, title string) string {
	if src == "" {
		return ""
	}

	v, err := jsonview.ParseStrict(src)
	if err == nil {
		return `<div class="mixed-json-block">` +
			`<div class="mixed-json-header">✅ ` + sanitize.Escape(title) + ` - valid</div>` +
			`<div class="mixed-json-content">` + jsonview.Highlight(v) + `</div>` +
			`</div>`
	}

	perr, ok := err.(*jsonview.ParseError)
	if !ok {
		perr = &jsonview.ParseError{Msg: err.Error(), Source: src, Offset: -1}
	}
	return `<div class="mixed-json-block mixed-json-error">` +
		`<div class="mixed-json-header">⚠️ ` + sanitize.Escape(title) + ` - invalid</div>` +
		`<div class="mixed-json-content">` + jsonview.MarkError(perr) + `</div>` +
		`<div class="json-error-info">Error: ` + sanitize.Escape(perr.Error()) + `</div>` +
		`</div>`
}
