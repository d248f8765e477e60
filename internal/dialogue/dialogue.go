// Package dialogue renders an exported conversation as chat bubbles.
package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sidebar-toolkit/internal/sanitize"
)

var (
	ErrEmpty       = errors.New("paste the JSON data first")
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrNotArray    = errors.New("JSON data must be an array")
)

// RolePrompt marks a turn written by the user. Every other role is shown as
// the assistant.
const RolePrompt = "prompt"

// Turn is one entry of the conversation.
type Turn struct {
	Role     string `json:"role"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

// User reports whether the turn belongs to the user.
func (t Turn) User() bool {
	return t.Role == RolePrompt
}

// TextRenderer turns Markdown into HTML.
type TextRenderer interface {
	Markdown(text string) (string, error)
}

// Result is a rendered conversation.
type Result struct {
	HTML  string `json:"html"`
	Count int    `json:"count"`
}

// Renderer renders conversations.
type Renderer struct {
	text TextRenderer
}

// New creates a Renderer that formats turn text with tr.
func New(tr TextRenderer) *Renderer {
	return &Renderer{text: tr}
}

// Parse decodes the pasted conversation. Entries that are not objects, and
// fields that are not strings, are treated as empty.
func Parse(input string) ([]Turn, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmpty
	}

	var data any
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	items, ok := data.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	turns := make([]Turn, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		turns = append(turns, Turn{
			Role:     str(obj["role"]),
			Text:     str(obj["text"]),
			ImageURL: str(obj["image_url"]),
		})
	}
	return turns, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// Render parses input and renders every turn.
func (r *Renderer) Render(input string) (Result, error) {
	turns, err := Parse(input)
	if err != nil {
		return Result{}, err
	}

	var b strings.Builder
	for _, t := range turns {
		r.writeTurn(&b, t)
	}
	return Result{HTML: b.String(), Count: len(turns)}, nil
}

func (r *Renderer) writeTurn(b *strings.Builder, t Turn) {
	class, label := "assistant", "Assistant"
	if t.User() {
		class, label = "user", "User"
	}

	fmt.Fprintf(b, `<div class="message %s"><div class="bubble">`, class)
	fmt.Fprintf(b, `<div class="role-label">%s</div>`, label)

	if t.Text != "" {
		b.WriteString(`<div class="message-text">`)
		b.WriteString(r.renderText(t.Text))
		b.WriteString(`</div>`)
	}
	if t.ImageURL != "" && sanitize.IsImageSource(strings.TrimSpace(t.ImageURL)) {
		fmt.Fprintf(b, `<div class="image-container"><img src="%s" alt="image"></div>`,
			sanitize.Escape(strings.TrimSpace(t.ImageURL)))
	}

	b.WriteString(`</div></div>`)
}

func (r *Renderer) renderText(text string) string {
	if r.text != nil {
		if out, err := r.text.Markdown(text); err == nil {
			return out
		}
	}
	return strings.ReplaceAll(sanitize.Escape(text), "\n", "<br>")
}
