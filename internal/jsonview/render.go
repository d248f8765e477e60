package jsonview

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sidebar-toolkit/internal/sanitize"
)

// RenderHTML renders v as a collapsible tree. Only the root starts open.
func RenderHTML(v Value) string {
	var b strings.Builder
	b.WriteString(`<div class="json-view json-code">`)
	renderValue(&b, v, 0, true)
	b.WriteString(`</div>`)
	return b.String()
}

const punct = `<span class="json-punct">%s</span>`

func renderValue(b *strings.Builder, v Value, depth int, root bool) {
	switch v.Kind {
	case Null:
		b.WriteString(`<span class="json-null">null</span>`)
	case Bool:
		fmt.Fprintf(b, `<span class="json-boolean">%t</span>`, v.Bool)
	case Number:
		fmt.Fprintf(b, `<span class="json-number">%s</span>`, sanitize.Escape(v.Text))
	case String:
		fmt.Fprintf(b, `<span class="json-string">"%s"</span>`, sanitize.Escape(v.Text))
	case Array:
		if len(v.Items) == 0 {
			fmt.Fprintf(b, punct+punct, "[", "]")
			return
		}
		openDetails(b, depth, root, "[", "]", fmt.Sprintf("%d items", len(v.Items)))
		for i, item := range v.Items {
			fmt.Fprintf(b, `<div class="json-line" style="--json-indent:%d;">`, depth+1)
			renderValue(b, item, depth+1, false)
			if i < len(v.Items)-1 {
				fmt.Fprintf(b, punct, ",")
			}
			b.WriteString(`</div>`)
		}
		closeDetails(b, depth, "]")
	case Object:
		if len(v.Members) == 0 {
			fmt.Fprintf(b, punct+punct, "{", "}")
			return
		}
		openDetails(b, depth, root, "{", "}", fmt.Sprintf("%d keys", len(v.Members)))
		for i, m := range v.Members {
			fmt.Fprintf(b, `<div class="json-line" style="--json-indent:%d;">`, depth+1)
			fmt.Fprintf(b, `<span class="json-key">"%s"</span>`, sanitize.Escape(m.Key))
			fmt.Fprintf(b, punct, ": ")
			renderValue(b, m.Value, depth+1, false)
			if i < len(v.Members)-1 {
				fmt.Fprintf(b, punct, ",")
			}
			b.WriteString(`</div>`)
		}
		closeDetails(b, depth, "}")
	}
}

func openDetails(b *strings.Builder, depth int, root bool, open, close, meta string) {
	b.WriteString(`<details class="json-details"`)
	if root {
		b.WriteString(` open`)
	}
	b.WriteString(`>`)
	fmt.Fprintf(b, `<summary class="json-summary" style="--json-indent:%d;">`, depth)
	fmt.Fprintf(b, punct+`<span class="json-fold">…</span>`+punct, open, close)
	fmt.Fprintf(b, `<span class="json-meta"> %s</span></summary>`, meta)
	b.WriteString(`<div class="json-children">`)
	fmt.Fprintf(b, `<div class="json-line" style="--json-indent:%d;">`+punct+`</div>`, depth, open)
}

func closeDetails(b *strings.Builder, depth int, close string) {
	fmt.Fprintf(b, `<div class="json-line" style="--json-indent:%d;">`+punct+`</div>`, depth, close)
	b.WriteString(`</div></details>`)
}

// Highlight renders v as pretty-printed JSON with token classes
// j-key, j-str, j-num, j-bool and j-null.
func Highlight(v Value) string {
	var b strings.Builder
	highlight(&b, v, 0)
	return b.String()
}

func highlight(b *strings.Builder, v Value, depth int) {
	indent := func(d int) {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", d))
	}

	switch v.Kind {
	case Null:
		b.WriteString(`<span class="j-null">null</span>`)
	case Bool:
		fmt.Fprintf(b, `<span class="j-bool">%t</span>`, v.Bool)
	case Number:
		fmt.Fprintf(b, `<span class="j-num">%s</span>`, sanitize.Escape(v.Text))
	case String:
		fmt.Fprintf(b, `<span class="j-str">%s</span>`, sanitize.Escape(quote(v.Text)))
	case Array:
		if len(v.Items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			indent(depth + 1)
			highlight(b, item, depth+1)
		}
		indent(depth)
		b.WriteByte(']')
	case Object:
		if len(v.Members) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				b.WriteByte(',')
			}
			indent(depth + 1)
			fmt.Fprintf(b, `<span class="j-key">%s:</span> `, sanitize.Escape(quote(m.Key)))
			highlight(b, m.Value, depth+1)
		}
		indent(depth)
		b.WriteByte('}')
	}
}

// MarkError returns the escaped source of e with the offending character
// wrapped in a json-error-mark span. A newline shows as ↵ and the end of
// input as a non-breaking space.
func MarkError(e *ParseError) string {
	if e.Offset < 0 || e.Offset > len(e.Source) {
		return sanitize.Escape(e.Source)
	}

	before := e.Source[:e.Offset]
	rest := e.Source[e.Offset:]
	r, size := utf8.DecodeRuneInString(rest)

	var char string
	switch {
	case size == 0:
		char = "&nbsp;"
	case r == '\n':
		char = "↵\n"
	default:
		char = sanitize.Escape(rest[:size])
	}

	return sanitize.Escape(before) +
		`<span class="json-error-mark" title="` + sanitize.Escape(e.Msg) + `">` + char + `</span>` +
		sanitize.Escape(rest[size:])
}
