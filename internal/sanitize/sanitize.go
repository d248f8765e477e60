package sanitize

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Check validates an attribute value. Values that fail are removed.
type Check func(value string) bool

// Policy is an allow-list of elements and attributes.
type Policy struct {
	// Tags lists allowed element names. Other elements are unwrapped: the
	// element goes away but its children are kept and sanitized in turn.
	Tags map[string]bool
	// Attrs lists attribute names allowed on any allowed element.
	Attrs map[string]bool
	// Checks validate attribute values per tag and attribute name.
	Checks map[string]map[string]Check
	// Required names, per tag, the attribute whose absence or rejection
	// removes the whole element.
	Required map[string]string
	// Force sets attributes on every element of a tag, overriding input.
	Force map[string][]html.Attribute
	// Defaults fill in attributes that are missing or empty.
	Defaults map[string][]html.Attribute
}

// Elements whose content is dropped together with the element.
var dropContent = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"noscript": true,
	"template": true,
	"textarea": true,
	"title":    true,
}

// HTML returns raw with everything outside the policy removed.
func HTML(raw string, p Policy) string {
	if raw == "" {
		return ""
	}

	container := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(raw), &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	})
	if err != nil {
		return Escape(raw)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	p.walk(container)

	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

func (p Policy) walk(parent *html.Node) {
	c := parent.FirstChild
	for c != nil {
		next := c.NextSibling

		switch c.Type {
		case html.TextNode:
			// kept as is; the renderer escapes it

		case html.ElementNode:
			tag := strings.ToLower(c.Data)
			switch {
			case dropContent[tag]:
				parent.RemoveChild(c)

			case !p.Tags[tag]:
				first := c.FirstChild
				unwrap(parent, c)
				if first != nil {
					next = first
				}

			default:
				if !p.cleanAttrs(tag, c) {
					parent.RemoveChild(c)
					break
				}
				p.walk(c)
			}

		default:
			// comments, doctypes and anything else
			parent.RemoveChild(c)
		}

		c = next
	}
}

// unwrap replaces n with its children.
func unwrap(parent, n *html.Node) {
	for ch := n.FirstChild; ch != nil; {
		following := ch.NextSibling
		n.RemoveChild(ch)
		parent.InsertBefore(ch, n)
		ch = following
	}
	parent.RemoveChild(n)
}

// cleanAttrs filters the attributes of n. It returns false when n must be removed.
func (p Policy) cleanAttrs(tag string, n *html.Node) bool {
	checks := p.Checks[tag]
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || !p.Attrs[a.Key] {
			continue
		}
		if check, ok := checks[a.Key]; ok && !check(strings.TrimSpace(a.Val)) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept

	if req, ok := p.Required[tag]; ok && attr(n, req) == "" {
		return false
	}
	for _, a := range p.Defaults[tag] {
		if attr(n, a.Key) == "" {
			setAttr(n, a.Key, a.Val)
		}
	}
	for _, a := range p.Force[tag] {
		setAttr(n, a.Key, a.Val)
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

var (
	httpURL   = regexp.MustCompile(`(?i)^https?://`)
	dataImage = regexp.MustCompile(`(?i)^data:image/`)
	hexColor  = regexp.MustCompile(`(?i)^#([0-9a-f]{3}|[0-9a-f]{6})$`)
	rgbColor  = regexp.MustCompile(`(?i)^rgba?\(`)
)

// IsHTTPURL reports whether v is an absolute http or https URL.
func IsHTTPURL(v string) bool {
	return httpURL.MatchString(v)
}

// IsImageSource reports whether v is usable as an image source.
func IsImageSource(v string) bool {
	return httpURL.MatchString(v) || dataImage.MatchString(v)
}

// IsColor reports whether v is a hex or rgb()/rgba() color.
func IsColor(v string) bool {
	return hexColor.MatchString(v) || rgbColor.MatchString(v)
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// NoticePolicy is the allow-list applied to announcement bodies.
var NoticePolicy = Policy{
	Tags: set("a", "br", "p", "div", "span", "strong", "b", "em", "i",
		"ul", "ol", "li", "img", "code", "pre", "font"),
	Attrs: set("href", "target", "rel", "src", "alt", "color"),
	Checks: map[string]map[string]Check{
		"a":    {"href": IsHTTPURL},
		"img":  {"src": IsImageSource},
		"font": {"color": IsColor},
	},
	Required: map[string]string{"img": "src"},
	Force: map[string][]html.Attribute{
		"a": {{Key: "target", Val: "_blank"}, {Key: "rel", Val: "noopener noreferrer"}},
	},
	Defaults: map[string][]html.Attribute{
		"img": {{Key: "alt", Val: "image"}},
	},
}

var looksHTML = regexp.MustCompile(`(?i)<\s*(a|img|div|p|br|span|strong|em|ul|ol|li|pre|code)\b`)

// LooksHTML reports whether s contains markup worth sanitizing rather than escaping.
func LooksHTML(s string) bool {
	return looksHTML.MatchString(s)
}

var linkPattern = regexp.MustCompile(`(?i)((https?://)[^\s<]+|www\.[^\s<]+)`)

// Linkify wraps bare http(s):// and www. links in anchors.
func Linkify(s string) string {
	return linkPattern.ReplaceAllStringFunc(s, func(m string) string {
		href := m
		if !httpURL.MatchString(m) {
			href = "https://" + m
		}
		href = strings.ReplaceAll(href, `"`, "%22")
		return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + m + `</a>`
	})
}

var plainReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\n", "<br>")

// PlainText escapes s, keeps line breaks and turns links into anchors.
func PlainText(s string) string {
	return Linkify(plainReplacer.Replace(s))
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#039;")

// Escape escapes the five HTML special characters.
func Escape(s string) string {
	return escaper.Replace(s)
}
