package pane

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sidebar-toolkit/internal/diff"
)

// Side identifies one of the two diff panes.
type Side int

const (
	// None is used for selections that are outside both panes.
	None Side = iota
	Left
	Right
)

// String returns the wire name of the side.
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Other returns the opposite pane. None stays None.
func (s Side) Other() Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return None
	}
}

// ParseSide maps a wire name back to a Side.
func ParseSide(v string) Side {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left":
		return Left
	case "right":
		return Right
	default:
		return None
	}
}

// Mark is the highlight treatment applied to a node.
type Mark int

const (
	Plain Mark = iota
	MarkAdded
	MarkRemoved
)

// Class names used by the extension stylesheet.
const (
	ClassAdded   = "highlight-added"
	ClassRemoved = "highlight-removed"
)

// Node is one text node of a rendered pane.
type Node struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Mark Mark   `json:"mark"`
}

// Fragment is the snapshotted text model of a single pane.
type Fragment struct {
	Side  Side
	Nodes []Node
}

// Render turns diff spans into left and right fragments.
// Removed spans only appear on the left, added spans only on the right.
func Render(spans []diff.Span) (Fragment, Fragment) {
	left := Fragment{Side: Left}
	right := Fragment{Side: Right}

	for _, s := range spans {
		switch s.Kind {
		case diff.Added:
			right.append(s.Text, MarkAdded)
		case diff.Removed:
			left.append(s.Text, MarkRemoved)
		default:
			left.append(s.Text, Plain)
			right.append(s.Text, Plain)
		}
	}

	return left, right
}

// PlainFragment builds an unhighlighted fragment holding text as one node.
func PlainFragment(side Side, text string) Fragment {
	f := Fragment{Side: side}
	f.append(text, Plain)
	return f
}

func (f *Fragment) append(text string, mark Mark) {
	if text == "" {
		return
	}
	f.Nodes = append(f.Nodes, Node{ID: len(f.Nodes), Text: text, Mark: mark})
}

// Node returns the node with the given id.
func (f Fragment) Node(id int) (Node, bool) {
	if id < 0 || id >= len(f.Nodes) {
		return Node{}, false
	}
	return f.Nodes[id], true
}

// Text returns the concatenated text content of the pane.
func (f Fragment) Text() string {
	var b strings.Builder
	for _, n := range f.Nodes {
		b.WriteString(n.Text)
	}
	return b.String()
}

// Offset returns the position of a node's first byte within Text().
func (f Fragment) Offset(id int) int {
	off := 0
	for _, n := range f.Nodes {
		if n.ID == id {
			return off
		}
		off += len(n.Text)
	}
	return off
}

// HTML serializes the fragment, wrapping marked nodes in highlight spans.
func (f Fragment) HTML() string {
	var buf bytes.Buffer
	for _, n := range f.Nodes {
		_ = html.Render(&buf, toHTML(n))
	}
	return buf.String()
}

func toHTML(n Node) *html.Node {
	text := &html.Node{Type: html.TextNode, Data: n.Text}

	var class string
	switch n.Mark {
	case MarkAdded:
		class = ClassAdded
	case MarkRemoved:
		class = ClassRemoved
	default:
		return text
	}

	span := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
	span.AppendChild(text)
	return span
}
