package pane

import (
	"reflect"
	"testing"

	"sidebar-toolkit/internal/diff"
)

func TestRender(t *testing.T) {
	spans := []diff.Span{
		{Text: "Header ", Kind: diff.Unchanged},
		{Text: "old", Kind: diff.Removed},
		{Text: "new", Kind: diff.Added},
		{Text: " tail", Kind: diff.Unchanged},
	}

	left, right := Render(spans)

	if got := left.Text(); got != "Header old tail" {
		t.Errorf("left.Text() = %q", got)
	}
	if got := right.Text(); got != "Header new tail" {
		t.Errorf("right.Text() = %q", got)
	}

	wantLeft := []Node{
		{ID: 0, Text: "Header "},
		{ID: 1, Text: "old", Mark: MarkRemoved},
		{ID: 2, Text: " tail"},
	}
	if !reflect.DeepEqual(left.Nodes, wantLeft) {
		t.Errorf("left.Nodes = %+v, want %+v", left.Nodes, wantLeft)
	}
	for _, n := range right.Nodes {
		if n.Mark == MarkRemoved {
			t.Errorf("right pane contains removed node %+v", n)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	res := diff.Compare("one two three", "one 2 three four")

	l1, r1 := Render(res.Spans)
	l2, r2 := Render(res.Spans)

	if l1.HTML() != l2.HTML() || r1.HTML() != r2.HTML() {
		t.Error("Render() is not idempotent for identical spans")
	}
	if !reflect.DeepEqual(l1, l2) || !reflect.DeepEqual(r1, r2) {
		t.Error("Render() produced different text models for identical spans")
	}
}

func TestFragment_HTML(t *testing.T) {
	left, right := Render([]diff.Span{
		{Text: "a<b", Kind: diff.Unchanged},
		{Text: "&x", Kind: diff.Removed},
		{Text: "\"y\"", Kind: diff.Added},
	})

	if got, want := left.HTML(), `a&lt;b<span class="highlight-removed">&amp;x</span>`; got != want {
		t.Errorf("left.HTML() = %s, want %s", got, want)
	}
	if got, want := right.HTML(), `a&lt;b<span class="highlight-added">&#34;y&#34;</span>`; got != want {
		t.Errorf("right.HTML() = %s, want %s", got, want)
	}
}

func TestFragment_Offset(t *testing.T) {
	f := Fragment{Side: Left}
	f.append("abc", Plain)
	f.append("de", MarkRemoved)
	f.append("f", Plain)

	if got := f.Offset(2); got != 5 {
		t.Errorf("Offset(2) = %d, want 5", got)
	}
	if _, ok := f.Node(3); ok {
		t.Error("Node(3) ok = true, want false")
	}
}

func TestSide(t *testing.T) {
	if Left.Other() != Right || Right.Other() != Left || None.Other() != None {
		t.Error("Other() mapping is wrong")
	}
	if ParseSide(" Right ") != Right || ParseSide("middle") != None {
		t.Error("ParseSide() mapping is wrong")
	}
}
