package diffpanel

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sidebar-toolkit/internal/diff"
	"sidebar-toolkit/internal/pane"
	"sidebar-toolkit/internal/search"
)

func newTestPanel(t *testing.T, opts Options) *Panel {
	t.Helper()
	p := New(opts)
	t.Cleanup(p.Stop)
	return p
}

func TestPanel_Compare(t *testing.T) {
	p := newTestPanel(t, Options{CompareDelay: time.Hour})
	p.SetText(pane.Left, "Header\n\nThis is a natural paragraph.")
	p.SetText(pane.Right, "Header\n\nThis is a modified paragraph.")

	v := p.Compare()

	if v.Identical {
		t.Fatal("Compare() Identical = true, want false")
	}
	if !v.HasChanges {
		t.Error("Compare() HasChanges = false, want true")
	}
	if diff.Left(v.Spans) != v.Left.Text() || diff.Right(v.Spans) != v.Right.Text() {
		t.Error("rendered panes do not match the diff spans")
	}
	if !strings.Contains(v.LeftHTML, pane.ClassRemoved) || !strings.Contains(v.RightHTML, pane.ClassAdded) {
		t.Errorf("HTML is missing highlight markup: %s | %s", v.LeftHTML, v.RightHTML)
	}
}

func TestPanel_IdenticalNotifiesOnce(t *testing.T) {
	var notified atomic.Int32
	p := newTestPanel(t, Options{
		CompareDelay: time.Hour,
		NoticeWindow: time.Hour,
		Notify:       func() { notified.Add(1) },
	})
	p.SetText(pane.Left, "same text")
	p.SetText(pane.Right, "same text")

	v := p.Compare()
	p.Compare()

	if !v.Identical {
		t.Fatal("Compare() Identical = false, want true")
	}
	if len(v.Spans) != 0 {
		t.Errorf("identical compare produced %d spans", len(v.Spans))
	}
	if strings.Contains(v.LeftHTML, "highlight") || strings.Contains(v.RightHTML, "highlight") {
		t.Error("identical compare produced highlight markup")
	}
	if got := notified.Load(); got != 1 {
		t.Errorf("Notify called %d times, want 1", got)
	}
}

func TestPanel_BlankPanesDoNotNotify(t *testing.T) {
	var notified atomic.Int32
	p := newTestPanel(t, Options{CompareDelay: time.Hour, Notify: func() { notified.Add(1) }})
	p.SetText(pane.Left, "\n")
	p.SetText(pane.Right, "")

	v := p.Compare()

	if v.Identical || notified.Load() != 0 {
		t.Error("blank panes must not trigger the identical notification")
	}
}

func TestPanel_SearchAndInvalidate(t *testing.T) {
	p := newTestPanel(t, Options{CompareDelay: time.Hour})
	p.SetText(pane.Left, "alpha one.")
	p.SetText(pane.Right, "alpha two alpha.")
	p.Compare()

	if !p.SelectNow(search.Selection{Text: "alpha", Anchor: pane.Left}) {
		t.Fatal("SelectNow() ignored selection")
	}
	v := p.View()
	if v.Search.Total != 2 || v.Search.Side != "right" || v.Search.Index != 0 {
		t.Errorf("Search = %+v", v.Search)
	}

	v = p.Next()
	if v.Search.Index != 1 {
		t.Errorf("Next() index = %d, want 1", v.Search.Index)
	}
	if cur := v.Search.Highlights.Current; cur == nil || *cur != v.Search.Highlights.All[v.Search.Index] {
		t.Errorf("View() current highlight %+v does not match index %d", cur, v.Search.Index)
	}

	if _, ok := p.ScrollTarget(20); !ok {
		t.Error("ScrollTarget() ok = false with an active match")
	}

	// Editing a pane re-renders and drops the stale match set.
	p.SetText(pane.Right, "gamma")
	v = p.Compare()
	if v.Search.Total != 0 || v.Search.Index != -1 {
		t.Errorf("Search after edit = %+v, want cleared", v.Search)
	}

	v = p.CloseSearch()
	if v.Search.PanelVisible {
		t.Error("CloseSearch() left the panel visible")
	}
}

func TestPanel_DebouncedUpdates(t *testing.T) {
	updates := make(chan View, 4)
	p := newTestPanel(t, Options{
		CompareDelay: 10 * time.Millisecond,
		SelectDelay:  10 * time.Millisecond,
		OnUpdate:     func(v View) { updates <- v },
	})

	p.SetText(pane.Left, "one")
	p.SetText(pane.Right, "one two")

	select {
	case v := <-updates:
		if v.Right.Text() != "one two" {
			t.Errorf("debounced compare saw right = %q", v.Right.Text())
		}
	case <-time.After(time.Second):
		t.Fatal("no debounced compare")
	}

	p.Select(search.Selection{Text: "one", Anchor: pane.Right})
	select {
	case v := <-updates:
		if v.Search.Total != 1 {
			t.Errorf("debounced search total = %d, want 1", v.Search.Total)
		}
	case <-time.After(time.Second):
		t.Fatal("no debounced selection")
	}
}
