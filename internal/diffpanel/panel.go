package diffpanel

import (
	"sync"
	"time"

	"sidebar-toolkit/internal/debounce"
	"sidebar-toolkit/internal/diff"
	"sidebar-toolkit/internal/pane"
	"sidebar-toolkit/internal/search"
)

// Default delays of the differ tool.
const (
	DefaultCompareDelay = 300 * time.Millisecond
	DefaultSelectDelay  = 200 * time.Millisecond
	DefaultNoticeWindow = 2 * time.Second
)

// Options configures a Panel.
type Options struct {
	CompareDelay time.Duration
	SelectDelay  time.Duration
	// NoticeWindow suppresses repeated "identical" notifications.
	NoticeWindow time.Duration
	// Notify is called when both panes hold the same non-blank text.
	Notify func()
	// OnUpdate receives the state after every debounced compare or selection.
	OnUpdate func(View)
}

// View is a snapshot of the panel.
type View struct {
	Identical  bool          `json:"identical"`
	HasChanges bool          `json:"has_changes"`
	Spans      []diff.Span   `json:"spans"`
	Left       pane.Fragment `json:"-"`
	Right      pane.Fragment `json:"-"`
	LeftHTML   string        `json:"left_html"`
	RightHTML  string        `json:"right_html"`
	Search     SearchView    `json:"search"`
}

// SearchView is the search part of a View.
type SearchView struct {
	Status       string            `json:"status"`
	PanelVisible bool              `json:"panel_visible"`
	Side         string            `json:"side,omitempty"`
	Index        int               `json:"index"`
	Total        int               `json:"total"`
	Highlights   search.Highlights `json:"highlights"`
}

// Panel is one differ tool session: two editable panes plus cross-pane search.
type Panel struct {
	mu        sync.Mutex
	opts      Options
	leftText  string
	rightText string
	view      View
	session   *search.Session
	notifying bool

	compare  *debounce.Debouncer
	selector *debounce.Debouncer
}

// New creates a Panel. Zero delays fall back to the defaults.
func New(opts Options) *Panel {
	if opts.CompareDelay <= 0 {
		opts.CompareDelay = DefaultCompareDelay
	}
	if opts.SelectDelay <= 0 {
		opts.SelectDelay = DefaultSelectDelay
	}
	if opts.NoticeWindow <= 0 {
		opts.NoticeWindow = DefaultNoticeWindow
	}
	return &Panel{
		opts:     opts,
		session:  search.NewSession(),
		compare:  debounce.New(opts.CompareDelay),
		selector: debounce.New(opts.SelectDelay),
	}
}

// SetText replaces the text of one pane and schedules a compare.
func (p *Panel) SetText(side pane.Side, text string) {
	p.mu.Lock()
	switch side {
	case pane.Left:
		p.leftText = paneText(text)
	case pane.Right:
		p.rightText = paneText(text)
	default:
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.compare.Trigger(func() {
		p.publish(p.Compare())
	})
}

// paneText treats a pane holding only the trailing newline of an empty editor as empty.
func paneText(text string) string {
	if text == "\n" {
		return ""
	}
	return text
}

// Compare diffs both panes immediately and re-renders them.
func (p *Panel) Compare() View {
	p.mu.Lock()
	left, right := p.leftText, p.rightText
	p.mu.Unlock()

	res := diff.Compare(left, right)

	// Any re-render invalidates match positions.
	p.session.Invalidate()

	var v View
	if res.Identical {
		p.notifyIdentical()
		v = View{
			Identical: true,
			Left:      pane.PlainFragment(pane.Left, left),
			Right:     pane.PlainFragment(pane.Right, right),
		}
	} else {
		l, r := pane.Render(res.Spans)
		v = View{
			Spans:      res.Spans,
			HasChanges: diff.HasChanges(res.Spans),
			Left:       l,
			Right:      r,
		}
	}
	v.LeftHTML = v.Left.HTML()
	v.RightHTML = v.Right.HTML()

	p.mu.Lock()
	p.view = v
	p.mu.Unlock()

	return p.View()
}

func (p *Panel) notifyIdentical() {
	p.mu.Lock()
	if p.notifying {
		p.mu.Unlock()
		return
	}
	p.notifying = true
	notify := p.opts.Notify
	p.mu.Unlock()

	if notify != nil {
		notify()
	}
	time.AfterFunc(p.opts.NoticeWindow, func() {
		p.mu.Lock()
		p.notifying = false
		p.mu.Unlock()
	})
}

// Select schedules a cross-pane search for the selection.
func (p *Panel) Select(sel search.Selection) {
	p.selector.Trigger(func() {
		p.SelectNow(sel)
		p.publish(p.View())
	})
}

// SelectNow runs the search immediately. It reports whether the selection was used.
func (p *Panel) SelectNow(sel search.Selection) bool {
	p.mu.Lock()
	left, right := p.view.Left, p.view.Right
	p.mu.Unlock()

	return p.session.Select(sel, left, right)
}

// Next moves to the next match.
func (p *Panel) Next() View {
	p.session.Next()
	return p.View()
}

// Prev moves to the previous match.
func (p *Panel) Prev() View {
	p.session.Prev()
	return p.View()
}

// CloseSearch clears every highlight.
func (p *Panel) CloseSearch() View {
	p.session.Close()
	return p.View()
}

// ScrollTarget returns where the pane holding the current match should scroll to.
func (p *Panel) ScrollTarget(lineHeight int) (int, bool) {
	set := p.session.Matches()
	p.mu.Lock()
	frag := p.view.Left
	if set.Side == pane.Right {
		frag = p.view.Right
	}
	p.mu.Unlock()

	return p.session.ScrollTarget(search.LineLocator{Frag: frag, LineHeight: lineHeight})
}

// View returns the current state of the panel.
func (p *Panel) View() View {
	p.mu.Lock()
	v := p.view
	p.mu.Unlock()

	snap := p.session.Snapshot()
	v.Search = SearchView{
		Status:       snap.Status,
		PanelVisible: snap.PanelVisible,
		Index:        snap.Index,
		Total:        snap.Total,
		Highlights:   snap.Highlights,
	}
	if snap.Total > 0 {
		v.Search.Side = snap.Side.String()
	}
	return v
}

// Stop cancels pending debounced work.
func (p *Panel) Stop() {
	p.compare.Stop()
	p.selector.Stop()
}

func (p *Panel) publish(v View) {
	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate(v)
	}
}
