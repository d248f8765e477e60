package search

import (
	"fmt"
	"strings"
	"sync"

	"sidebar-toolkit/internal/pane"
)

// ScrollOffset keeps the current match away from the top edge of the pane.
const ScrollOffset = 50

// Match locates one occurrence of the query inside a pane node.
// Start and End are byte offsets into the node text.
type Match struct {
	NodeID int `json:"node_id"`
	Start  int `json:"start"`
	End    int `json:"end"`
}

// MatchSet is the ordered list of matches found in one pane.
type MatchSet struct {
	Query   string
	Side    pane.Side
	Matches []Match
}

// Len returns the number of matches.
func (m MatchSet) Len() int {
	return len(m.Matches)
}

// Find collects every occurrence of query in frag, in document order.
// After each hit the scan resumes one byte later, so overlapping matches count.
func Find(query string, frag pane.Fragment) MatchSet {
	set := MatchSet{Query: query, Side: frag.Side}
	if query == "" {
		return set
	}

	for _, n := range frag.Nodes {
		start := 0
		for start <= len(n.Text) {
			i := strings.Index(n.Text[start:], query)
			if i < 0 {
				break
			}
			at := start + i
			set.Matches = append(set.Matches, Match{NodeID: n.ID, Start: at, End: at + len(query)})
			start = at + 1
		}
	}

	return set
}

// Selection describes the user's text selection.
type Selection struct {
	Text string
	// Anchor is the pane the selection started in, or pane.None when it is
	// outside both panes or spans them.
	Anchor pane.Side
}

// Highlights are the two highlight treatments currently applied.
type Highlights struct {
	All     []Match   `json:"all"`
	Current *Match    `json:"current,omitempty"`
	Side    pane.Side `json:"-"`
}

// Session holds the search state of a diff panel.
type Session struct {
	mu           sync.Mutex
	set          MatchSet
	index        int
	status       string
	panelVisible bool
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{index: -1}
}

// Select runs a search for a selection made in one pane against the other pane.
// It returns false when the selection was ignored.
func (s *Session) Select(sel Selection, left, right pane.Fragment) bool {
	if sel.Text == "" {
		s.Clear()
		return true
	}

	var target pane.Fragment
	switch sel.Anchor {
	case pane.Left:
		target = right
	case pane.Right:
		target = left
	default:
		return false
	}

	s.highlight(sel.Text, target)
	return true
}

func (s *Session) highlight(query string, target pane.Fragment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := Find(query, target)
	if set.Len() == 0 {
		s.set = MatchSet{}
		s.status = "no matches (0)"
		s.panelVisible = false
		return
	}

	s.set = set
	if s.index == -1 {
		s.index = 0
	} else if s.index >= set.Len() {
		s.index = set.Len() - 1
	}
	s.panelVisible = true
	s.status = fmt.Sprintf("%d matches", set.Len())
}

// Next moves to the following match, wrapping to the first.
func (s *Session) Next() {
	s.step(1)
}

// Prev moves to the preceding match, wrapping to the last.
func (s *Session) Prev() {
	s.step(-1)
}

func (s *Session) step(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.set.Len()
	if n == 0 {
		return
	}
	s.index = ((s.index+delta)%n + n) % n
}

// Close ends the search. Callers must also drop the active text selection.
func (s *Session) Close() {
	s.Clear()
}

// Clear drops all search state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set = MatchSet{}
	s.index = -1
	s.status = ""
	s.panelVisible = false
}

// Invalidate drops the matches after pane content changed.
func (s *Session) Invalidate() {
	s.Clear()
}

// Current returns the current match.
func (s *Session) Current() (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index < 0 || s.index >= s.set.Len() {
		return Match{}, false
	}
	return s.set.Matches[s.index], true
}

// Index returns the current index, or -1 when no search is active.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Matches returns a copy of the active match set.
func (s *Session) Matches() MatchSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.set
	set.Matches = append([]Match(nil), s.set.Matches...)
	return set
}

// Status returns the status line text.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// PanelVisible reports whether the navigation panel should be shown.
func (s *Session) PanelVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelVisible
}

// Highlights returns all matches plus the current one.
func (s *Session) Highlights() Highlights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlightsLocked()
}

func (s *Session) highlightsLocked() Highlights {
	h := Highlights{Side: s.set.Side, All: append([]Match(nil), s.set.Matches...)}
	if s.index >= 0 && s.index < s.set.Len() {
		cur := s.set.Matches[s.index]
		h.Current = &cur
	}
	return h
}

// Snapshot is the whole search state read at one instant.
type Snapshot struct {
	Status       string
	PanelVisible bool
	Index        int
	Total        int
	Side         pane.Side
	Highlights   Highlights
}

// Snapshot returns the session state under a single lock so the index and
// the current highlight always agree.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Status:       s.status,
		PanelVisible: s.panelVisible,
		Index:        s.index,
		Total:        s.set.Len(),
		Side:         s.set.Side,
		Highlights:   s.highlightsLocked(),
	}
}

// Locator resolves a match to its vertical position inside the pane.
type Locator interface {
	Top(m Match) int
}

// LineLocator positions matches by line number in the pane text.
type LineLocator struct {
	Frag       pane.Fragment
	LineHeight int
}

// Top returns the y coordinate of the line holding the match.
func (l LineLocator) Top(m Match) int {
	text := l.Frag.Text()
	pos := l.Frag.Offset(m.NodeID) + m.Start
	if pos > len(text) {
		pos = len(text)
	}
	return strings.Count(text[:pos], "\n") * l.LineHeight
}

// ScrollTarget returns the scroll position that brings the current match into view.
func (s *Session) ScrollTarget(loc Locator) (int, bool) {
	m, ok := s.Current()
	if !ok {
		return 0, false
	}
	return max(0, loc.Top(m)-ScrollOffset), true
}
