package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/diffpanel"
	"sidebar-toolkit/internal/pane"
	"sidebar-toolkit/internal/search"
)

// IdenticalMessage is shown when both panes hold the same text.
const IdenticalMessage = "No differences: both texts are identical"

// DiffHandler serves the differ tool. POST /api/tools/diff is a one-shot
// compare; the websocket keeps a live panel per connection.
type DiffHandler struct {
	compareDelay time.Duration
	selectDelay  time.Duration
	upgrader     websocket.Upgrader
}

// NewDiffHandler creates a new DiffHandler with the live panel's debounce delays.
func NewDiffHandler(compareDelay, selectDelay time.Duration) *DiffHandler {
	return &DiffHandler{
		compareDelay: compareDelay,
		selectDelay:  selectDelay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// DiffRequest is the body of POST /api/tools/diff.
type DiffRequest struct {
	Left  string `json:"left"`
	Right string `json:"right"`
	// Selection optionally searches the rendered panes.
	Selection string `json:"selection,omitempty"`
	Anchor    string `json:"anchor,omitempty"`
}

// Compare handles POST /api/tools/diff.
func (h *DiffHandler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DiffRequest
	if err := decodeBody(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := diffpanel.New(diffpanel.Options{CompareDelay: time.Hour, SelectDelay: time.Hour})
	defer p.Stop()

	p.SetText(pane.Left, req.Left)
	p.SetText(pane.Right, req.Right)
	v := p.Compare()
	if req.Selection != "" {
		p.SelectNow(search.Selection{Text: req.Selection, Anchor: pane.ParseSide(req.Anchor)})
		v = p.View()
	}
	writeJSON(w, ctx, http.StatusOK, v)
}

// diffMessage is the incoming websocket message format.
type diffMessage struct {
	Type       string `json:"type"` // text, select, next, prev, close or scroll
	Side       string `json:"side,omitempty"`
	Text       string `json:"text,omitempty"`
	Anchor     string `json:"anchor,omitempty"`
	LineHeight int    `json:"line_height,omitempty"`
}

// diffEvent is the outgoing websocket message format.
type diffEvent struct {
	Type    string          `json:"type"` // view, identical, scroll or error
	View    *diffpanel.View `json:"view,omitempty"`
	Top     int             `json:"top,omitempty"`
	Message string          `json:"message,omitempty"`
}

// diffConn serialises writes from the read loop and the panel's timers.
type diffConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *diffConn) send(ev diffEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(ev)
}

// Live handles GET /api/tools/diff/ws.
func (h *DiffHandler) Live(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()
	// Live sessions outlast the server's write timeout.
	_ = ws.NetConn().SetDeadline(time.Time{})
	conn := &diffConn{conn: ws}

	send := func(ev diffEvent) {
		if err := conn.send(ev); err != nil {
			logger.WarnContext(ctx, "websocket write failed", "error", err)
		}
	}

	p := diffpanel.New(diffpanel.Options{
		CompareDelay: h.compareDelay,
		SelectDelay:  h.selectDelay,
		Notify: func() {
			send(diffEvent{Type: "identical", Message: IdenticalMessage})
		},
		OnUpdate: func(v diffpanel.View) {
			send(diffEvent{Type: "view", View: &v})
		},
	})
	defer p.Stop()

	for {
		var msg diffMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnContext(ctx, "websocket read failed", "error", err)
			}
			return
		}

		switch strings.ToLower(msg.Type) {
		case "text":
			side := pane.ParseSide(msg.Side)
			if side == pane.None {
				send(diffEvent{Type: "error", Message: "side must be left or right"})
				continue
			}
			p.SetText(side, msg.Text)
		case "select":
			p.Select(search.Selection{Text: msg.Text, Anchor: pane.ParseSide(msg.Anchor)})
		case "next":
			v := p.Next()
			send(diffEvent{Type: "view", View: &v})
		case "prev":
			v := p.Prev()
			send(diffEvent{Type: "view", View: &v})
		case "close":
			v := p.CloseSearch()
			send(diffEvent{Type: "view", View: &v})
		case "scroll":
			if top, ok := p.ScrollTarget(msg.LineHeight); ok {
				send(diffEvent{Type: "scroll", Top: top})
			}
		default:
			send(diffEvent{Type: "error", Message: "unknown message type: " + msg.Type})
		}
	}
}
