// Package noticeclient is the sidebar side of announcements: it fetches the
// newest one, renders it safely and remembers which one was read.
package noticeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/notice"
	"sidebar-toolkit/internal/sanitize"
)

// DefaultTitle is shown when an announcement has no title.
const DefaultTitle = "Notice"

// MetaLayout formats the publish time.
const MetaLayout = "2006-01-02 15:04:05"

// ReadTracker remembers the id of the last announcement the user dismissed.
type ReadTracker interface {
	LastReadNotice(ctx context.Context) string
	SetLastReadNotice(ctx context.Context, id string)
}

// View is what the sidebar shows for the current announcement.
type View struct {
	// Visible is false when there is nothing to show; the bell is hidden.
	Visible  bool   `json:"visible"`
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Meta     string `json:"meta,omitempty"`
	BodyHTML string `json:"body_html,omitempty"`
	// Unread makes the bell pulse.
	Unread bool `json:"unread"`
	// Open shows the popup.
	Open bool `json:"open"`
}

// Client fetches announcements from a notice server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracker    ReadTracker
	location   *time.Location

	mu     sync.Mutex
	latest *notice.Item
}

// NewClient creates a Client for the notice server at baseURL.
func NewClient(baseURL string, tracker ReadTracker) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tracker:  tracker,
		location: time.Local,
	}
}

// FetchLatest asks the server for the newest announcement. A nil item with a
// nil error means there is none.
func (c *Client) FetchLatest(ctx context.Context) (*notice.Item, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/latest", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch latest notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch latest notice: status %d: %s", resp.StatusCode, string(respBody))
	}

	var body struct {
		Item *notice.Item `json:"item"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode latest notice: %w", err)
	}
	return body.Item, nil
}

// Load fetches the newest announcement and returns its view. Failures are
// logged and show nothing.
func (c *Client) Load(ctx context.Context) View {
	item, err := c.FetchLatest(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "notice fetch failed", "error", err)
		return c.Current(ctx)
	}

	c.mu.Lock()
	c.latest = item
	c.mu.Unlock()

	return c.Current(ctx)
}

// Current renders the last fetched announcement.
func (c *Client) Current(ctx context.Context) View {
	c.mu.Lock()
	item := c.latest
	c.mu.Unlock()

	return Render(item, c.tracker.LastReadNotice(ctx), c.location)
}

// MarkRead records the shown announcement as read and closes the popup.
func (c *Client) MarkRead(ctx context.Context) View {
	c.mu.Lock()
	item := c.latest
	c.mu.Unlock()

	if item == nil || item.ID == "" {
		v := Render(item, c.tracker.LastReadNotice(ctx), c.location)
		v.Open = false
		return v
	}

	c.tracker.SetLastReadNotice(ctx, item.ID)
	return Render(item, item.ID, c.location)
}

// Render builds the view of item given the last read id.
func Render(item *notice.Item, lastRead string, loc *time.Location) View {
	if item == nil {
		return View{}
	}

	v := View{
		Visible:  true,
		ID:       item.ID,
		Title:    item.Title,
		BodyHTML: Body(item.Content),
	}
	if v.Title == "" {
		v.Title = DefaultTitle
	}
	if !item.CreatedAt.IsZero() {
		if loc == nil {
			loc = time.Local
		}
		v.Meta = "Published: " + item.CreatedAt.In(loc).Format(MetaLayout)
	}

	v.Unread = item.ID != "" && item.ID != lastRead
	v.Open = v.Unread
	return v
}

// Body turns raw announcement content into safe HTML. Content that looks like
// markup is sanitized; anything else is treated as plain text.
func Body(raw string) string {
	if sanitize.LooksHTML(raw) {
		return sanitize.HTML(raw, sanitize.NoticePolicy)
	}
	return sanitize.PlainText(raw)
}
