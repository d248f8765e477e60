// Package supabase talks to the announcements table through the Supabase REST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sidebar-toolkit/internal/notice"
)

const (
	announcementsPath = "/rest/v1/announcements"
	selectColumns     = "select=id,title,content,created_at&order=created_at.desc"
)

// StatusError is a non-2xx answer from the REST API.
type StatusError struct {
	Status int
	Code   string
}

func (e *StatusError) Error() string {
	return e.Code
}

// StatusCode returns the upstream HTTP status.
func (e *StatusError) StatusCode() int {
	return e.Status
}

// Client reads with the anon key and writes with the service-role key.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a Client for the project at baseURL.
func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// row is an announcements row as PostgREST returns it. The id column may be
// a bigint or a uuid depending on how the table was created.
type row struct {
	ID        json.RawMessage `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	CreatedAt string          `json:"created_at"`
}

// timestampLayouts covers timestamptz and timestamp without time zone columns.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp reads a PostgREST timestamp. Values without an offset are
// taken as UTC, and unreadable values give the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r row) item() notice.Item {
	id := string(r.ID)
	if s, err := strconv.Unquote(id); err == nil {
		id = s
	}
	if id == "null" {
		id = ""
	}
	return notice.Item{ID: id, Title: r.Title, Content: r.Content, CreatedAt: parseTimestamp(r.CreatedAt)}
}

// Latest returns the newest announcement, or nil when the table is empty.
func (c *Client) Latest(ctx context.Context) (*notice.Item, error) {
	var rows []row
	if err := c.do(ctx, http.MethodGet, announcementsPath+"?"+selectColumns+"&limit=1", c.anonKey, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	item := rows[0].item()
	return &item, nil
}

// List returns up to limit announcements, newest first.
func (c *Client) List(ctx context.Context, limit int) ([]notice.Item, error) {
	var rows []row
	path := announcementsPath + "?" + selectColumns + "&limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, c.serviceKey, nil, &rows); err != nil {
		return nil, err
	}
	items := make([]notice.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.item())
	}
	return items, nil
}

// Insert adds an announcement and returns the stored row.
func (c *Client) Insert(ctx context.Context, title, content string) (*notice.Item, error) {
	body, err := json.Marshal([]map[string]string{{"title": title, "content": content}})
	if err != nil {
		return nil, fmt.Errorf("marshal announcement: %w", err)
	}

	var rows []row
	if err := c.do(ctx, http.MethodPost, announcementsPath, c.serviceKey, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &StatusError{Status: http.StatusBadGateway, Code: "empty_representation"}
	}
	item := rows[0].item()
	return &item, nil
}

func (c *Client) do(ctx context.Context, method, path, key string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("apikey", key)
	httpReq.Header.Set("Authorization", "Bearer "+key)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, announcementsPath, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Code: errorCode(resp.StatusCode, data)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorCode picks the message PostgREST put in an error body.
func errorCode(status int, data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return "supabase_" + strconv.Itoa(status)
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		if text := strings.TrimSpace(string(data)); text != "" {
			return text
		}
		return "invalid_json"
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return "supabase_" + strconv.Itoa(status)
}
