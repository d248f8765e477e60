package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Latest(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantID  string
		wantNil bool
		wantErr string
	}{
		{
			name:   "numeric id",
			status: http.StatusOK,
			body:   `[{"id":7,"title":"Hi","content":"x","created_at":"2024-05-01T12:00:00.123456+00:00"}]`,
			wantID: "7",
		},
		{
			name:   "uuid id",
			status: http.StatusOK,
			body:   `[{"id":"0b9c","title":"Hi","content":"x","created_at":"2024-05-01T12:00:00Z"}]`,
			wantID: "0b9c",
		},
		{
			name:   "timestamp without offset",
			status: http.StatusOK,
			body:   `[{"id":8,"title":"Hi","content":"x","created_at":"2024-05-01T12:00:00.5"}]`,
			wantID: "8",
		},
		{
			name:    "empty table",
			status:  http.StatusOK,
			body:    `[]`,
			wantNil: true,
		},
		{
			name:    "upstream message",
			status:  http.StatusUnauthorized,
			body:    `{"message":"Invalid API key"}`,
			wantErr: "Invalid API key",
		},
		{
			name:    "empty error body",
			status:  http.StatusServiceUnavailable,
			body:    ``,
			wantErr: "supabase_503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/rest/v1/announcements" {
					t.Errorf("path = %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("limit"); got != "1" {
					t.Errorf("limit = %s, want 1", got)
				}
				if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
					t.Errorf("Latest() must use the anon key, headers = %v", r.Header)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL+"/", "anon", "service")
			item, err := c.Latest(context.Background())

			if tt.wantErr != "" {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("Latest() error = %v, want *StatusError", err)
				}
				if se.Status != tt.status || se.Error() != tt.wantErr {
					t.Errorf("Latest() error = %d %q, want %d %q", se.Status, se.Error(), tt.status, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Latest() error = %v", err)
			}
			if tt.wantNil {
				if item != nil {
					t.Errorf("Latest() = %+v, want nil", item)
				}
				return
			}
			if item == nil || item.ID != tt.wantID {
				t.Errorf("Latest() = %+v, want id %s", item, tt.wantID)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{name: "rfc3339", in: "2024-05-01T12:00:00Z", want: want},
		{name: "offset", in: "2024-05-01T14:00:00+02:00", want: want},
		{name: "no offset", in: "2024-05-01T12:00:00", want: want},
		{name: "no offset fractional", in: "2024-05-01T12:00:00.000000", want: want},
		{name: "space separated", in: "2024-05-01 12:00:00", want: want},
		{name: "space separated short offset", in: "2024-05-01 12:00:00+00", want: want},
		{name: "garbage", in: "yesterday", want: time.Time{}},
		{name: "empty", in: "", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClient_ListUsesServiceKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "service" {
			t.Errorf("List() apikey = %q, want service", r.Header.Get("apikey"))
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %s, want 50", got)
		}
		if got := r.URL.Query().Get("order"); got != "created_at.desc" {
			t.Errorf("order = %s", got)
		}
		_, _ = io.WriteString(w, `[{"id":2,"title":"b"},{"id":1,"title":"a"}]`)
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, "anon", "service").List(context.Background(), 50)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != "2" || items[1].Title != "a" {
		t.Errorf("List() = %+v", items)
	}
}

func TestClient_Insert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("Prefer = %q", r.Header.Get("Prefer"))
		}
		var body []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body) != 1 || body[0]["title"] != "T" || body[0]["content"] != "C" {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":9,"title":"T","content":"C","created_at":"2024-05-01T12:00:00Z"}]`)
	}))
	defer srv.Close()

	item, err := NewClient(srv.URL, "anon", "service").Insert(context.Background(), "T", "C")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if item.ID != "9" || item.CreatedAt.IsZero() {
		t.Errorf("Insert() = %+v", item)
	}
}
