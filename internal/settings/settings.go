package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/storage"
)

// Storage keys.
const (
	KeyConnection  = "llm_settings_v1"
	KeyChatHistory = "llm_chat_history_v1"
	KeyTheme       = "sidebar_theme_v1"
	KeyNoticeRead  = "notice_read_id_v1"
	KeyAdminToken  = "notice_admin_token_v1"
)

// Store reads and writes JSON values by key. Reads never fail: a missing or
// malformed value reads as its empty default. Writes log failures and carry on.
type Store struct {
	blobs storage.BlobStore
}

// New creates a Store backed by blobs.
func New(blobs storage.BlobStore) *Store {
	return &Store{blobs: blobs}
}

func (s *Store) raw(ctx context.Context, key string) (string, bool) {
	v, err := s.blobs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to read setting", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}

// GetObject returns the object stored under key, or an empty map.
func (s *Store) GetObject(ctx context.Context, key string) map[string]any {
	obj := map[string]any{}
	raw, ok := s.raw(ctx, key)
	if !ok {
		return obj
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}

// GetArray returns the array stored under key, or an empty slice.
func (s *Store) GetArray(ctx context.Context, key string) []any {
	arr := []any{}
	raw, ok := s.raw(ctx, key)
	if !ok {
		return arr
	}
	if err := json.Unmarshal([]byte(raw), &arr); err != nil || arr == nil {
		return []any{}
	}
	return arr
}

// GetString returns the plain string stored under key, or "".
func (s *Store) GetString(ctx context.Context, key string) string {
	raw, _ := s.raw(ctx, key)
	return raw
}

// Set stores v as JSON under key.
func (s *Store) Set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to encode setting", "key", key, "error", err)
		return
	}
	s.SetString(ctx, key, string(data))
}

// SetString stores s as is under key.
func (s *Store) SetString(ctx context.Context, key, value string) {
	if err := s.blobs.Put(ctx, key, value); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to write setting", "key", key, "error", err)
	}
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to remove setting", "key", key, "error", err)
	}
}

// Connection holds the chat endpoint settings.
type Connection struct {
	APIBase string `json:"apiBase"`
	APIKey  string `json:"apiKey"`
	Model   string `json:"model"`
}

// Complete reports whether every field is set.
func (c Connection) Complete() bool {
	return c.APIBase != "" && c.APIKey != "" && c.Model != ""
}

// Connection returns the saved chat connection.
func (s *Store) Connection(ctx context.Context) Connection {
	obj := s.GetObject(ctx, KeyConnection)
	return Connection{
		APIBase: stringField(obj, "apiBase"),
		APIKey:  stringField(obj, "apiKey"),
		Model:   stringField(obj, "model"),
	}
}

// SaveConnection stores c with surrounding whitespace trimmed.
func (s *Store) SaveConnection(ctx context.Context, c Connection) Connection {
	c = Connection{
		APIBase: strings.TrimSpace(c.APIBase),
		APIKey:  strings.TrimSpace(c.APIKey),
		Model:   strings.TrimSpace(c.Model),
	}
	s.Set(ctx, KeyConnection, c)
	return c
}

// Message is one chat transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles used in the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Messages returns the saved chat transcript. Malformed entries are skipped.
func (s *Store) Messages(ctx context.Context) []Message {
	msgs := []Message{}
	for _, item := range s.GetArray(ctx, KeyChatHistory) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		role := stringField(obj, "role")
		if role == "" {
			continue
		}
		msgs = append(msgs, Message{Role: role, Content: stringField(obj, "content")})
	}
	return msgs
}

// SaveMessages replaces the chat transcript.
func (s *Store) SaveMessages(ctx context.Context, msgs []Message) {
	if msgs == nil {
		msgs = []Message{}
	}
	s.Set(ctx, KeyChatHistory, msgs)
}

// LastReadNotice returns the id of the last notice the user dismissed.
func (s *Store) LastReadNotice(ctx context.Context) string {
	return s.GetString(ctx, KeyNoticeRead)
}

// SetLastReadNotice records id as read.
func (s *Store) SetLastReadNotice(ctx context.Context, id string) {
	s.SetString(ctx, KeyNoticeRead, id)
}

// AdminToken returns the cached admin token, if any.
func (s *Store) AdminToken(ctx context.Context) string {
	return s.GetString(ctx, KeyAdminToken)
}

// SetAdminToken caches the admin token. An empty token clears it.
func (s *Store) SetAdminToken(ctx context.Context, token string) {
	if token == "" {
		s.Remove(ctx, KeyAdminToken)
		return
	}
	s.SetString(ctx, KeyAdminToken, token)
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}
