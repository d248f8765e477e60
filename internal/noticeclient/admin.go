package noticeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sidebar-toolkit/internal/notice"
)

// APIError is an error answer of the notice server.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return e.Code
}

// IsUnauthorized reports whether err means the admin token was refused.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Admin calls the token-protected endpoints of a notice server.
type Admin struct {
	baseURL    string
	httpClient *http.Client
}

// NewAdmin creates an Admin for the notice server at baseURL.
func NewAdmin(baseURL string) *Admin {
	return &Admin{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Login exchanges the admin password for a token.
func (a *Admin) Login(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/login", "", map[string]string{"password": password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// List returns the latest announcements.
func (a *Admin) List(ctx context.Context, token string) ([]notice.Item, error) {
	var out struct {
		Items []notice.Item `json:"items"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/list", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Publish stores a new announcement.
func (a *Admin) Publish(ctx context.Context, token, title, content string) (*notice.Item, error) {
	var out struct {
		Item *notice.Item `json:"item"`
	}
	body := map[string]string{"title": title, "content": content}
	if err := a.do(ctx, http.MethodPost, "/api/publish", token, body, &out); err != nil {
		return nil, err
	}
	return out.Item, nil
}

func (a *Admin) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &errBody) != nil || errBody.Error == "" {
			errBody.Error = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: errBody.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
