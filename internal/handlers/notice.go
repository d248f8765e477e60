package handlers

import (
	"net/http"
	"regexp"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/notice"
	"sidebar-toolkit/internal/service"
)

// NoticeHandler serves the announcement API: admin login, history listing,
// publishing and the public latest-notice endpoint.
type NoticeHandler struct {
	notices service.NoticeService
}

// NewNoticeHandler creates a new NoticeHandler.
func NewNoticeHandler(notices service.NoticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the admin token.
type LoginResponse struct {
	Token string `json:"token"`
}

// PublishRequest is the body of POST /api/publish.
type PublishRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ItemResponse wraps a single announcement. Item is null when there is none.
type ItemResponse struct {
	Item *notice.Item `json:"item"`
}

// ItemsResponse wraps the announcement history.
type ItemsResponse struct {
	Items []notice.Item `json:"items"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// allow answers preflight-style OPTIONS requests and rejects other methods.
// It reports whether the request should be handled.
func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	switch r.Method {
	case method:
		return true
	case http.MethodOptions:
		writeJSON(w, r.Context(), http.StatusOK, okResponse{OK: true})
	default:
		contextutil.LoggerFromContext(r.Context()).WarnContext(r.Context(), "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
	return false
}

var bearer = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	m := bearer.FindStringSubmatch(r.Header.Get("Authorization"))
	if m == nil {
		return ""
	}
	return m[1]
}

// Login handles POST /api/login.
func (h *NoticeHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	token, err := h.notices.Login(ctx, req.Password)
	if err != nil {
		handleServiceError(w, ctx, err, "server_error")
		return
	}
	writeJSON(w, ctx, http.StatusOK, LoginResponse{Token: token})
}

// List handles GET /api/list.
func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	items, err := h.notices.List(ctx, bearerToken(r))
	if err != nil {
		handleServiceError(w, ctx, err, "server_error")
		return
	}
	writeJSON(w, ctx, http.StatusOK, ItemsResponse{Items: items})
}

// Publish handles POST /api/publish.
func (h *NoticeHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	token := bearerToken(r)
	if err := h.notices.Authorize(ctx, token); err != nil {
		handleServiceError(w, ctx, err, "server_error")
		return
	}

	var req PublishRequest
	if err := decodeBody(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	item, err := h.notices.Publish(ctx, token, req.Title, req.Content)
	if err != nil {
		handleServiceError(w, ctx, err, "server_error")
		return
	}
	writeJSON(w, ctx, http.StatusOK, ItemResponse{Item: item})
}

// Latest handles GET /api/latest. It needs no token.
func (h *NoticeHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	item, err := h.notices.Latest(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "server_error")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, ctx, http.StatusOK, ItemResponse{Item: item})
}
