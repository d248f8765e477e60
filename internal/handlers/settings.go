package handlers

import (
	"context"
	"errors"
	"net/http"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/settings"
)

// SettingsStore is the part of the settings store the sidebar edits.
type SettingsStore interface {
	Connection(ctx context.Context) settings.Connection
	SaveConnection(ctx context.Context, c settings.Connection) settings.Connection
	Theme(ctx context.Context) string
	SetTheme(ctx context.Context, id string) error
}

// SettingsHandler serves the chat connection and theme settings.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// ThemeRequest selects a theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ThemesResponse lists the themes and the active one.
type ThemesResponse struct {
	Themes  []settings.Theme `json:"themes"`
	Current string           `json:"current"`
}

// GetConnection handles GET /api/settings/connection.
func (h *SettingsHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, ctx, http.StatusOK, h.store.Connection(ctx))
}

// PutConnection handles PUT /api/settings/connection.
func (h *SettingsHandler) PutConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var c settings.Connection
	if err := decodeBody(r, &c); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved := h.store.SaveConnection(ctx, c)
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "chat connection saved", "api_base", saved.APIBase, "model", saved.Model)
	writeJSON(w, ctx, http.StatusOK, saved)
}

// GetTheme handles GET /api/settings/theme.
func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, ctx, http.StatusOK, ThemeRequest{Theme: h.store.Theme(ctx)})
}

// PutTheme handles PUT /api/settings/theme.
func (h *SettingsHandler) PutTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ThemeRequest
	if err := decodeBody(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SetTheme(ctx, req.Theme); err != nil {
		if errors.Is(err, settings.ErrUnknownTheme) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		handleServiceError(w, ctx, err, "Failed to save theme")
		return
	}
	writeJSON(w, ctx, http.StatusOK, ThemeRequest{Theme: req.Theme})
}

// Themes handles GET /api/themes.
func (h *SettingsHandler) Themes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, ctx, http.StatusOK, ThemesResponse{Themes: settings.Themes, Current: h.store.Theme(ctx)})
}
