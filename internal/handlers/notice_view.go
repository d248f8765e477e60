package handlers

import (
	"context"
	"net/http"

	"sidebar-toolkit/internal/noticeclient"
)

// NoticeViewer is the sidebar's announcement state.
type NoticeViewer interface {
	Load(ctx context.Context) noticeclient.View
	MarkRead(ctx context.Context) noticeclient.View
}

// NoticeViewHandler serves the announcement bell of the sidebar.
type NoticeViewHandler struct {
	viewer NoticeViewer
}

// NewNoticeViewHandler creates a new NoticeViewHandler.
func NewNoticeViewHandler(viewer NoticeViewer) *NoticeViewHandler {
	return &NoticeViewHandler{viewer: viewer}
}

// Show handles GET /api/notice: it fetches the newest announcement once and
// returns what the bell should display.
func (h *NoticeViewHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, ctx, http.StatusOK, h.viewer.Load(ctx))
}

// Read handles POST /api/notice/read.
func (h *NoticeViewHandler) Read(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, ctx, http.StatusOK, h.viewer.MarkRead(ctx))
}
