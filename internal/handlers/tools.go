package handlers

import (
	"errors"
	"net/http"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/dialogue"
	"sidebar-toolkit/internal/jsonview"
	"sidebar-toolkit/internal/markdown"
)

// ToolsHandler serves the stateless sidebar tools: the JSON viewer, the
// Markdown previewer and the dialogue renderer.
type ToolsHandler struct {
	markdown *markdown.Renderer
	dialogue *dialogue.Renderer
}

// NewToolsHandler creates a new ToolsHandler.
func NewToolsHandler(md *markdown.Renderer) *ToolsHandler {
	return &ToolsHandler{
		markdown: md,
		dialogue: dialogue.New(md),
	}
}

// TextRequest is the body of the tool endpoints.
type TextRequest struct {
	Text string `json:"text"`
	// Mode is only read by the JSON viewer: view, pretty or minify.
	Mode string `json:"mode,omitempty"`
}

// MarkdownResponse is the rendered preview with its statistics.
type MarkdownResponse struct {
	HTML   string          `json:"html"`
	Counts markdown.Counts `json:"counts"`
}

// EmbedResponse is the input with bare links turned into images.
type EmbedResponse struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func (h *ToolsHandler) readText(w http.ResponseWriter, r *http.Request) (TextRequest, bool) {
	ctx := r.Context()

	var req TextRequest
	if err := decodeBody(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}

// JSON handles POST /api/tools/json. Parse failures are part of the result,
// not an error status.
func (h *ToolsHandler) JSON(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readText(w, r)
	if !ok {
		return
	}

	mode := jsonview.Mode(req.Mode)
	if mode == "" {
		mode = jsonview.ModeView
	}
	switch mode {
	case jsonview.ModeView, jsonview.ModePretty, jsonview.ModeMinify:
	default:
		writeError(w, http.StatusBadRequest, "mode must be view, pretty or minify")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, jsonview.Process(req.Text, mode))
}

// Markdown handles POST /api/tools/markdown.
func (h *ToolsHandler) Markdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.readText(w, r)
	if !ok {
		return
	}

	out, err := h.markdown.Render(req.Text)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to render markdown")
		return
	}
	writeJSON(w, ctx, http.StatusOK, MarkdownResponse{HTML: out, Counts: markdown.Count(req.Text)})
}

// EmbedImages handles POST /api/tools/markdown/images.
func (h *ToolsHandler) EmbedImages(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readText(w, r)
	if !ok {
		return
	}

	text, n := markdown.EmbedImages(req.Text)
	if n == 0 {
		writeError(w, http.StatusUnprocessableEntity, "No new image URLs found.")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, EmbedResponse{Text: text, Count: n})
}

// Dialogue handles POST /api/tools/dialogue.
func (h *ToolsHandler) Dialogue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.readText(w, r)
	if !ok {
		return
	}

	res, err := h.dialogue.Render(req.Text)
	if err != nil {
		if errors.Is(err, dialogue.ErrEmpty) || errors.Is(err, dialogue.ErrInvalidJSON) || errors.Is(err, dialogue.ErrNotArray) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "dialogue rejected", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		handleServiceError(w, ctx, err, "Failed to render dialogue")
		return
	}
	writeJSON(w, ctx, http.StatusOK, res)
}
