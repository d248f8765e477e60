package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/service"
	"sidebar-toolkit/internal/settings"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the whole transcript after a change.
type ChatResponse struct {
	Messages []settings.Message `json:"messages"`
}

// ModelsResponse lists the models of the configured endpoint.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// ServeHTTP handles POST /api/chat. With ?stream=true the reply is streamed
// as Server-Sent Events.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreamingChat(w, r, req)
		return
	}

	msgs, err := h.chatService.Send(ctx, req.Message)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process chat request")
		return
	}
	writeJSON(w, ctx, http.StatusOK, ChatResponse{Messages: msgs})
}

// handleStreamingChat streams the reply using Server-Sent Events. Every chunk
// is sent as a JSON string; the final event carries the saved transcript.
func (h *ChatHandler) handleStreamingChat(w http.ResponseWriter, r *http.Request, req ChatRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	msgs, err := h.chatService.StreamSend(ctx, req.Message, func(chunk string) error {
		data, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "error streaming chat", "error", err)
		data, _ := json.Marshal(ErrorResponse{Error: err.Error()})
		_, _ = fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
		flusher.Flush()
		return
	}

	data, err := json.Marshal(ChatResponse{Messages: msgs})
	if err == nil {
		_, _ = fmt.Fprintf(w, "event: transcript\ndata: %s\n\n", data)
	}
	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// History handles GET /api/chat/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, ctx, http.StatusOK, ChatResponse{Messages: h.chatService.History(ctx)})
}

// Clear handles DELETE /api/chat/history.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.chatService.Clear(ctx)
	writeJSON(w, ctx, http.StatusOK, ChatResponse{Messages: []settings.Message{}})
}

// Regenerate handles POST /api/chat/regenerate.
func (h *ChatHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msgs, err := h.chatService.Regenerate(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to regenerate reply")
		return
	}
	writeJSON(w, ctx, http.StatusOK, ChatResponse{Messages: msgs})
}

// Models handles GET /api/chat/models.
func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	models, err := h.chatService.Models(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list models")
		return
	}
	writeJSON(w, ctx, http.StatusOK, ModelsResponse{Models: models})
}
