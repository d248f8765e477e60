package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/service"
)

// maxBodyBytes caps request bodies of the tool endpoints.
const maxBodyBytes = 4 << 20

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusCoder is implemented by upstream errors that carry an HTTP status.
type statusCoder interface {
	error
	StatusCode() int
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, ctx context.Context, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// decodeBody reads a JSON request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	var upstream statusCoder
	if errors.As(err, &upstream) {
		writeError(w, upstream.StatusCode(), upstream.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrBadPassword):
		writeError(w, http.StatusUnauthorized, service.ErrBadPassword.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrMissingSecret):
		writeError(w, http.StatusInternalServerError, service.ErrMissingSecret.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, service.ErrExternalService):
		writeError(w, http.StatusBadGateway, "external_service_error")
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
