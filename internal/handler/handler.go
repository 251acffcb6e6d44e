// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/usersvc/usersvc/internal/handler/dto"
)

// Response messages shared by the JSON handlers.
const (
	MsgPong             = "pong!"
	MsgInvalidPayload   = "Invalid payload."
	MsgDuplicateUser    = "Sorry. That email already exists."
	MsgUserNotFound     = "User does not exist."
	MsgNotFound         = "Resource not found."
	MsgMethodNotAllowed = "Method not allowed."
	MsgInternalError    = "Internal server error."
	msgUserAddedSuffix  = " was added!"
)

// Handler serves router-level fallbacks.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, dto.Fail(MsgNotFound))
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.Fail(MsgMethodNotAllowed))
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Debug("failed to encode response", "error", err)
	}
}
