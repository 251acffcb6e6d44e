package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/usersvc/usersvc/internal/handler/dto"
	"github.com/usersvc/usersvc/internal/repository"
	"github.com/usersvc/usersvc/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Ping handles GET /users/ping.
func (h *UserHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.Success(MsgPong, nil))
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateUserRequest(r)
	if err != nil {
		h.logger.Debug("rejected create payload", "error", err)
		writeJSON(w, http.StatusBadRequest, dto.Fail(MsgInvalidPayload))
		return
	}

	input := service.CreateUserInput{}
	if req.Username != nil {
		input.Username = *req.Username
	}
	if req.Email != nil {
		input.Email = *req.Email
	}

	user, err := h.svc.CreateUser(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"username", user.Username,
	)

	writeJSON(w, http.StatusCreated, dto.Success(user.Email+msgUserAddedSuffix, nil))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Success("", dto.ToUserResponse(user)))
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Success("", dto.ToUserListResponse(users)))
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	status, message := classifyServiceError(err)
	switch status {
	case http.StatusInternalServerError:
		h.logger.Error("internal_error", "error", err)
	case http.StatusBadRequest:
		var dup *repository.DuplicateKeyError
		if errors.As(err, &dup) {
			h.logger.Info("user_rejected_duplicate", "field", dup.Field)
		}
	}
	writeJSON(w, status, dto.Fail(message))
}

// classifyServiceError returns the status code and envelope message for err.
func classifyServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidPayload):
		return http.StatusBadRequest, MsgInvalidPayload
	case errors.Is(err, service.ErrDuplicateUser):
		return http.StatusBadRequest, MsgDuplicateUser
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, MsgUserNotFound
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

var (
	errEmptyBody     = errors.New("empty request body")
	errNotJSONMedia  = errors.New("content type is not JSON")
	errNotJSONObject = errors.New("request body is not a JSON object")
)

// decodeCreateUserRequest decodes a JSON object body. Non-JSON media types,
// empty bodies, malformed JSON and non-object values are all rejected.
func decodeCreateUserRequest(r *http.Request) (*dto.CreateUserRequest, error) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		return nil, errNotJSONMedia
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errEmptyBody
	}
	if raw[0] != '{' {
		return nil, errNotJSONObject
	}

	var req dto.CreateUserRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// isJSONContentType accepts application/json and application/*+json.
func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
