package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/usersvc/usersvc/internal/model"
	"github.com/usersvc/usersvc/internal/service"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData is rendered by templates/index.html.
type pageData struct {
	Users    []*model.User
	Message  string
	Username string
	Email    string
}

// PageHandler serves the HTML user page.
type PageHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(svc *service.UserService, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		svc:    svc,
		logger: logger,
	}
}

// Index handles GET /.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageData{})
}

// Submit handles POST / with username and email form fields.
// Success redirects back to the page so a reload does not resubmit.
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, pageData{Message: MsgInvalidPayload})
		return
	}

	input := service.CreateUserInput{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
	}

	user, err := h.svc.CreateUser(r.Context(), input)
	if err != nil {
		status, message := classifyServiceError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("internal_error", "error", err)
		}
		h.render(w, r, status, pageData{
			Message:  message,
			Username: input.Username,
			Email:    input.Email,
		})
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"username", user.Username,
		"source", "form",
	)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		http.Error(w, MsgInternalError, http.StatusInternalServerError)
		return
	}
	data.Users = users

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("template_render_failed", "error", err)
		http.Error(w, MsgInternalError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
