package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tressure/backend/internal/handler/dto"
	"github.com/tressure/backend/internal/middleware"
	"github.com/tressure/backend/internal/model"
	"github.com/tressure/backend/internal/service"
)

// storeTimeout bounds the store work done for a single request.
const storeTimeout = 5 * time.Second

// Submissions is the service surface the handlers use.
// *service.SubmissionService satisfies it.
type Submissions interface {
	Submit(ctx context.Context, input service.SubmitInput) (*model.SubmitResult, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUser(ctx context.Context, email string) (*model.User, error)
	Winner(ctx context.Context) (*model.User, error)
	Reset(ctx context.Context) (string, error)
}

// SubmissionHandler handles HTTP requests for submissions.
type SubmissionHandler struct {
	svc    Submissions
	logger *slog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(svc Submissions, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		svc:    svc,
		logger: logger,
	}
}

// Submit handles POST /submit.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	result, err := h.svc.Submit(ctx, service.SubmitInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("submission_created",
		"is_first", result.IsFirst,
		"position", result.Position,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.ToSubmitResponse(result))
}

// List handles GET /users.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	users, err := h.svc.ListUsers(ctx)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Get handles GET /users/{email}.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	// chi matches on RawPath when the client escaped reserved characters.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(email); err == nil {
			email = unescaped
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	user, err := h.svc.GetUser(ctx, email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Winner handles GET /winner.
func (h *SubmissionHandler) Winner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	user, err := h.svc.Winner(ctx)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// handleServiceError maps service errors to HTTP responses.
func (h *SubmissionHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name and email are required.")
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "DUPLICATE_ERROR", "There is already a submission with this email.")
	case errors.Is(err, service.ErrMissingParam):
		writeError(w, http.StatusBadRequest, "MISSING_PARAM", "Email is required.")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found.")
	case errors.Is(err, service.ErrNoSubmissions):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "No submissions found.")
	default:
		h.logger.Error("internal_error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error: "+err.Error())
	}
}
