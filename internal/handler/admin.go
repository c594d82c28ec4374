package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tressure/backend/internal/handler/dto"
	"github.com/tressure/backend/internal/middleware"
)

// resetTimeout is longer than storeTimeout because the reset waits for
// in-flight submissions to release the submit lock.
const resetTimeout = 15 * time.Second

// Resetter drops and recreates the submissions table.
type Resetter interface {
	Reset(ctx context.Context) (string, error)
}

// AdminHandler provides admin-only endpoints. Routes using it must be
// mounted behind middleware.RequireAdmin.
type AdminHandler struct {
	resetter Resetter
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(resetter Resetter, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		resetter: resetter,
		logger:   logger,
	}
}

// InitDB handles /init-db: drops the submissions table and recreates it.
func (h *AdminHandler) InitDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), resetTimeout)
	defer cancel()

	requestID := middleware.GetRequestID(r.Context())

	resetID, err := h.resetter.Reset(ctx)
	if err != nil {
		h.logger.Error("failed to initialize database",
			"error", err,
			"request_id", requestID,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error: "+err.Error())
		return
	}

	h.logger.Warn("database_initialized",
		"reset_id", resetID,
		"remote_addr", r.RemoteAddr,
		"request_id", requestID,
	)

	writeJSON(w, http.StatusOK, dto.ResetResponse{
		Message: "Database initialized successfully.",
		ResetID: resetID,
	})
}
