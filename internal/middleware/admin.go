package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tressure/backend/internal/auth"
)

// AdminTokenHeader carries the admin token.
const AdminTokenHeader = "X-Admin-Token"

// AdminConfig holds configuration for the admin gate.
type AdminConfig struct {
	Logger *slog.Logger
	// TokenHash is the argon2id PHC hash of the admin token.
	// Empty disables every admin route.
	TokenHash string
}

// RequireAdmin returns a middleware that only lets requests carrying the
// admin token through. The token is read from X-Admin-Token or from an
// "Authorization: Bearer" header.
func RequireAdmin(cfg AdminConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			endpoint := r.Method + " " + r.URL.Path

			if cfg.TokenHash == "" {
				cfg.Logger.Warn("admin request refused",
					slog.String("reason", "admin_disabled"),
					slog.String("endpoint", endpoint),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", requestID),
				)
				writeAdminError(w, http.StatusForbidden, "Admin endpoints are disabled.")
				return
			}

			token := extractAdminToken(r)
			if token == "" {
				cfg.Logger.Warn("admin authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", endpoint),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", requestID),
				)
				writeAdminError(w, http.StatusUnauthorized, "Admin token required.")
				return
			}

			ok, err := auth.VerifyToken(token, cfg.TokenHash)
			if err != nil {
				cfg.Logger.Error("admin token hash is unusable",
					slog.String("error", err.Error()),
					slog.String("request_id", requestID),
				)
				writeAdminError(w, http.StatusInternalServerError, "Internal server error: admin token misconfigured")
				return
			}
			if !ok {
				cfg.Logger.Warn("admin authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", endpoint),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", requestID),
				)
				writeAdminError(w, http.StatusUnauthorized, "Invalid admin token.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractAdminToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AdminTokenHeader)); token != "" {
		return token
	}
	authz := r.Header.Get("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "Bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

func writeAdminError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
