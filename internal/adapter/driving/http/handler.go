package httphandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/peerportal/internal/adapter/driving/sessioncookie"
	"github.com/ericfisherdev/peerportal/internal/application"
	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	stores   driven.SessionStores
	verifier driven.IdentityVerifier
	cookies  sessioncookie.Manager
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	stores driven.SessionStores,
	verifier driven.IdentityVerifier,
	cookies sessioncookie.Manager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		stores:   stores,
		verifier: verifier,
		cookies:  cookies,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with the API routes and any routes added
// by register, wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger, register ...func(mux *http.ServeMux)) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/session", h.Session)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	for _, fn := range register {
		fn(mux)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Session runs the access check for the caller's session. The roles query
// parameter is a comma-separated allow-list; absent or empty admits any role.
// A redirect answers 401 with the login target and never the reason.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	id, ok := h.cookies.Peek(r)
	if !ok {
		h.logger.Info("access redirected", "reason", model.ReasonUnauthenticated, "path", r.URL.Path)
		writeJSON(w, http.StatusUnauthorized, newRedirectResponse(model.LoginPath))
		return
	}

	guard := application.NewAccessGuard(h.stores.ForSession(id), h.verifier, h.logger.With("path", r.URL.Path))
	decision := guard.CheckAccess(r.Context(), parseRoles(r.URL.Query().Get("roles")))
	if decision.Redirect {
		writeJSON(w, http.StatusUnauthorized, newRedirectResponse(decision.Target))
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(guard.Snapshot(r.Context())))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// parseRoles splits a comma-separated role list, dropping blanks.
func parseRoles(raw string) []model.Role {
	var roles []model.Role
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roles = append(roles, model.Role(part))
		}
	}
	return roles
}
