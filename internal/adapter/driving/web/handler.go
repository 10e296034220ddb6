// Package web implements the HTML driving adapter: role-guarded pages with
// the portal layout, login and logout.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ericfisherdev/peerportal/internal/adapter/driving/sessioncookie"
	"github.com/ericfisherdev/peerportal/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/peerportal/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/peerportal/internal/application"
	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

const (
	msgBadLogin    = "帳號或密碼錯誤"
	msgUnavailable = "登入服務暫時無法使用，請稍後再試"
)

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	stores     driven.SessionStores
	verifier   driven.IdentityVerifier
	loginSvc   *application.LoginService
	cookies    sessioncookie.Manager
	noticeHTML string
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. notice is
// markdown shown above every page; empty disables it.
func NewHandler(
	stores driven.SessionStores,
	verifier driven.IdentityVerifier,
	loginSvc *application.LoginService,
	cookies sessioncookie.Manager,
	notice string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		stores:     stores,
		verifier:   verifier,
		loginSvc:   loginSvc,
		cookies:    cookies,
		noticeHTML: RenderMarkdown(notice),
		logger:     logger,
	}
}

// RequireRoles runs the access guard for the request's session before next.
// An empty roles list admits any authenticated role. On redirect the browser
// is sent to the login page; the reason is only logged.
func (h *Handler) RequireRoles(roles []model.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.cookies.Peek(r)
		if !ok {
			h.logger.Info("access redirected", "reason", model.ReasonUnauthenticated, "path", r.URL.Path)
			http.Redirect(w, r, model.LoginPath, http.StatusSeeOther)
			return
		}

		logger := h.logger.With("path", r.URL.Path)
		guard := application.NewAccessGuard(h.stores.ForSession(id), h.verifier, logger)
		if decision := guard.CheckAccess(r.Context(), roles); decision.Redirect {
			http.Redirect(w, r, decision.Target, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(sessioncookie.WithID(r.Context(), id)))
	})
}

// Page renders a protected page inside the layout. It must be wrapped by
// RequireRoles, which places the session id on the context.
func (h *Handler) Page(title string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessioncookie.IDFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, model.LoginPath, http.StatusSeeOther)
			return
		}

		snap, err := h.stores.ForSession(id).Read(r.Context())
		if err != nil {
			h.logger.Error("failed to read session", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		data := toLayoutViewModel(snap, title, r.URL.Path, csrfToken(w, r, h.cookies.Secure), h.noticeHTML)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Layout(data, pages.Page(r.URL.Path)).Render(r.Context(), w); err != nil {
			h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	})
}

// Home sends the browser to its role's home page, or to the login page when
// the session holds no credential. The target page runs the full check.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	target := model.LoginPath
	if id, ok := h.cookies.Peek(r); ok {
		snap, err := h.stores.ForSession(id).Read(r.Context())
		if err != nil {
			h.logger.Warn("failed to read session", "error", err)
		} else if snap.Authenticated() {
			target = application.HomePath(snap.Role)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// LoginForm renders the login page. The role query parameter preselects a role.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	role := model.Role(r.URL.Query().Get("role"))
	h.renderLogin(w, r, http.StatusOK, role, "", "")
}

// Login posts the form to the backend and, on success, redirects to the
// signed-in role's page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	req := model.LoginRequest{
		Role:     model.Role(r.PostFormValue("role")),
		UserID:   strings.TrimSpace(r.PostFormValue("user_id")),
		Password: r.PostFormValue("password"),
	}

	// The credential goes under a fresh id; the id the browser arrived with
	// is never promoted to an authenticated session.
	id := sessioncookie.NewID()
	next, err := h.loginSvc.Login(r.Context(), h.stores.ForSession(id), req)
	if err != nil {
		if errors.Is(err, driven.ErrInvalidCredential) {
			h.logger.Info("login rejected", "role", req.Role, "user_id", req.UserID)
			h.renderLogin(w, r, http.StatusUnauthorized, req.Role, req.UserID, msgBadLogin)
			return
		}
		h.logger.Error("login failed", "role", req.Role, "user_id", req.UserID, "error", err)
		h.renderLogin(w, r, http.StatusServiceUnavailable, req.Role, req.UserID, msgUnavailable)
		return
	}

	if prev, ok := h.cookies.Peek(r); ok {
		if err := h.stores.ForSession(prev).Clear(r.Context()); err != nil {
			h.logger.Warn("failed to clear previous session", "error", err)
		}
	}
	h.cookies.Set(w, id)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout clears the session's credential and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	target := model.LoginPath
	if id, ok := h.cookies.Peek(r); ok {
		guard := application.NewAccessGuard(h.stores.ForSession(id), h.verifier, h.logger)
		target = guard.Logout(r.Context()).Target
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, role model.Role, userID, errMsg string) {
	data := toLoginViewModel(role, userID, errMsg, csrfToken(w, r, h.cookies.Secure), h.noticeHTML)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.Login(data).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render login", "error", err)
	}
}
