package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// LoginService exchanges login credentials with the backend and caches the
// issued credential in the session's store. It never issues tokens itself.
type LoginService struct {
	auth   driven.Authenticator
	logger *slog.Logger
}

// NewLoginService creates a LoginService with the required dependencies.
func NewLoginService(auth driven.Authenticator, logger *slog.Logger) *LoginService {
	return &LoginService{auth: auth, logger: logger}
}

// Login authenticates req and overwrites store with the issued credential.
// It returns the page to continue to: the backend's next_path when it names a
// page of the signed-in role, the role's home page otherwise. Rejected credentials return
// driven.ErrInvalidCredential and leave store untouched.
func (s *LoginService) Login(ctx context.Context, store driven.CredentialStore, req model.LoginRequest) (string, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.Role == "" || req.UserID == "" || req.Password == "" {
		return "", fmt.Errorf("login %q: %w", req.UserID, driven.ErrInvalidCredential)
	}

	res, err := s.auth.Login(ctx, req)
	if err != nil {
		return "", fmt.Errorf("login %q: %w", req.UserID, err)
	}

	// Drop whatever an earlier session left before caching the new one.
	if err := store.Clear(ctx); err != nil {
		return "", fmt.Errorf("clear previous session: %w", err)
	}
	if err := store.Write(ctx, model.LoginUpdate(res)); err != nil {
		return "", fmt.Errorf("cache credential for %q: %w", res.UserID, err)
	}

	s.logger.Info("login succeeded", "role", res.Role, "user_id", res.UserID)

	// The backend still answers with the static-site paths ("/student/index.html").
	next := strings.TrimSuffix(res.NextPath, ".html")
	if slices.Contains(PageRoles(next), res.Role) {
		return next, nil
	}
	return HomePath(res.Role), nil
}
