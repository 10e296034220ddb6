package application

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// AccessGuard gates entry to a protected view for one session. It reads the
// cached snapshot, enforces the allowed roles, revalidates the credential
// with the backend and keeps the cached identity in line with the backend.
type AccessGuard struct {
	store    driven.CredentialStore
	verifier driven.IdentityVerifier
	logger   *slog.Logger
}

// NewAccessGuard creates an AccessGuard over the session's store.
func NewAccessGuard(store driven.CredentialStore, verifier driven.IdentityVerifier, logger *slog.Logger) *AccessGuard {
	return &AccessGuard{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

// CheckAccess decides whether the session may view a page restricted to
// allowedRoles. An empty allowedRoles admits any authenticated role.
//
// Order: local snapshot, role membership, remote verification. A confirmed
// invalid credential or a denied role clears the store; a transport fault
// leaves it untouched but still redirects.
func (g *AccessGuard) CheckAccess(ctx context.Context, allowedRoles []model.Role) model.Decision {
	snap, err := g.store.Read(ctx)
	if err != nil {
		g.logger.Error("failed to read credential snapshot", "error", err)
		return g.redirect(model.ReasonUnauthenticated)
	}

	if !snap.Authenticated() {
		return g.redirect(model.ReasonUnauthenticated)
	}

	if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, snap.Role) {
		g.clear(ctx)
		return g.redirect(model.ReasonRoleDenied, "role", snap.Role, "user_id", snap.UserID)
	}

	identity, err := g.verifier.Verify(ctx, snap.TokenType, snap.Token)
	if errors.Is(err, driven.ErrInvalidCredential) {
		g.clear(ctx)
		return g.redirect(model.ReasonInvalidToken, "user_id", snap.UserID)
	}
	if err != nil {
		g.logger.Warn("identity verification unavailable", "user_id", snap.UserID, "error", err)
		return g.redirect(model.ReasonVerificationUnavailable)
	}

	// A failed refresh of display fields does not revoke a credential the
	// backend just confirmed.
	if err := g.store.Write(ctx, model.IdentityUpdate(identity)); err != nil {
		g.logger.Error("failed to refresh cached identity", "user_id", identity.UserID, "error", err)
	}

	g.logger.Debug("access granted", "role", identity.Role, "user_id", identity.UserID)
	return model.Proceed()
}

// Logout clears the session's snapshot and redirects to the login view. It
// makes no remote call.
func (g *AccessGuard) Logout(ctx context.Context) model.Decision {
	g.clear(ctx)
	return g.redirect(model.ReasonLoggedOut)
}

// Snapshot returns the current cached snapshot for rendering. Callers must not
// keep it beyond the request.
func (g *AccessGuard) Snapshot(ctx context.Context) model.CredentialSnapshot {
	snap, err := g.store.Read(ctx)
	if err != nil {
		g.logger.Error("failed to read credential snapshot", "error", err)
		return model.CredentialSnapshot{TokenType: model.DefaultTokenType}
	}
	return snap
}

func (g *AccessGuard) clear(ctx context.Context) {
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Error("failed to clear credential snapshot", "error", err)
	}
}

func (g *AccessGuard) redirect(reason model.RedirectReason, attrs ...any) model.Decision {
	g.logger.Info("access redirected", append([]any{"reason", reason}, attrs...)...)
	return model.RedirectTo(reason)
}
