// Package sessioncookie binds a browser to its credential store through an
// opaque session id cookie. The cookie carries no credential material.
package sessioncookie

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Manager sets and reads the session id cookie.
type Manager struct {
	Name   string
	Secure bool
}

// New creates a Manager for the cookie name. secure should be true when the
// portal is served over HTTPS.
func New(name string, secure bool) Manager {
	return Manager{Name: name, Secure: secure}
}

// Peek returns the session id carried by r, if it holds a well-formed one.
func (m Manager) Peek(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// Set writes the session id cookie on w, replacing whatever id the browser
// held. Sign-in sets a fresh id so an id known before authentication never
// reaches a credential.
func (m Manager) Set(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.Secure,
	})
}

type contextKey struct{}

// WithID stores the session id on the request context.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext retrieves the session id placed by WithID.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
