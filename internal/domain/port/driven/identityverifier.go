package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
)

// ErrInvalidCredential is returned when the backend rejects a credential
// (any non-success response).
var ErrInvalidCredential = errors.New("credential rejected by identity service")

// ErrVerifierUnavailable wraps transport faults: unreachable backend, timeout,
// malformed response.
var ErrVerifierUnavailable = errors.New("identity service unavailable")

// IdentityVerifier defines the driven port for revalidating a cached
// credential against the authoritative backend.
type IdentityVerifier interface {
	// Verify returns the backend's identity for the credential.
	// Returns ErrInvalidCredential when the credential is rejected; any other
	// error is a transport fault.
	Verify(ctx context.Context, tokenType, token string) (model.Identity, error)
}

// Authenticator defines the driven port for exchanging login credentials for
// an access token issued by the backend.
type Authenticator interface {
	// Login returns ErrInvalidCredential when the backend rejects the login.
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error)
}
