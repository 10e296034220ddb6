package driven

import (
	"context"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
)

// CredentialStore defines the driven port for the cached credential snapshot
// of a single session. Write and Clear are each atomic with respect to Read.
type CredentialStore interface {
	// Read returns the current snapshot. Missing fields are empty strings;
	// an empty store is not an error.
	Read(ctx context.Context) (model.CredentialSnapshot, error)

	// Write merges the non-nil fields of update into the snapshot.
	Write(ctx context.Context, update model.CredentialUpdate) error

	// Clear destroys the whole snapshot.
	Clear(ctx context.Context) error
}

// SessionStores hands out the CredentialStore scoped to one browser session
// or CLI profile.
type SessionStores interface {
	ForSession(sessionID string) CredentialStore
}
