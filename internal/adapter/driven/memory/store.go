// Package memory implements the credential store ports in process memory.
// Snapshots do not survive a restart.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SessionStores   = (*Stores)(nil)
	_ driven.CredentialStore = (*CredentialStore)(nil)
)

// Stores holds the snapshots of every session behind a single mutex.
type Stores struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewStores creates an empty Stores.
func NewStores() *Stores {
	return &Stores{sessions: make(map[string]map[string]string)}
}

// ForSession returns the store scoped to sessionID.
func (s *Stores) ForSession(sessionID string) driven.CredentialStore {
	return &CredentialStore{stores: s, sessionID: sessionID}
}

// Len returns the number of sessions holding a snapshot.
func (s *Stores) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CredentialStore is one session's view of Stores.
type CredentialStore struct {
	stores    *Stores
	sessionID string
}

// Read returns a copy of the session's snapshot.
func (c *CredentialStore) Read(_ context.Context) (model.CredentialSnapshot, error) {
	c.stores.mu.RLock()
	defer c.stores.mu.RUnlock()
	return model.SnapshotFromFields(c.stores.sessions[c.sessionID]), nil
}

// Write merges update into the session's snapshot.
func (c *CredentialStore) Write(_ context.Context, update model.CredentialUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}

	c.stores.mu.Lock()
	defer c.stores.mu.Unlock()
	current, ok := c.stores.sessions[c.sessionID]
	if !ok {
		current = make(map[string]string, len(fields))
		c.stores.sessions[c.sessionID] = current
	}
	maps.Copy(current, fields)
	return nil
}

// Clear drops the session's snapshot.
func (c *CredentialStore) Clear(_ context.Context) error {
	c.stores.mu.Lock()
	defer c.stores.mu.Unlock()
	delete(c.stores.sessions, c.sessionID)
	return nil
}
