// Package redis implements the credential store ports on Redis. Each session
// is one hash, so a merge is a single HSET and a clear is a single DEL.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SessionStores   = (*Stores)(nil)
	_ driven.CredentialStore = (*SessionCredentials)(nil)
)

// Stores hands out Redis-backed credential stores under a key prefix.
type Stores struct {
	client goredis.UniversalClient
	prefix string
}

// NewStores creates Stores on client. Keys are "<prefix>:session:<id>".
func NewStores(client goredis.UniversalClient, prefix string) *Stores {
	if prefix == "" {
		prefix = "peerportal"
	}
	return &Stores{client: client, prefix: prefix}
}

// Ping checks that Redis is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// ForSession returns the CredentialStore scoped to sessionID.
func (s *Stores) ForSession(sessionID string) driven.CredentialStore {
	return &SessionCredentials{
		client: s.client,
		key:    s.prefix + ":session:" + sessionID,
	}
}

// SessionCredentials is the CredentialStore of a single session.
type SessionCredentials struct {
	client goredis.UniversalClient
	key    string
}

// Read returns the session's snapshot. A missing hash reads as empty.
func (s *SessionCredentials) Read(ctx context.Context) (model.CredentialSnapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return model.CredentialSnapshot{}, fmt.Errorf("read session %q: %w", s.key, err)
	}
	return model.SnapshotFromFields(fields), nil
}

// Write merges the supplied fields with one HSET.
func (s *SessionCredentials) Write(ctx context.Context, update model.CredentialUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, 2*len(fields))
	for field, value := range fields {
		args = append(args, field, value)
	}
	if err := s.client.HSet(ctx, s.key, args...).Err(); err != nil {
		return fmt.Errorf("write session %q: %w", s.key, err)
	}
	return nil
}

// Clear deletes the session's hash.
func (s *SessionCredentials) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session %q: %w", s.key, err)
	}
	return nil
}
