package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
)

// --- Mock implementations ---

// mockCredentialStore keeps the snapshot as persisted key/value pairs so
// merges behave like the real adapters.
type mockCredentialStore struct {
	mu       sync.Mutex
	fields   map[string]string
	readErr  error
	writeErr error
	clearErr error
	writes   int
	clears   int
}

func newMockStore(snap model.CredentialSnapshot) *mockCredentialStore {
	s := &mockCredentialStore{fields: map[string]string{}}
	if snap != (model.CredentialSnapshot{}) {
		s.fields[model.KeyTokenType] = snap.TokenType
		s.fields[model.KeyAccessToken] = snap.Token
		s.fields[model.KeyRole] = string(snap.Role)
		s.fields[model.KeyUserID] = snap.UserID
		s.fields[model.KeyDisplayName] = snap.DisplayName
	}
	return s
}

func (m *mockCredentialStore) Read(_ context.Context) (model.CredentialSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return model.CredentialSnapshot{}, m.readErr
	}
	return model.SnapshotFromFields(m.fields), nil
}

func (m *mockCredentialStore) Write(_ context.Context, update model.CredentialUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	for k, v := range update.Fields() {
		m.fields[k] = v
	}
	return nil
}

func (m *mockCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.fields = map[string]string{}
	return nil
}

func (m *mockCredentialStore) empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fields) == 0
}

type verifyCall struct {
	TokenType string
	Token     string
}

type mockVerifier struct {
	identity model.Identity
	err      error
	calls    []verifyCall
}

func (m *mockVerifier) Verify(_ context.Context, tokenType, token string) (model.Identity, error) {
	m.calls = append(m.calls, verifyCall{TokenType: tokenType, Token: token})
	if m.err != nil {
		return model.Identity{}, m.err
	}
	return m.identity, nil
}

type mockAuthenticator struct {
	result model.LoginResult
	err    error
	got    model.LoginRequest
}

func (m *mockAuthenticator) Login(_ context.Context, req model.LoginRequest) (model.LoginResult, error) {
	m.got = req
	return m.result, m.err
}

var errBoom = errors.New("boom")
