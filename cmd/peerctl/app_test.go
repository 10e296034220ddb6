package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ericfisherdev/peerportal/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/peerportal/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

type stubBackend struct {
	id       model.Identity
	loginRes model.LoginResult
	err      error
}

func (s *stubBackend) Verify(_ context.Context, _, _ string) (model.Identity, error) {
	return s.id, s.err
}

func (s *stubBackend) Login(_ context.Context, _ model.LoginRequest) (model.LoginResult, error) {
	return s.loginRes, s.err
}

type stubAdmin struct {
	sessions []sqliteadapter.SessionInfo
	cutoff   time.Time
}

func (s *stubAdmin) List(_ context.Context) ([]sqliteadapter.SessionInfo, error) {
	return s.sessions, nil
}

func (s *stubAdmin) PurgeIdle(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return 3, nil
}

func newTestDeps(backend *stubBackend) (*deps, *memory.Stores, *bytes.Buffer) {
	stores := memory.NewStores()
	out := &bytes.Buffer{}
	return &deps{
		stores:   stores,
		sessions: &stubAdmin{},
		verifier: backend,
		auth:     backend,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:      out,
	}, stores, out
}

func runApp(d *deps, args ...string) error {
	return newApp(d).RunContext(context.Background(), append([]string{"peerctl"}, args...))
}

func TestLoginThenWhoami(t *testing.T) {
	backend := &stubBackend{
		id: model.Identity{Role: model.RoleStudent, UserID: "s001", DisplayName: "Amy"},
		loginRes: model.LoginResult{
			Identity:    model.Identity{Role: model.RoleStudent, UserID: "s001", DisplayName: "Amy"},
			AccessToken: "tok",
			TokenType:   "bearer",
		},
	}
	d, stores, out := newTestDeps(backend)

	require.NoError(t, runApp(d, "login", "--role", "student", "--user", "s001", "--password", "pw"))
	assert.Contains(t, out.String(), "continue at /student/index")

	snap, err := stores.ForSession("cli:default").Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", snap.Token)

	out.Reset()
	require.NoError(t, runApp(d, "whoami", "--allow", "student,teacher"))
	assert.Contains(t, out.String(), "學生｜Amy (s001)")
	assert.Contains(t, out.String(), "/student/peer")
}

func TestWhoami_RedirectExitsNonZero(t *testing.T) {
	d, stores, _ := newTestDeps(&stubBackend{err: driven.ErrInvalidCredential})
	token, role, user := "tok", model.RoleTeacher, "t001"
	require.NoError(t, stores.ForSession("cli:work").Write(context.Background(),
		model.CredentialUpdate{Token: &token, Role: &role, UserID: &user}))

	err := runApp(d, "--profile", "work", "whoami")

	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, err.Error(), "redirect(invalid-token)")

	snap, readErr := stores.ForSession("cli:work").Read(context.Background())
	require.NoError(t, readErr)
	assert.False(t, snap.Authenticated())
}

func TestLogin_Rejected(t *testing.T) {
	d, _, _ := newTestDeps(&stubBackend{err: driven.ErrInvalidCredential})

	err := runApp(d, "login", "--role", "student", "--user", "s001", "--password", "bad")

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, err.Error(), "login rejected")
}

func TestNav(t *testing.T) {
	d, _, out := newTestDeps(&stubBackend{})

	require.NoError(t, runApp(d, "nav", "--role", "master"))

	for _, want := range []string{"/master/index", "HR首頁", "/master/summary", "/master/analyze", "/master/match"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestUnknownRoleRejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "nav", args: []string{"nav", "--role", "admin"}},
		{name: "whoami allow list", args: []string{"whoami", "--allow", "student,admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, out := newTestDeps(&stubBackend{})

			err := runApp(d, tt.args...)

			require.Error(t, err)
			assert.Equal(t, 2, exitCode(err))
			assert.Contains(t, err.Error(), `unknown role "admin"`)
			assert.Empty(t, out.String())
		})
	}
}

func TestLogout(t *testing.T) {
	d, stores, out := newTestDeps(&stubBackend{})
	token := "tok"
	require.NoError(t, stores.ForSession("cli:default").Write(context.Background(), model.CredentialUpdate{Token: &token}))

	require.NoError(t, runApp(d, "logout"))

	assert.Contains(t, out.String(), "signed out")
	assert.Equal(t, 0, stores.Len())
}

func TestSessionsAndPurge(t *testing.T) {
	d, _, out := newTestDeps(&stubBackend{})
	admin := &stubAdmin{sessions: []sqliteadapter.SessionInfo{
		{SessionID: "cli:default", Role: model.RoleMaster, UserID: "m001", HasToken: true, UpdatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
	}}
	d.sessions = admin

	require.NoError(t, runApp(d, "sessions"))
	assert.Contains(t, out.String(), "cli:default")
	assert.Contains(t, out.String(), "2026-03-01T08:00:00Z")

	out.Reset()
	require.NoError(t, runApp(d, "purge", "--idle", "1h"))
	assert.Contains(t, out.String(), "purged 3 rows")
	assert.WithinDuration(t, time.Now().Add(-time.Hour), admin.cutoff, time.Minute)
}
