package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SessionStores   = (*CredentialRepo)(nil)
	_ driven.CredentialStore = (*SessionCredentials)(nil)
)

// sqliteTimeFormat matches CURRENT_TIMESTAMP so cutoffs compare as text.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// SessionInfo summarizes one stored session for operators.
type SessionInfo struct {
	SessionID string
	Role      model.Role
	UserID    string
	HasToken  bool
	UpdatedAt time.Time
}

// CredentialRepo is the SQLite implementation of the SessionStores port. Each
// snapshot field is one row keyed by (session_id, field).
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// ForSession returns the CredentialStore scoped to sessionID.
func (r *CredentialRepo) ForSession(sessionID string) driven.CredentialStore {
	return &SessionCredentials{db: r.db, sessionID: sessionID}
}

// List returns every stored session, most recently updated first.
func (r *CredentialRepo) List(ctx context.Context) ([]SessionInfo, error) {
	const query = `
		SELECT session_id,
		       COALESCE(MAX(CASE WHEN field = 'role' THEN value END), ''),
		       COALESCE(MAX(CASE WHEN field = 'user_id' THEN value END), ''),
		       COUNT(CASE WHEN field = 'access_token' AND value <> '' THEN 1 END),
		       MAX(updated_at)
		FROM session_credentials
		GROUP BY session_id
		ORDER BY MAX(updated_at) DESC, session_id`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var role string
		var tokens int
		var updatedAt string
		if err := rows.Scan(&info.SessionID, &role, &info.UserID, &tokens, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.Role = model.Role(role)
		info.HasToken = tokens > 0

		info.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for session %q: %w", info.SessionID, err)
		}

		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// PurgeIdle deletes every session whose newest field is older than cutoff
// and returns how many rows were removed.
func (r *CredentialRepo) PurgeIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
		DELETE FROM session_credentials
		WHERE session_id IN (
			SELECT session_id FROM session_credentials
			GROUP BY session_id
			HAVING MAX(updated_at) < ?
		)`
	res, err := r.db.Writer.ExecContext(ctx, query, cutoff.UTC().Format(sqliteTimeFormat))
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions rows affected: %w", err)
	}
	return n, nil
}

// SessionCredentials is the CredentialStore of a single session.
type SessionCredentials struct {
	db        *DB
	sessionID string
}

// Read returns the session's snapshot. A session with no rows reads as empty.
func (s *SessionCredentials) Read(ctx context.Context) (model.CredentialSnapshot, error) {
	const query = `SELECT field, value FROM session_credentials WHERE session_id = ?`
	rows, err := s.db.Reader.QueryContext(ctx, query, s.sessionID)
	if err != nil {
		return model.CredentialSnapshot{}, fmt.Errorf("read session %q: %w", s.sessionID, err)
	}
	defer rows.Close()

	fields := make(map[string]string, 5)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return model.CredentialSnapshot{}, fmt.Errorf("scan session field: %w", err)
		}
		fields[field] = value
	}
	if err := rows.Err(); err != nil {
		return model.CredentialSnapshot{}, fmt.Errorf("iterate session fields: %w", err)
	}

	return model.SnapshotFromFields(fields), nil
}

// Write upserts the supplied fields in a single transaction.
func (s *SessionCredentials) Write(ctx context.Context, update model.CredentialUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}

	tx, err := s.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write session %q: %w", s.sessionID, err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO session_credentials (session_id, field, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id, field) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`
	for field, value := range fields {
		if _, err := tx.ExecContext(ctx, query, s.sessionID, field, value); err != nil {
			return fmt.Errorf("write session %q field %q: %w", s.sessionID, field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write session %q: %w", s.sessionID, err)
	}
	return nil
}

// Clear deletes every field of the session in one statement.
func (s *SessionCredentials) Clear(ctx context.Context) error {
	const query = `DELETE FROM session_credentials WHERE session_id = ?`
	if _, err := s.db.Writer.ExecContext(ctx, query, s.sessionID); err != nil {
		return fmt.Errorf("clear session %q: %w", s.sessionID, err)
	}
	return nil
}
