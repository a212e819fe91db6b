package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/model"
	"github.com/sakif/dojo-secrets/internal/repository"
)

// SessionDB implements repository.SessionRepository over the shared pool.
type SessionDB struct {
	conn *sql.DB
}

var _ repository.SessionRepository = (*SessionDB)(nil)

// Save upserts a session record. The session manager generates the id,
// so INSERT OR REPLACE keyed on it is safe: the first save inserts,
// every later save overwrites the whole record in one statement.
func (s *SessionDB) Save(ctx context.Context, record *model.SessionRecord) error {
	flashes := record.Flashes
	if flashes == nil {
		flashes = []string{}
	}
	encoded, err := json.Marshal(flashes)
	if err != nil {
		return fmt.Errorf("sqlite: encoding session flashes: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, user_id, name, email, logged_in, flashes, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.Name,
		record.Email,
		record.LoggedIn,
		string(encoded),
		record.CreatedAt,
		record.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving session %s: %w", record.ID, err)
	}

	return nil
}

// Get retrieves a session record by id. Expiry is NOT checked here —
// that policy belongs to the session manager.
func (s *SessionDB) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	var (
		record  model.SessionRecord
		flashes string
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, email, logged_in, flashes, created_at, expires_at
		 FROM sessions
		 WHERE id = ?`,
		id,
	).Scan(
		&record.ID,
		&record.UserID,
		&record.Name,
		&record.Email,
		&record.LoggedIn,
		&flashes,
		&record.CreatedAt,
		&record.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(flashes), &record.Flashes); err != nil {
		return nil, fmt.Errorf("sqlite: decoding session flashes for %s: %w", id, err)
	}

	return &record, nil
}

// Delete destroys a session record. Deleting a missing record is fine —
// logout of an already-expired session must still succeed.
func (s *SessionDB) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`,
		id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	return nil
}
