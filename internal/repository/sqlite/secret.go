package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/model"
	"github.com/sakif/dojo-secrets/internal/repository"
)

// SecretDB implements repository.SecretRepository over the shared pool.
type SecretDB struct {
	conn *sql.DB
}

var _ repository.SecretRepository = (*SecretDB)(nil)

// Create inserts a new secret with an empty comment list.
func (s *SecretDB) Create(ctx context.Context, secret *model.Secret) error {
	secret.ID = xid.New().String()

	now := time.Now()
	secret.CreatedAt = now
	secret.UpdatedAt = now
	if secret.CommentIDs == nil {
		secret.CommentIDs = []string{}
	}

	refs, err := json.Marshal(secret.CommentIDs)
	if err != nil {
		return fmt.Errorf("sqlite: encoding comment refs: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO secrets (id, author_name, user_id, content, comment_ids, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		secret.ID,
		secret.AuthorName,
		secret.UserID,
		secret.Content,
		string(refs),
		secret.CreatedAt,
		secret.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating secret: %w", err)
	}

	return nil
}

// GetByID retrieves a single secret, comment reference list included.
func (s *SecretDB) GetByID(ctx context.Context, id string) (*model.Secret, error) {
	var (
		secret model.Secret
		refs   string
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, author_name, user_id, content, comment_ids, created_at, updated_at
		 FROM secrets
		 WHERE id = ?`,
		id,
	).Scan(
		&secret.ID,
		&secret.AuthorName,
		&secret.UserID,
		&secret.Content,
		&refs,
		&secret.CreatedAt,
		&secret.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("secret", id)
		}
		return nil, fmt.Errorf("sqlite: getting secret %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(refs), &secret.CommentIDs); err != nil {
		return nil, fmt.Errorf("sqlite: decoding comment refs for secret %s: %w", id, err)
	}

	return &secret, nil
}

// List returns every secret, newest first. The id tiebreak keeps the
// order deterministic for rows created in the same instant (xid ids are
// themselves time-ordered).
func (s *SecretDB) List(ctx context.Context) ([]model.Secret, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, author_name, user_id, content, comment_ids, created_at, updated_at
		 FROM secrets
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing secrets: %w", err)
	}
	defer rows.Close()

	secrets := []model.Secret{}

	for rows.Next() {
		var (
			sec  model.Secret
			refs string
		)
		if err := rows.Scan(
			&sec.ID, &sec.AuthorName, &sec.UserID, &sec.Content, &refs,
			&sec.CreatedAt, &sec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning secret row: %w", err)
		}
		if err := json.Unmarshal([]byte(refs), &sec.CommentIDs); err != nil {
			return nil, fmt.Errorf("sqlite: decoding comment refs for secret %s: %w", sec.ID, err)
		}
		secrets = append(secrets, sec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating secrets: %w", err)
	}

	return secrets, nil
}

// AppendComment adds commentID to the secret's reference list.
//
// This is step (b) of the two-write comment creation: the comment row
// already exists when this runs. The read-modify-write is not wrapped in
// a transaction with step (a) — a crash between the two leaves an
// unlinked comment, which is accepted. The append itself guards against
// duplicates so a retried link never produces a double reference.
func (s *SecretDB) AppendComment(ctx context.Context, secretID, commentID string) error {
	secret, err := s.GetByID(ctx, secretID)
	if err != nil {
		return err
	}

	if slices.Contains(secret.CommentIDs, commentID) {
		return nil
	}

	refs, err := json.Marshal(append(secret.CommentIDs, commentID))
	if err != nil {
		return fmt.Errorf("sqlite: encoding comment refs: %w", err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE secrets SET comment_ids = ?, updated_at = ? WHERE id = ?`,
		string(refs),
		time.Now(),
		secretID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking comment %s to secret %s: %w", commentID, secretID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("secret", secretID)
	}

	return nil
}

// Delete removes a secret by id. Zero rows affected means it wasn't
// there — callers that want idempotent deletes swallow the NotFound.
func (s *SecretDB) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM secrets WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting secret %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("secret", id)
	}

	return nil
}
