package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/model"
	"github.com/sakif/dojo-secrets/internal/repository"
)

// CommentDB implements repository.CommentRepository over the shared pool.
type CommentDB struct {
	conn *sql.DB
}

var _ repository.CommentRepository = (*CommentDB)(nil)

// Create inserts a new comment row. Linking it into the parent secret's
// reference list is a separate write (SecretDB.AppendComment).
func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO comments (id, author_name, user_id, secret_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.AuthorName,
		comment.UserID,
		comment.SecretID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// GetByID retrieves a single comment.
// Returns apperror.ErrNotFound if no comment exists with that id —
// which is how the single-secret view detects a dangling reference.
func (c *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment

	err := c.conn.QueryRowContext(ctx,
		`SELECT id, author_name, user_id, secret_id, content, created_at, updated_at
		 FROM comments
		 WHERE id = ?`,
		id,
	).Scan(
		&comment.ID,
		&comment.AuthorName,
		&comment.UserID,
		&comment.SecretID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return &comment, nil
}

// Delete removes a comment row. The parent secret's reference list is
// left alone, so the id dangles there until filtered at read time.
func (c *CommentDB) Delete(ctx context.Context, id string) error {
	result, err := c.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
