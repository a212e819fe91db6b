// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
//
// Each repository is an explicit object constructed once at startup and
// handed down through the composition root — there is no global registry
// to resolve a collection by name.
package repository

import (
	"context"

	"github.com/sakif/dojo-secrets/internal/model"
)

// UserRepository persists registered accounts. Create returns
// apperror.ErrConflict when the email is already taken; lookups return
// apperror.ErrNotFound for missing rows.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// SecretRepository persists secrets. List returns all secrets newest
// first. AppendComment is the second write of comment creation: it adds
// commentID to the secret's reference list, keeping the list free of
// duplicates.
type SecretRepository interface {
	Create(ctx context.Context, secret *model.Secret) error
	GetByID(ctx context.Context, id string) (*model.Secret, error)
	List(ctx context.Context) ([]model.Secret, error)
	AppendComment(ctx context.Context, secretID, commentID string) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository persists comments. Deleting a comment does not touch
// the parent secret's reference list; see the single-secret view for how
// dangling references are handled.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
}

// SessionRepository persists server-held session records. Save upserts:
// the first save of a fresh session inserts, later saves overwrite.
// Get does not filter expired records — the session manager checks
// expiry so the policy lives in one place.
type SessionRepository interface {
	Save(ctx context.Context, record *model.SessionRecord) error
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}
