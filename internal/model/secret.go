package model

import (
	"strings"
	"time"

	"github.com/sakif/dojo-secrets/internal/apperror"
)

// Secret is a short anonymous-ish message other users can comment on.
//
// AuthorName is denormalized from the posting user's display name so the
// list view renders without a join. UserID is the owning back-reference.
// CommentIDs is an ordered list of Comment references in insertion order;
// the referenced comments are resolved ("populated") only on the
// single-secret view, and ids whose comment no longer exists are filtered
// out there rather than scrubbed from this list on delete.
type Secret struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	UserID     string    `json:"userId"`
	Content    string    `json:"content"`
	CommentIDs []string  `json:"commentIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate returns field-keyed messages for an invalid secret, or nil.
// The author reference comes from the session, so a missing one means the
// caller skipped the authentication check rather than a user mistake.
func (s *Secret) Validate() error {
	fields := map[string]string{}

	if s.UserID == "" || strings.TrimSpace(s.AuthorName) == "" {
		fields["author"] = "User must have a name"
	}
	if strings.TrimSpace(s.Content) == "" {
		fields["content"] = "Message must have content"
	}

	if len(fields) > 0 {
		return &apperror.ValidationError{Fields: fields}
	}
	return nil
}
