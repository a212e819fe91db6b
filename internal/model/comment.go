package model

import (
	"strings"
	"time"

	"github.com/sakif/dojo-secrets/internal/apperror"
)

// Comment is attached to a single Secret. SecretID is the parent
// reference; the parent additionally holds this comment's id in its
// CommentIDs list (written as a second step after the comment itself).
type Comment struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	UserID     string    `json:"userId"`
	SecretID   string    `json:"secretId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate returns field-keyed messages for an invalid comment, or nil.
func (c *Comment) Validate() error {
	fields := map[string]string{}

	if c.UserID == "" || strings.TrimSpace(c.AuthorName) == "" {
		fields["author"] = "User must have a name"
	}
	if strings.TrimSpace(c.Content) == "" {
		fields["content"] = "Comment must have content"
	}
	if c.SecretID == "" {
		fields["secret"] = "Comment must belong to a secret"
	}

	if len(fields) > 0 {
		return &apperror.ValidationError{Fields: fields}
	}
	return nil
}
