package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/model"
	"github.com/sakif/dojo-secrets/internal/repository"
)

// SecretService handles posting, listing, viewing, and deleting secrets
// and their comments.
type SecretService struct {
	secrets  repository.SecretRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewSecretService creates a SecretService.
func NewSecretService(secrets repository.SecretRepository, comments repository.CommentRepository, users repository.UserRepository, logger *slog.Logger) *SecretService {
	return &SecretService{
		secrets:  secrets,
		comments: comments,
		users:    users,
		logger:   logger,
	}
}

// SecretView is a secret with its references resolved for the detail
// page: the author record and the comments themselves rather than ids.
type SecretView struct {
	Secret   *model.Secret
	Author   *model.User
	Comments []model.Comment
}

// Post validates and stores a new secret. Author identity comes from the
// session, not the form.
func (s *SecretService) Post(ctx context.Context, userID, authorName, content string) (*model.Secret, error) {
	secret := &model.Secret{
		AuthorName: strings.TrimSpace(authorName),
		UserID:     userID,
		Content:    strings.TrimSpace(content),
	}

	if err := secret.Validate(); err != nil {
		return nil, err
	}

	if err := s.secrets.Create(ctx, secret); err != nil {
		s.logger.Error("failed to create secret",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating secret: %w", err)
	}

	s.logger.Info("secret posted", slog.String("id", secret.ID))
	return secret, nil
}

// List returns all secrets, newest first.
func (s *SecretService) List(ctx context.Context) ([]model.Secret, error) {
	secrets, err := s.secrets.List(ctx)
	if err != nil {
		s.logger.Error("failed to list secrets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	return secrets, nil
}

// View resolves a single secret for the detail page: the author account
// and every comment the reference list points at.
//
// The reference list may contain ids of comments that were deleted later
// (deleting a comment never rewrites its parent). Those danglers are
// filtered out here, at read time, so the page shows only live comments.
// A deleted author likewise degrades to a nil Author rather than failing
// the whole view.
func (s *SecretService) View(ctx context.Context, id string) (*SecretView, error) {
	secret, err := s.secrets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &SecretView{Secret: secret}

	author, err := s.users.GetByID(ctx, secret.UserID)
	switch {
	case err == nil:
		view.Author = author
	case errors.Is(err, apperror.ErrNotFound):
		// Account deleted after posting; render without it.
	default:
		return nil, fmt.Errorf("resolving author: %w", err)
	}

	view.Comments = make([]model.Comment, 0, len(secret.CommentIDs))
	for _, cid := range secret.CommentIDs {
		comment, err := s.comments.GetByID(ctx, cid)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving comment %s: %w", cid, err)
		}
		view.Comments = append(view.Comments, *comment)
	}

	return view, nil
}

// Delete removes a secret. Its comments keep their rows; only the parent
// goes away. Deleting a secret that is already gone is not an error —
// the outcome the caller asked for holds either way.
func (s *SecretService) Delete(ctx context.Context, id string) error {
	if err := s.secrets.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to delete secret",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting secret: %w", err)
	}

	s.logger.Info("secret deleted", slog.String("id", id))
	return nil
}

// AddComment validates and stores a comment, then links it to its parent.
//
// This is two writes, not one transaction: first the comment row, then
// the parent's reference list. If the second write fails the comment
// exists but is unreferenced — invisible, and harmless to the invariant
// that a successful call grows the parent's list by exactly one.
func (s *SecretService) AddComment(ctx context.Context, secretID, userID, authorName, content string) (*model.Comment, error) {
	comment := &model.Comment{
		AuthorName: strings.TrimSpace(authorName),
		UserID:     userID,
		SecretID:   secretID,
		Content:    strings.TrimSpace(content),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	// The parent must exist before we write anything.
	if _, err := s.secrets.GetByID(ctx, secretID); err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("secretID", secretID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	if err := s.secrets.AppendComment(ctx, secretID, comment.ID); err != nil {
		s.logger.Error("failed to link comment to secret",
			slog.String("secretID", secretID),
			slog.String("commentID", comment.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("linking comment: %w", err)
	}

	s.logger.Info("comment added",
		slog.String("id", comment.ID),
		slog.String("secretID", secretID),
	)
	return comment, nil
}

// DeleteComment removes a comment row. The parent secret's reference
// list is left alone — the dangling id is filtered out by View. Deleting
// a comment that is already gone is not an error.
func (s *SecretService) DeleteComment(ctx context.Context, id string) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to delete comment",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted", slog.String("id", id))
	return nil
}
