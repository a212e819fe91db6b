package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/model"
)

// In-memory secret and comment repositories; the real ones live in
// repository/sqlite. Secrets are kept in insertion order and listed in
// reverse to match the newest-first contract.

type memSecretRepo struct {
	secrets map[string]*model.Secret
	order   []string
	nextID  int
}

func newMemSecretRepo() *memSecretRepo {
	return &memSecretRepo{secrets: make(map[string]*model.Secret)}
}

func (m *memSecretRepo) Create(_ context.Context, secret *model.Secret) error {
	m.nextID++
	secret.ID = fmt.Sprintf("secret-%d", m.nextID)
	secret.CommentIDs = []string{}
	stored := *secret
	m.secrets[secret.ID] = &stored
	m.order = append(m.order, secret.ID)
	return nil
}

func (m *memSecretRepo) GetByID(_ context.Context, id string) (*model.Secret, error) {
	s, ok := m.secrets[id]
	if !ok {
		return nil, apperror.NotFound("secret", id)
	}
	result := *s
	result.CommentIDs = slices.Clone(s.CommentIDs)
	return &result, nil
}

func (m *memSecretRepo) List(_ context.Context) ([]model.Secret, error) {
	result := make([]model.Secret, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		result = append(result, *m.secrets[m.order[i]])
	}
	return result, nil
}

func (m *memSecretRepo) AppendComment(_ context.Context, secretID, commentID string) error {
	s, ok := m.secrets[secretID]
	if !ok {
		return apperror.NotFound("secret", secretID)
	}
	if !slices.Contains(s.CommentIDs, commentID) {
		s.CommentIDs = append(s.CommentIDs, commentID)
	}
	return nil
}

func (m *memSecretRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.secrets[id]; !ok {
		return apperror.NotFound("secret", id)
	}
	delete(m.secrets, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

type memCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *memCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *memCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *c
	return &result, nil
}

func (m *memCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

func newTestSecretService() (*SecretService, *memSecretRepo, *memCommentRepo, *memUserRepo) {
	secrets := newMemSecretRepo()
	comments := newMemCommentRepo()
	users := newMemUserRepo()
	svc := NewSecretService(secrets, comments, users, testLogger())
	return svc, secrets, comments, users
}

func seedUser(t *testing.T, users *memUserRepo) *model.User {
	t.Helper()
	user := &model.User{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

// =========================================================================
// POST / LIST
// =========================================================================

func TestPost(t *testing.T) {
	svc, _, _, users := newTestSecretService()
	user := seedUser(t, users)

	secret, err := svc.Post(context.Background(), user.ID, "Ann", "  my secret  ")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if secret.Content != "my secret" {
		t.Errorf("Content = %q, want trimmed", secret.Content)
	}
	if len(secret.CommentIDs) != 0 {
		t.Errorf("new secret CommentIDs = %v, want empty", secret.CommentIDs)
	}
}

func TestPost_Invalid(t *testing.T) {
	svc, _, _, _ := newTestSecretService()

	tests := []struct {
		name       string
		userID     string
		authorName string
		content    string
		wantField  string
	}{
		{"blank content", "u1", "Ann", "   ", "content"},
		{"no author", "", "", "hello", "author"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Post(context.Background(), tt.userID, tt.authorName, tt.content)
			var verr *apperror.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Post() error = %v, want ValidationError", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("ValidationError fields = %v, want %q", verr.Fields, tt.wantField)
			}
		})
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc, _, _, users := newTestSecretService()
	user := seedUser(t, users)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		if _, err := svc.Post(ctx, user.ID, "Ann", content); err != nil {
			t.Fatalf("Post(%q) error = %v", content, err)
		}
	}

	secrets, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(secrets) != 3 || secrets[0].Content != "third" || secrets[2].Content != "first" {
		t.Errorf("List() order wrong: %+v", secrets)
	}
}

// =========================================================================
// COMMENTS
// =========================================================================

func TestAddComment(t *testing.T) {
	svc, secrets, _, users := newTestSecretService()
	user := seedUser(t, users)
	ctx := context.Background()

	secret, err := svc.Post(ctx, user.ID, "Ann", "hello")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	comment, err := svc.AddComment(ctx, secret.ID, user.ID, "Ann", "nice one")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	// One successful call grows the parent's list by exactly one.
	got, _ := secrets.GetByID(ctx, secret.ID)
	if len(got.CommentIDs) != 1 || got.CommentIDs[0] != comment.ID {
		t.Errorf("CommentIDs = %v, want [%s]", got.CommentIDs, comment.ID)
	}
}

func TestAddComment_MissingSecret(t *testing.T) {
	svc, _, comments, users := newTestSecretService()
	user := seedUser(t, users)

	_, err := svc.AddComment(context.Background(), "missing", user.ID, "Ann", "hello")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("AddComment() error = %v, want ErrNotFound", err)
	}
	if len(comments.comments) != 0 {
		t.Error("comment row created despite missing parent")
	}
}

func TestAddComment_Invalid(t *testing.T) {
	svc, _, _, users := newTestSecretService()
	user := seedUser(t, users)
	ctx := context.Background()

	secret, err := svc.Post(ctx, user.ID, "Ann", "hello")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	_, err = svc.AddComment(ctx, secret.ID, user.ID, "Ann", "  ")
	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("AddComment() error = %v, want ValidationError", err)
	}
	if verr.Fields["content"] != "Comment must have content" {
		t.Errorf("content message = %q", verr.Fields["content"])
	}
}

// =========================================================================
// VIEW
// =========================================================================

func TestView(t *testing.T) {
	svc, _, _, users := newTestSecretService()
	user := seedUser(t, users)
	ctx := context.Background()

	secret, err := svc.Post(ctx, user.ID, "Ann", "hello")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	c1, err := svc.AddComment(ctx, secret.ID, user.ID, "Ann", "one")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	c2, err := svc.AddComment(ctx, secret.ID, user.ID, "Ann", "two")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	view, err := svc.View(ctx, secret.ID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.Author == nil || view.Author.ID != user.ID {
		t.Errorf("View().Author = %+v, want user %s", view.Author, user.ID)
	}
	if len(view.Comments) != 2 || view.Comments[0].ID != c1.ID || view.Comments[1].ID != c2.ID {
		t.Errorf("View().Comments = %+v, want [%s %s] in order", view.Comments, c1.ID, c2.ID)
	}
}

func TestView_NotFound(t *testing.T) {
	svc, _, _, _ := newTestSecretService()

	_, err := svc.View(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("View() error = %v, want ErrNotFound", err)
	}
}

func TestView_MissingAuthorDegrades(t *testing.T) {
	svc, _, _, users := newTestSecretService()
	user := seedUser(t, users)
	ctx := context.Background()

	secret, err := svc.Post(ctx, user.ID, "Ann", "hello")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	delete(users.users, user.ID)

	view, err := svc.View(ctx, secret.ID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.Author != nil {
		t.Errorf("View().Author = %+v, want nil for a deleted account", view.Author)
	}
}

func TestDeleteComment_LeavesRefFilteredAtRead(t *testing.T) {
	// Deleting a comment leaves its id dangling in the parent's list; the
	// view filters it out so readers never see the hole.
	svc, secrets, _, users := newTestSecretService()
	user := seedUser(t, users)
	ctx := context.Background()

	secret, err := svc.Post(ctx, user.ID, "Ann", "hello")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	keep, err := svc.AddComment(ctx, secret.ID, user.ID, "Ann", "keep me")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	doomed, err := svc.AddComment(ctx, secret.ID, user.ID, "Ann", "delete me")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	if err := svc.DeleteComment(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteComment() error = %v", err)
	}

	// The raw reference list still holds both ids...
	raw, _ := secrets.GetByID(ctx, secret.ID)
	if len(raw.CommentIDs) != 2 {
		t.Errorf("CommentIDs = %v, want the dangling ref kept", raw.CommentIDs)
	}

	// ...but the view shows only the live comment.
	view, err := svc.View(ctx, secret.ID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if len(view.Comments) != 1 || view.Comments[0].ID != keep.ID {
		t.Errorf("View().Comments = %+v, want only %s", view.Comments, keep.ID)
	}
}

// =========================================================================
// DELETE
// =========================================================================

func TestDeleteSecret_Idempotent(t *testing.T) {
	svc, _, _, users := newTestSecretService()
	user := seedUser(t, users)
	ctx := context.Background()

	secret, err := svc.Post(ctx, user.ID, "Ann", "hello")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	if err := svc.Delete(ctx, secret.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Second delete: already gone is the requested outcome.
	if err := svc.Delete(ctx, secret.ID); err != nil {
		t.Errorf("repeat Delete() error = %v, want nil", err)
	}
}

func TestDeleteComment_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestSecretService()

	if err := svc.DeleteComment(context.Background(), "never-existed"); err != nil {
		t.Errorf("DeleteComment() of missing comment error = %v, want nil", err)
	}
}
