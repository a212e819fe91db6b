package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/model"
)

func TestSessionSaveGetDelete(t *testing.T) {
	s := newTestDB(t).Sessions()

	record := &model.SessionRecord{
		ID:        "sess-1",
		UserID:    "user-1",
		Name:      "Ann",
		Email:     "ann@x.com",
		LoggedIn:  true,
		Flashes:   []string{"welcome back"},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	if err := s.Save(context.Background(), record); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "user-1" || got.Name != "Ann" || got.Email != "ann@x.com" || !got.LoggedIn {
		t.Errorf("Get() = %+v, identity fields wrong", got)
	}
	if len(got.Flashes) != 1 || got.Flashes[0] != "welcome back" {
		t.Errorf("Flashes = %v", got.Flashes)
	}

	if err := s.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(context.Background(), "sess-1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSessionSave_Upsert(t *testing.T) {
	s := newTestDB(t).Sessions()

	record := &model.SessionRecord{
		ID:        "sess-1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := s.Save(context.Background(), record); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Second save overwrites in place — repeated logins just rewrite the
	// identity fields.
	record.UserID = "user-1"
	record.Name = "Ann"
	record.Email = "ann@x.com"
	record.LoggedIn = true
	if err := s.Save(context.Background(), record); err != nil {
		t.Fatalf("Save() upsert error = %v", err)
	}

	got, err := s.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.LoggedIn || got.UserID != "user-1" {
		t.Errorf("Get() after upsert = %+v", got)
	}
}

func TestSessionDelete_MissingIsOK(t *testing.T) {
	s := newTestDB(t).Sessions()

	if err := s.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Delete() of missing session error = %v, want nil", err)
	}
}

func TestSessionRecordExpired(t *testing.T) {
	now := time.Now()

	live := &model.SessionRecord{ExpiresAt: now.Add(time.Minute)}
	if live.Expired(now) {
		t.Error("Expired() = true for a live record")
	}

	dead := &model.SessionRecord{ExpiresAt: now.Add(-time.Minute)}
	if !dead.Expired(now) {
		t.Error("Expired() = false for an expired record")
	}
}
