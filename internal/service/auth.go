// Package service contains the business logic layer of the application.
//
// The layering mirrors the request path:
//
//	Handler (HTTP layer)     → parses forms, writes redirects and pages
//	Service (Business layer) → validates, hashes, orchestrates repositories
//	Repository (Data layer)  → reads/writes the database
//
// Services accept primitives and model values, never *http.Request, and
// return domain errors (apperror) — the handler translates those into
// status codes, flash messages, and redirects.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/auth"
	"github.com/sakif/dojo-secrets/internal/model"
	"github.com/sakif/dojo-secrets/internal/repository"
)

// AuthService handles registration, login, and profile updates.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput is the registration form, already parsed out of HTTP.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	DateOfBirth time.Time
	Password    string
}

// Register creates a new account.
//
// The pipeline is: build the user → validate every field rule → check the
// email isn't taken → hash the password → persist. Validation runs on the
// plaintext (the complexity rule would never pass on a digest), and the
// digest replaces the plaintext before anything touches the database.
//
// Failures come back as *apperror.ValidationError keyed by field, ready
// to become flash messages.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	user := &model.User{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       strings.TrimSpace(strings.ToLower(in.Email)),
		DateOfBirth: in.DateOfBirth,
	}
	user.SetPassword(in.Password)

	if err := user.Validate(); err != nil {
		return nil, err
	}

	// Friendly duplicate check before the expensive hash. The UNIQUE
	// constraint below still backstops the race.
	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return nil, apperror.Invalid("email", "Email already exists in database")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	digest, err := s.passwords.Hash(user.Password)
	if err != nil {
		return nil, apperror.Invalid("password", "Password could not be processed")
	}
	user.Password = digest
	user.PasswordModified = false

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Invalid("email", "Email already exists in database")
		}
		s.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies an email/password pair and returns the account.
//
// Unknown email and wrong password both return the same
// apperror.InvalidCredentials — the response never reveals which half
// failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		s.logger.Error("failed to look up user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.passwords.Verify(user.Password, password) {
		return nil, apperror.InvalidCredentials()
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return user, nil
}

// UpdateUser saves changes to an account, hashing the password only when
// it actually changed. A user loaded from the database carries its digest
// with PasswordModified false; saving it again must not re-hash — a
// double-hashed digest would fail every later login.
func (s *AuthService) UpdateUser(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	if user.PasswordModified {
		digest, err := s.passwords.Hash(user.Password)
		if err != nil {
			return apperror.Invalid("password", "Password could not be processed")
		}
		user.Password = digest
		user.PasswordModified = false
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			slog.String("id", user.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}
