// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/sakif/dojo-secrets/internal/apperror"
)

// MinNameLength is the minimum length for first and last names.
const MinNameLength = 3

// MinPasswordLength is the minimum length for a plaintext password.
const MinPasswordLength = 8

// User represents a registered account.
//
// PASSWORD FIELD — PLAINTEXT OR DIGEST:
// Password holds the plaintext only transiently, between SetPassword and
// the hashing step just before persisting. At rest it is always a bcrypt
// digest. PasswordModified is the "has this field changed since load"
// flag: hashing happens exactly when it is true, and a save with the flag
// false must leave the stored digest untouched. Re-hashing an
// already-hashed value would make every later verification fail, which is
// why the flag exists at all.
type User struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	DateOfBirth time.Time `json:"dateOfBirth"`

	// Password is the bcrypt digest at rest; see the type comment.
	Password string `json:"-"`
	// PasswordModified is true while Password holds unhashed plaintext.
	// Never persisted.
	PasswordModified bool `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetPassword stores a new plaintext password and marks the field modified
// so the next save hashes it exactly once.
func (u *User) SetPassword(plaintext string) {
	u.Password = plaintext
	u.PasswordModified = true
}

// DisplayName is the name shown next to secrets and comments the user
// authors. The original app displays the first name only.
func (u *User) DisplayName() string {
	return u.FirstName
}

// Validate checks every declared field rule and returns a
// *apperror.ValidationError keyed by field name, or nil if the user is
// valid. The password complexity rule applies only while the field holds
// plaintext (PasswordModified) — a stored digest would never satisfy it.
func (u *User) Validate() error {
	fields := map[string]string{}

	if name := strings.TrimSpace(u.FirstName); name == "" {
		fields["first_name"] = "First name is required"
	} else if len(name) < MinNameLength {
		fields["first_name"] = "First name must be at least three characters"
	}

	if name := strings.TrimSpace(u.LastName); name == "" {
		fields["last_name"] = "Last name is required"
	} else if len(name) < MinNameLength {
		fields["last_name"] = "Last name must be at least three characters"
	}

	if u.Email == "" {
		fields["email"] = "Please enter an email address"
	} else if !validEmail(u.Email) {
		fields["email"] = "Please enter a valid email"
	}

	if u.DateOfBirth.IsZero() {
		fields["date_of_birth"] = "Please enter date of birth"
	}

	if u.PasswordModified {
		if u.Password == "" {
			fields["password"] = "Please enter a password"
		} else if !validPassword(u.Password) {
			fields["password"] = "Password requirements: at least one number, uppercase and special character and be at least 8 characters long"
		}
	}

	if len(fields) > 0 {
		return &apperror.ValidationError{Fields: fields}
	}
	return nil
}

// validEmail reports whether s is a syntactically valid address. ParseAddress
// accepts the "Name <addr>" form too, so require the bare address back.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// validPassword enforces the complexity rule: at least MinPasswordLength
// characters with a lowercase letter, an uppercase letter, a digit, and a
// special (non-alphanumeric) character.
func validPassword(s string) bool {
	if len(s) < MinPasswordLength {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}
