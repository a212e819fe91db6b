// Package session implements the server-held session: an opaque record
// keyed by an id the client carries in a signed cookie.
//
// The design deliberately avoids four independently-nullable identity
// fields. A Session is either Anonymous (nil identity) or Authenticated
// (a complete Identity value) — there is no way to construct a partially
// populated state. Handlers mutate the Session value threaded through the
// request context and write it back explicitly with Manager.Save, so
// every state change is a single atomic record write.
package session

import (
	"time"

	"github.com/sakif/dojo-secrets/internal/model"
)

// Identity is the authenticated user's session-visible fields. The
// logged-in flag of the record shape is implied by an Identity being
// present at all.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// Session is the in-memory working copy of one request's session state.
// It tracks whether it has been modified so unchanged anonymous sessions
// are never persisted (no row, no cookie — an uninitialized session
// leaves no trace).
type Session struct {
	id        string
	identity  *Identity
	flashes   []string
	createdAt time.Time

	dirty     bool // modified since load; needs a Save
	persisted bool // a record exists in the store
	destroyed bool // Destroy ran; must not be saved again
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// LoggedIn reports whether the session is Authenticated.
func (s *Session) LoggedIn() bool { return s.identity != nil }

// Identity returns the authenticated identity, or ok=false for an
// anonymous session.
func (s *Session) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Login transitions the session to Authenticated. Repeated logins simply
// overwrite the identity fields.
func (s *Session) Login(id Identity) {
	s.identity = &id
	s.dirty = true
}

// AddFlash queues a one-request-lifetime notice for the next render.
func (s *Session) AddFlash(message string) {
	s.flashes = append(s.flashes, message)
	s.dirty = true
}

// PopFlashes returns the queued notices and clears them. The clear is a
// modification — the caller must Save so a refresh doesn't replay them.
func (s *Session) PopFlashes() []string {
	if len(s.flashes) == 0 {
		return nil
	}
	out := s.flashes
	s.flashes = nil
	s.dirty = true
	return out
}

// Dirty reports whether the session has unsaved modifications.
func (s *Session) Dirty() bool { return s.dirty }

// record converts the session to its persisted shape, enforcing the
// all-or-nothing identity rule at the boundary.
func (s *Session) record(expiresAt time.Time) *model.SessionRecord {
	r := &model.SessionRecord{
		ID:        s.id,
		Flashes:   s.flashes,
		CreatedAt: s.createdAt,
		ExpiresAt: expiresAt,
	}
	if s.identity != nil {
		r.UserID = s.identity.UserID
		r.Name = s.identity.Name
		r.Email = s.identity.Email
		r.LoggedIn = true
	}
	return r
}

// fromRecord rebuilds a working session from a stored record. The
// identity is reconstructed only when the record is fully logged in;
// anything less collapses to Anonymous.
func fromRecord(r *model.SessionRecord) *Session {
	s := &Session{
		id:        r.ID,
		flashes:   r.Flashes,
		createdAt: r.CreatedAt,
		persisted: true,
	}
	if r.LoggedIn && r.UserID != "" {
		s.identity = &Identity{UserID: r.UserID, Name: r.Name, Email: r.Email}
	}
	return s
}
