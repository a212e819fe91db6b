package model

import "time"

// SessionRecord is the server-held session row, keyed by the opaque id the
// client carries (signed) in its cookie. The identity fields follow the
// all-or-nothing rule: either UserID, Name, Email are set and LoggedIn is
// true, or all four are zero. The session package enforces that shape;
// this struct is just the persisted form.
//
// Flashes are one-request-lifetime notices: written on one request,
// consumed (and removed) by the next render.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	LoggedIn  bool      `json:"isLoggedIn"`
	Flashes   []string  `json:"flashes"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record's idle lifetime has elapsed.
func (r *SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
