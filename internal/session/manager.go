package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/dojo-secrets/internal/auth"
	"github.com/sakif/dojo-secrets/internal/repository"
)

// CookieName is the cookie holding the signed session id.
const CookieName = "dojo_session"

// DefaultIdleLifetime is how long a session survives without a write.
// Both the cookie token's expiry and the record's expires_at enforce it,
// so an expired session dies before we even hit the store.
const DefaultIdleLifetime = 30 * time.Minute

// Manager loads, saves, and destroys sessions. It owns the cookie
// handling: Load never fails — a missing, tampered, or expired cookie
// simply yields a fresh anonymous session.
type Manager struct {
	store    repository.SessionRepository
	tokens   *auth.TokenService
	lifetime time.Duration
	logger   *slog.Logger
}

// NewManager creates a Manager with the default idle lifetime.
func NewManager(store repository.SessionRepository, tokens *auth.TokenService, logger *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		tokens:   tokens,
		lifetime: DefaultIdleLifetime,
		logger:   logger,
	}
}

// NewManagerWithLifetime is used by tests that need short expiries.
func NewManagerWithLifetime(store repository.SessionRepository, tokens *auth.TokenService, lifetime time.Duration, logger *slog.Logger) *Manager {
	m := NewManager(store, tokens, logger)
	m.lifetime = lifetime
	return m
}

// Load resolves the request's session. The chain is: cookie → token
// signature and expiry → stored record → record expiry. Any broken link
// means a brand-new anonymous session (with a fresh id), which is only
// persisted if the request actually modifies it.
func (m *Manager) Load(ctx context.Context, r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return m.fresh()
	}

	sid, err := m.tokens.Validate(cookie.Value)
	if err != nil {
		// Tampered or expired cookie — not worth more than a debug line.
		m.logger.Debug("session cookie rejected", slog.String("error", err.Error()))
		return m.fresh()
	}

	record, err := m.store.Get(ctx, sid)
	if err != nil {
		return m.fresh()
	}
	if record.Expired(time.Now()) {
		// Lazy cleanup: the row is dead, remove it on the way past.
		if err := m.store.Delete(ctx, sid); err != nil {
			m.logger.Warn("failed to delete expired session",
				slog.String("sessionID", sid),
				slog.String("error", err.Error()),
			)
		}
		return m.fresh()
	}

	return fromRecord(record)
}

// Save persists the session and refreshes the cookie. This is the single
// write-back point: handlers mutate the Session value, then call Save
// once, before writing the response body.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.destroyed {
		return nil
	}

	expiresAt := time.Now().Add(m.lifetime)
	if err := m.store.Save(ctx, s.record(expiresAt)); err != nil {
		return err
	}
	s.dirty = false
	s.persisted = true

	signed, err := m.tokens.Issue(s.id, m.lifetime)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(signed, int(m.lifetime.Seconds())))
	return nil
}

// Destroy deletes the whole session record and expires the cookie. The
// next request finds nothing and gets a fresh id — indistinguishable
// from a visitor who was never here.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.destroyed = true
	if err := m.store.Delete(ctx, s.id); err != nil {
		return err
	}
	http.SetCookie(w, m.cookie("", -1))
	return nil
}

func (m *Manager) fresh() *Session {
	return &Session{
		id:        xid.New().String(),
		createdAt: time.Now(),
	}
}

// cookie builds the session cookie. HttpOnly keeps it away from
// JavaScript; SameSite=Lax keeps it off cross-site POSTs. Secure is left
// to the deployment's TLS terminator.
func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// contextKey is unexported so only this package can place or read the
// session in a request context.
type contextKey string

const sessionKey contextKey = "session"

// Middleware resolves the session for every request and stores it in the
// request context. Persisting any changes is the handlers' job (via
// Save/Destroy) so that cookie writes happen before the response body.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r.Context(), r)
		ctx := context.WithValue(r.Context(), sessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext retrieves the request's session. Only valid under
// Middleware; the second return is false otherwise.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
