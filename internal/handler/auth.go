package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/service"
	"github.com/sakif/dojo-secrets/internal/session"
)

// dateLayout is the format the registration form's date input submits.
const dateLayout = "2006-01-02"

// AuthHandler serves the landing page and the register/login/logout
// flows.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
	renderer *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, sessions *session.Manager, renderer *Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleHome serves the landing page with its login and register forms.
// A visitor who is already logged in is sent straight to the secrets
// list.
func (h *AuthHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if sess.LoggedIn() {
		http.Redirect(w, r, "/secrets", http.StatusFound)
		return
	}

	flashes := sess.PopFlashes()
	if sess.Dirty() {
		// Clearing the flashes is a session write; persist it before the
		// body so the cookie header isn't lost.
		if err := h.sessions.Save(r.Context(), w, sess); err != nil {
			h.logger.Error("failed to save session", slog.String("error", err.Error()))
		}
	}

	h.renderer.Render(w, http.StatusOK, "index", pageData{
		Title:   "Dojo Secrets",
		Flashes: flashes,
	})
}

// HandleRegister processes the registration form.
//
// Validation failures turn into one flash message per failing field and a
// redirect back to the form. Success logs the new account in and lands on
// the secrets list.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Could not read the form")
		return
	}

	in := service.RegisterInput{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
	}
	// An unparseable date stays zero and fails validation with the same
	// message as a missing one.
	if raw := r.PostFormValue("date_of_birth"); raw != "" {
		if dob, err := time.Parse(dateLayout, raw); err == nil {
			in.DateOfBirth = dob
		}
	}

	sess, _ := session.FromContext(r.Context())

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		var verr *apperror.ValidationError
		if errors.As(err, &verr) {
			for _, msg := range verr.Messages() {
				sess.AddFlash(msg)
			}
			if err := h.sessions.Save(r.Context(), w, sess); err != nil {
				h.logger.Error("failed to save session", slog.String("error", err.Error()))
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	sess.Login(session.Identity{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Email:  user.Email,
	})
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Error("failed to save session", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// HandleLogin processes the login form. A failed attempt re-renders the
// landing page with the single generic message — never a hint about
// which half of the pair was wrong.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Could not read the form")
		return
	}

	sess, _ := session.FromContext(r.Context())

	user, err := h.auth.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, apperror.ErrAuth) {
			h.renderer.Render(w, http.StatusOK, "index", pageData{
				Title:   "Dojo Secrets",
				Flashes: []string{err.Error()},
			})
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	sess.Login(session.Identity{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Email:  user.Email,
	})
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Error("failed to save session", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// HandleLogout destroys the whole session — identity, flashes, the
// record itself — and expires the cookie. The next request starts from
// nothing.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if err := h.sessions.Destroy(r.Context(), w, sess); err != nil {
		h.logger.Error("failed to destroy session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
