package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/dojo-secrets/internal/apperror"
	"github.com/sakif/dojo-secrets/internal/service"
	"github.com/sakif/dojo-secrets/internal/session"
)

// SecretHandler serves the secrets list, the single-secret view, and the
// write operations on secrets and comments.
type SecretHandler struct {
	secrets  *service.SecretService
	sessions *session.Manager
	renderer *Renderer
	logger   *slog.Logger
}

// NewSecretHandler creates a SecretHandler.
func NewSecretHandler(secrets *service.SecretService, sessions *session.Manager, renderer *Renderer, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secrets:  secrets,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// requireLogin returns the authenticated identity, or redirects to the
// landing page and reports false. Reads and writes under /secrets are
// members-only.
func (h *SecretHandler) requireLogin(w http.ResponseWriter, r *http.Request) (*session.Session, session.Identity, bool) {
	sess, _ := session.FromContext(r.Context())
	id, ok := sess.Identity()
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil, session.Identity{}, false
	}
	return sess, id, true
}

// HandleList serves the secrets wall, newest first.
func (h *SecretHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	flashes := sess.PopFlashes()
	if sess.Dirty() {
		if err := h.sessions.Save(r.Context(), w, sess); err != nil {
			h.logger.Error("failed to save session", slog.String("error", err.Error()))
		}
	}

	secrets, err := h.secrets.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list secrets", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	h.renderer.Render(w, http.StatusOK, "secrets", pageData{
		Title:    "Secrets",
		LoggedIn: true,
		UserName: id.Name,
		Flashes:  flashes,
		Data:     secrets,
	})
}

// HandleCreate posts a new secret. The author fields come from the
// session, never the form.
func (h *SecretHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.requireLogin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Could not read the form")
		return
	}

	_, err := h.secrets.Post(r.Context(), id.UserID, id.Name, r.PostFormValue("content"))
	if err != nil {
		var verr *apperror.ValidationError
		if errors.As(err, &verr) {
			for _, msg := range verr.Messages() {
				sess.AddFlash(msg)
			}
			if err := h.sessions.Save(r.Context(), w, sess); err != nil {
				h.logger.Error("failed to save session", slog.String("error", err.Error()))
			}
			http.Redirect(w, r, "/secrets", http.StatusSeeOther)
			return
		}
		h.logger.Error("failed to post secret", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// HandleView serves one secret with its author and live comments.
func (h *SecretHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	flashes := sess.PopFlashes()
	if sess.Dirty() {
		if err := h.sessions.Save(r.Context(), w, sess); err != nil {
			h.logger.Error("failed to save session", slog.String("error", err.Error()))
		}
	}

	view, err := h.secrets.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.renderer.RenderError(w, http.StatusNotFound, "That secret does not exist")
			return
		}
		h.logger.Error("failed to load secret", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	h.renderer.Render(w, http.StatusOK, "secret", pageData{
		Title:    "Secret",
		LoggedIn: true,
		UserName: id.Name,
		Flashes:  flashes,
		Data:     view,
	})
}

// HandleAddComment attaches a comment to the secret in the path and
// returns to that secret's page.
func (h *SecretHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.requireLogin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Could not read the form")
		return
	}

	secretID := chi.URLParam(r, "id")
	_, err := h.secrets.AddComment(r.Context(), secretID, id.UserID, id.Name, r.PostFormValue("content"))
	if err != nil {
		var verr *apperror.ValidationError
		switch {
		case errors.As(err, &verr):
			for _, msg := range verr.Messages() {
				sess.AddFlash(msg)
			}
			if err := h.sessions.Save(r.Context(), w, sess); err != nil {
				h.logger.Error("failed to save session", slog.String("error", err.Error()))
			}
			http.Redirect(w, r, "/secrets/"+secretID, http.StatusSeeOther)
		case errors.Is(err, apperror.ErrNotFound):
			h.renderer.RenderError(w, http.StatusNotFound, "That secret does not exist")
		default:
			h.logger.Error("failed to add comment", slog.String("error", err.Error()))
			h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		}
		return
	}

	http.Redirect(w, r, "/secrets/"+secretID, http.StatusSeeOther)
}

// HandleDeleteSecret removes a secret and returns to the list. Deleting
// a secret that is already gone still redirects — the state the caller
// asked for holds.
func (h *SecretHandler) HandleDeleteSecret(w http.ResponseWriter, r *http.Request) {
	if err := h.secrets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("failed to delete secret", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// HandleDeleteComment removes a comment row. The parent keeps its
// reference; the single-secret view filters the dangler out. The form
// may carry the parent's id so the redirect can land back on its page.
func (h *SecretHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Could not read the form")
		return
	}

	if err := h.secrets.DeleteComment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("failed to delete comment", slog.String("error", err.Error()))
		h.renderer.RenderError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	target := "/secrets"
	if sid := r.PostFormValue("secret_id"); sid != "" {
		target = "/secrets/" + sid
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
