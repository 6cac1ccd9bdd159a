package http

import (
	"errors"
	"net/http"

	"pocketbook/internal/auth"
	"pocketbook/internal/log"
)

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State())
}

// handleSignIn remembers the identifier issued by the client's identity
// provider.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.session.SignIn(r.Context(), p.Get("user_id"))
	switch {
	case errors.Is(err, auth.ErrEmptyUserID):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Sign in failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not remember user")
		return
	}
	writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	s.session.ContinueWithoutSignIn(r.Context())
	writeJSON(w, http.StatusOK, s.session.State())
}

// handleSignOut always signs out locally; a credential store failure is
// reported but does not keep the session alive.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.session.SignOut(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "signed out, but the stored identifier could not be removed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
