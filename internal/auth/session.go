// Package auth tracks whether the user entered the app, either signed in
// with a remembered identifier or as a guest.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pocketbook/internal/credentials"
	"pocketbook/internal/log"
)

// UserIDKey is the credential key holding the signed-in user identifier.
const UserIDKey = "user_identifier"

var ErrEmptyUserID = errors.New("user id is empty")

// State is a snapshot of the session.
type State struct {
	Authenticated bool   `json:"authenticated"`
	Guest         bool   `json:"guest"`
	UserID        string `json:"user_id,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	creds  credentials.Store
	logger *log.Logger

	mu    sync.RWMutex
	state State
}

// NewSession restores a remembered user from creds. A read failure is
// logged and leaves the session signed out.
func NewSession(ctx context.Context, creds credentials.Store, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Session{creds: creds, logger: logger.WithComponent(log.ComponentAuth)}

	id, found, err := creds.Read(UserIDKey)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "Restore session failed", log.FieldError, err)
	case found && id != "":
		s.state = State{Authenticated: true, UserID: id}
		s.logger.InfoContext(ctx, "Session restored")
	}
	return s
}

// SignIn remembers userID and marks the session authenticated. The stored
// identifier and the in-memory state change together.
func (s *Session) SignIn(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrEmptyUserID
	}
	s.mu.Lock()
	if err := s.creds.Save(UserIDKey, userID); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remember user: %w", err)
	}
	s.state = State{Authenticated: true, UserID: userID}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Signed in", log.FieldOperation, log.OpSignIn)
	return nil
}

// ContinueWithoutSignIn enters the app without an identifier. Nothing is
// persisted, so the next start is signed out again.
func (s *Session) ContinueWithoutSignIn(ctx context.Context) {
	s.mu.Lock()
	s.state = State{Authenticated: true, Guest: true}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Continuing as guest", log.FieldOperation, log.OpSignIn)
}

// SignOut forgets the identifier. The in-memory state is cleared even if
// the credential store fails.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{}
	err := s.creds.Delete(UserIDKey)
	s.mu.Unlock()

	if err != nil {
		s.logger.WarnContext(ctx, "Forget user failed", log.FieldError, err)
		return fmt.Errorf("forget user: %w", err)
	}
	s.logger.InfoContext(ctx, "Signed out", log.FieldOperation, log.OpSignOut)
	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
