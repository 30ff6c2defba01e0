package store

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"etalase/internal/models"
	"etalase/internal/remote"
	"etalase/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// AuthAPI is the part of the inventory API the session store talks to.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	// CurrentUser returns nil without error when there is no session.
	CurrentUser(ctx context.Context) (*models.Identity, error)
}

type credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// SessionStore holds the authenticated identity. It is the only place the
// identity is ever changed.
type SessionStore struct {
	api      AuthAPI
	validate *validator.Validate

	mu       sync.RWMutex
	identity *models.Identity
	// generation is bumped by every login and logout so a session probe that
	// lands afterwards is discarded.
	generation uint64

	initOnce sync.Once
	initErr  error
}

// NewSessionStore creates a SessionStore with no identity.
func NewSessionStore(api AuthAPI) *SessionStore {
	return &SessionStore{
		api:      api,
		validate: validator.New(),
	}
}

// Initialize probes the API for an existing session and adopts its identity.
// Only the first call does any work; later calls return the first result.
// Callers run it in a goroutine so it never delays the first render.
// The probe only finds a session when the transport already carries one,
// such as a long-lived client or an injected transport.
func (s *SessionStore) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.probe(ctx)
	})
	return s.initErr
}

func (s *SessionStore) probe(ctx context.Context) error {
	log := logger.Get()

	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	me, err := s.api.CurrentUser(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("session probe failed")
		return &FetchError{Op: "probe session", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		log.Debug().Msg("session probe superseded, dropping result")
		return nil
	}
	if me != nil {
		identity := *me
		s.identity = &identity
		log.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("resumed session")
	}
	return nil
}

// Login authenticates and then loads the identity from the API. The role is
// never taken from the login response.
func (s *SessionStore) Login(ctx context.Context, username, password string) (models.Identity, error) {
	log := logger.Get()

	if err := s.validate.Struct(credentials{Username: username, Password: password}); err != nil {
		return models.Identity{}, validationError(err)
	}

	if err := s.api.Login(ctx, username, password); err != nil {
		var se *remote.StatusError
		if !errors.As(err, &se) || !rejectsCredentials(se.StatusCode) {
			return models.Identity{}, &FetchError{Op: "login", Err: err}
		}
		log.Info().Str("username", username).Int("status", se.StatusCode).Msg("login rejected")
		return models.Identity{}, &AuthError{Username: username, Reason: ErrInvalidCredentials, Cause: err}
	}

	me, err := s.api.CurrentUser(ctx)
	if err != nil || me == nil {
		log.Warn().Str("username", username).Err(err).Msg("login succeeded but identity is unavailable")
		return models.Identity{}, &AuthError{Username: username, Reason: ErrProfileUnavailable, Cause: err}
	}

	identity := *me
	s.mu.Lock()
	s.identity = &identity
	s.generation++
	s.mu.Unlock()

	log.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("logged in")
	return identity, nil
}

// rejectsCredentials reports whether a login status means the username or
// password was refused, as opposed to the API failing.
func rejectsCredentials(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// Logout ends the session. The identity is only cleared once the API has
// confirmed; on failure it is kept and a FetchError returned so the caller can
// retry.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return &FetchError{Op: "logout", Err: err}
	}

	s.mu.Lock()
	s.identity = nil
	s.generation++
	s.mu.Unlock()
	return nil
}

// Current returns the active identity, if any.
func (s *SessionStore) Current() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}
