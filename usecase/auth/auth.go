// Package auth holds the session store: the authenticated identity of the
// client and its transitions.
package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	appLogger "github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/pkg/tokens"
	"github.com/fastygo/taskdesk/usecase"
)

// SignupOutcome tells a successful Signup call apart: an immediately usable
// account or one waiting for email confirmation.
type SignupOutcome int

const (
	SignupFailed SignupOutcome = iota
	SignupAuthenticated
	SignupConfirmationRequired
)

var errSigninFailed = domain.NewError(domain.ErrCodeHTTP, "Signin failed. Please try again.")

// Store holds the authenticated identity and notifies subscribers of transitions.
type Store struct {
	gw     usecase.AuthGateway
	logger *zap.Logger

	mu        sync.RWMutex
	state     domain.AuthState
	listeners []usecase.SessionListener
}

// New builds the store and restores the persisted session once.
func New(ctx context.Context, gw usecase.AuthGateway, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		gw:     gw,
		logger: logger,
		state:  domain.AuthState{Status: domain.AuthLoading},
	}
	gw.OnUnauthorized(s.handleExpired)
	s.RefreshUser(ctx)
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

// Subscribe registers l for every subsequent transition and returns the state
// current at registration.
func (s *Store) Subscribe(l usecase.SessionListener) domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
	return cloneState(s.state)
}

// RefreshUser resolves the persisted token into an identity. Failures end in
// unauthenticated without an error message.
func (s *Store) RefreshUser(ctx context.Context) {
	if !s.gw.IsAuthenticated(ctx) {
		s.setState(ctx, domain.AuthState{Status: domain.AuthUnauthenticated})
		return
	}

	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.log(ctx).Info("session restore failed", zap.Error(err))
		// a 401 already cleared the credentials
		if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			if clearErr := s.gw.ClearCredentials(ctx); clearErr != nil {
				s.log(ctx).Error("failed to clear credentials", zap.Error(clearErr))
			}
		}
		s.setState(ctx, domain.AuthState{Status: domain.AuthUnauthenticated})
		return
	}

	var session *domain.Session
	if creds, err := s.gw.Credentials(ctx); err == nil && !creds.Empty() {
		session = &domain.Session{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken}
		session.ExpiresAt, _ = tokens.ExpiresAt(creds.AccessToken)
	}
	s.setState(ctx, domain.AuthState{Status: domain.AuthAuthenticated, User: user, Session: session})
}

// Signup registers an account. A confirmation-pending signup is not an error.
func (s *Store) Signup(ctx context.Context, email, password string) (SignupOutcome, error) {
	s.setState(ctx, domain.AuthState{Status: domain.AuthLoading})

	resp, err := s.gw.Signup(ctx, email, password)
	if err != nil {
		s.setState(ctx, domain.AuthState{Status: domain.AuthError, Error: err.Error()})
		return SignupFailed, err
	}

	switch {
	case resp.Session != nil && resp.User != nil:
		s.setState(ctx, authenticated(resp.User, resp.Session))
		return SignupAuthenticated, nil
	case resp.RequiresEmailConfirmation:
		s.setState(ctx, domain.AuthState{Status: domain.AuthUnauthenticated})
		return SignupConfirmationRequired, nil
	default:
		s.setState(ctx, domain.AuthState{Status: domain.AuthError, Error: domain.ErrSignupFailed.Message})
		return SignupFailed, domain.ErrSignupFailed
	}
}

// Signin authenticates and, on failure, keeps the server message as the error state.
func (s *Store) Signin(ctx context.Context, email, password string) error {
	s.setState(ctx, domain.AuthState{Status: domain.AuthLoading})

	resp, err := s.gw.Signin(ctx, email, password)
	if err == nil && (resp.User == nil || resp.Session == nil) {
		err = errSigninFailed
	}
	if err != nil {
		s.setState(ctx, domain.AuthState{Status: domain.AuthError, Error: err.Error()})
		return err
	}

	s.setState(ctx, authenticated(resp.User, resp.Session))
	return nil
}

// Signout always ends unauthenticated; a failed backend call is only logged.
func (s *Store) Signout(ctx context.Context) error {
	s.setState(ctx, domain.AuthState{Status: domain.AuthLoading})
	if err := s.gw.Signout(ctx); err != nil {
		s.log(ctx).Warn("signout call failed", zap.Error(err))
	}
	s.setState(ctx, domain.AuthState{Status: domain.AuthUnauthenticated})
	return nil
}

// RefreshSession exchanges the persisted refresh token for a new session.
func (s *Store) RefreshSession(ctx context.Context) (*domain.Session, error) {
	creds, err := s.gw.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	if creds.RefreshToken == "" {
		return nil, domain.ErrAuthRequired
	}

	session, err := s.gw.RefreshSession(ctx, creds.RefreshToken)
	if err != nil {
		return nil, err
	}
	if session.ExpiresAt == 0 {
		session.ExpiresAt, _ = tokens.ExpiresAt(session.AccessToken)
	}

	current := s.Snapshot()
	if current.Status == domain.AuthAuthenticated {
		current.Session = session
		s.setState(ctx, current)
	}
	copied := *session
	return &copied, nil
}

// ForgotPassword requests a reset email and returns the server message.
func (s *Store) ForgotPassword(ctx context.Context, email string) (string, error) {
	msg, err := s.gw.ForgotPassword(ctx, email)
	if err != nil {
		s.setError(ctx, err)
		return "", err
	}
	return msg, nil
}

// ResetPassword sets a new password and returns the server message.
func (s *Store) ResetPassword(ctx context.Context, email, token, newPassword string) (string, error) {
	msg, err := s.gw.ResetPassword(ctx, email, token, newPassword)
	if err != nil {
		s.setError(ctx, err)
		return "", err
	}
	return msg, nil
}

// handleExpired runs after the gateway saw a 401 and cleared the credentials.
func (s *Store) handleExpired(ctx context.Context) {
	s.log(ctx).Info("session expired")
	s.setState(ctx, domain.AuthState{Status: domain.AuthUnauthenticated})
}

// setError records err on the current state without changing its status.
func (s *Store) setError(ctx context.Context, err error) {
	next := s.Snapshot()
	next.Error = err.Error()
	s.setState(ctx, next)
}

// setState swaps the state and notifies listeners after the lock is released.
func (s *Store) setState(ctx context.Context, next domain.AuthState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	listeners := append([]usecase.SessionListener(nil), s.listeners...)
	s.mu.Unlock()

	if prev.Status != next.Status {
		s.log(ctx).Debug("auth state changed",
			zap.String("from", string(prev.Status)),
			zap.String("to", string(next.Status)))
	}
	for _, l := range listeners {
		l(ctx, cloneState(prev), cloneState(next))
	}
}

func (s *Store) log(ctx context.Context) *zap.Logger {
	return appLogger.WithRequestID(ctx, s.logger)
}

func authenticated(user *domain.User, session *domain.Session) domain.AuthState {
	sess := *session
	if sess.ExpiresAt == 0 {
		sess.ExpiresAt, _ = tokens.ExpiresAt(sess.AccessToken)
	}
	u := *user
	return domain.AuthState{Status: domain.AuthAuthenticated, User: &u, Session: &sess}
}

func cloneState(s domain.AuthState) domain.AuthState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.Session != nil {
		sess := *s.Session
		s.Session = &sess
	}
	return s
}
