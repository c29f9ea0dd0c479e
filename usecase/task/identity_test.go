package task

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/usecase"
)

// sessionStub is a session source whose identity the test switches by hand.
type sessionStub struct {
	mu        sync.Mutex
	state     domain.AuthState
	listeners []usecase.SessionListener
}

func newSessionStub() *sessionStub {
	return &sessionStub{state: domain.AuthState{Status: domain.AuthUnauthenticated}}
}

func (s *sessionStub) Snapshot() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *sessionStub) Subscribe(l usecase.SessionListener) domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	return s.state
}

func (s *sessionStub) signin(userID string) {
	s.set(domain.AuthState{Status: domain.AuthAuthenticated, User: &domain.User{ID: userID}})
}

func (s *sessionStub) signout() {
	s.set(domain.AuthState{Status: domain.AuthUnauthenticated})
}

func (s *sessionStub) set(next domain.AuthState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	listeners := append([]usecase.SessionListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(context.Background(), prev, next)
	}
}

// heldGateway holds its first ListTasks call until released; later calls answer at once.
type heldGateway struct {
	usecase.TaskGateway

	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	first   []domain.Task
	rest    []domain.Task
}

func newHeldGateway(first, rest []domain.Task) *heldGateway {
	return &heldGateway{
		started: make(chan struct{}),
		release: make(chan struct{}),
		first:   first,
		rest:    rest,
	}
}

func (g *heldGateway) ListTasks(ctx context.Context) ([]domain.Task, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	if n > 1 {
		return g.rest, nil
	}
	close(g.started)
	<-g.release
	return g.first, nil
}

func TestLoad_DiscardsResultAfterSignout(t *testing.T) {
	session := newSessionStub()
	gw := newHeldGateway([]domain.Task{{ID: "a1", UserID: "user-a", Title: "A's plan"}}, nil)
	store := New(context.Background(), gw, session, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.signin("user-a")
	}()
	<-gw.started

	session.signout()
	close(gw.release)
	<-done

	require.Empty(t, store.Tasks())
	snap := store.Snapshot()
	require.False(t, snap.Loading)
	require.Empty(t, snap.Error)
}

func TestLoad_DiscardsResultOfPreviousUser(t *testing.T) {
	session := newSessionStub()
	bTasks := []domain.Task{{ID: "b1", UserID: "user-b", Title: "B's plan"}}
	gw := newHeldGateway([]domain.Task{{ID: "a1", UserID: "user-a", Title: "A's plan"}}, bTasks)
	store := New(context.Background(), gw, session, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.signin("user-a")
	}()
	<-gw.started

	session.signout()
	session.signin("user-b")
	require.Equal(t, bTasks, store.Tasks())

	close(gw.release)
	<-done

	require.Equal(t, bTasks, store.Tasks())
}
