package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
)

type fakeSession struct {
	mu         sync.Mutex
	state      domain.AuthState
	refreshErr error
	refreshes  int
}

func (f *fakeSession) Snapshot() domain.AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) RefreshSession(ctx context.Context) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &domain.Session{AccessToken: "new"}, nil
}

type fakeStore struct {
	name  string
	err   error
	order *[]string
}

func (f *fakeStore) Refresh(ctx context.Context) error {
	*f.order = append(*f.order, f.name)
	return f.err
}

func signedIn(expiresAt int64) domain.AuthState {
	return domain.AuthState{
		Status:  domain.AuthAuthenticated,
		User:    &domain.User{ID: "u1"},
		Session: &domain.Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: expiresAt},
	}
}

func newSyncer(t *testing.T, session SessionRefresher, cfg SyncerConfig) *Syncer {
	t.Helper()
	s, err := NewSyncer(session, nil, cfg)
	require.NoError(t, err)
	return s
}

func TestSync_SkipsWhileSignedOut(t *testing.T) {
	var order []string
	session := &fakeSession{state: domain.AuthState{Status: domain.AuthUnauthenticated}}
	s := newSyncer(t, session, SyncerConfig{Interval: time.Minute, RefreshSession: true})
	s.Track("tasks", &fakeStore{name: "tasks", order: &order})

	require.NoError(t, s.Sync(context.Background()))
	require.Empty(t, order)
	require.Zero(t, session.refreshes)
}

func TestSync_RefetchesInOrder(t *testing.T) {
	var order []string
	session := &fakeSession{state: signedIn(0)}
	s := newSyncer(t, session, SyncerConfig{Interval: time.Minute, RefreshSession: true})
	s.Track("categories", &fakeStore{name: "categories", order: &order})
	s.Track("tasks", &fakeStore{name: "tasks", order: &order})

	require.NoError(t, s.Sync(context.Background()))
	require.Equal(t, []string{"categories", "tasks"}, order)
	require.Zero(t, session.refreshes, "unknown expiry is never refreshed")
}

func TestSync_RefreshesExpiringSession(t *testing.T) {
	var order []string
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &fakeSession{state: signedIn(now.Add(90 * time.Second).Unix())}
	s := newSyncer(t, session, SyncerConfig{Interval: time.Minute, RefreshSession: true})
	s.now = func() time.Time { return now }
	s.Track("tasks", &fakeStore{name: "tasks", order: &order})

	require.NoError(t, s.Sync(context.Background()))
	require.Equal(t, 1, session.refreshes)
	require.Equal(t, []string{"tasks"}, order)

	session.state = signedIn(now.Add(time.Hour).Unix())
	require.NoError(t, s.Sync(context.Background()))
	require.Equal(t, 1, session.refreshes)
}

func TestSync_StopsAfterExpiredRefresh(t *testing.T) {
	var order []string
	now := time.Now()
	session := &fakeSession{state: signedIn(now.Unix()), refreshErr: domain.ErrAuthExpired}
	s := newSyncer(t, session, SyncerConfig{Interval: time.Minute, RefreshSession: true})
	s.Track("tasks", &fakeStore{name: "tasks", order: &order})

	require.NoError(t, s.Sync(context.Background()))
	require.Empty(t, order)
}

func TestSync_JoinsStoreErrors(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	session := &fakeSession{state: signedIn(0)}
	s := newSyncer(t, session, SyncerConfig{Interval: time.Minute})
	s.Track("categories", &fakeStore{name: "categories", err: boom, order: &order})
	s.Track("tasks", &fakeStore{name: "tasks", order: &order})

	err := s.Sync(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "categories")
	require.Equal(t, []string{"categories", "tasks"}, order)
}

func TestSyncer_StartStop(t *testing.T) {
	s := newSyncer(t, &fakeSession{}, SyncerConfig{})
	require.Equal(t, time.Second, s.cfg.Interval)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	require.NoError(t, ctx.Err())
}

func TestNewSyncer_Schedule(t *testing.T) {
	s := newSyncer(t, &fakeSession{}, SyncerConfig{Interval: time.Minute, Schedule: "*/15 * * * * *"})
	require.Len(t, s.cron.Entries(), 1)

	_, err := NewSyncer(&fakeSession{}, nil, SyncerConfig{Schedule: "every tuesday"})
	require.ErrorContains(t, err, "every tuesday")
}
