// Package category holds the category store of the signed-in user.
package category

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	appLogger "github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/usecase"
)

const (
	msgLoadFailed   = "Failed to load categories. Please try again."
	msgCreateFailed = "Failed to create category. Please try again."
)

// State is a read-only snapshot of the store.
type State struct {
	Categories []domain.Category
	Loading    bool
	Error      string
}

// Store holds the category collection of the signed-in user.
type Store struct {
	gw      usecase.CategoryGateway
	session usecase.SessionSource
	logger  *zap.Logger

	mu         sync.RWMutex
	categories []domain.Category
	loading    bool
	err        string
}

// New subscribes the store to session transitions and loads immediately when
// a user is already signed in.
func New(ctx context.Context, gw usecase.CategoryGateway, session usecase.SessionSource, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		gw:         gw,
		session:    session,
		logger:     logger,
		categories: []domain.Category{},
	}
	if current := session.Subscribe(s.onSessionChange); current.Ready() {
		s.reload(ctx)
	}
	return s
}

func (s *Store) onSessionChange(ctx context.Context, prev, next domain.AuthState) {
	switch {
	case !prev.Ready() && next.Ready():
		s.reload(ctx)
	case prev.Ready() && !next.Ready():
		s.mu.Lock()
		s.categories = []domain.Category{}
		s.err = ""
		s.mu.Unlock()
	}
}

// Load replaces the collection with the server's; it is a no-op until a user
// is signed in.
func (s *Store) Load(ctx context.Context) error {
	owner := s.session.Snapshot()
	if !owner.Ready() {
		return nil
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	categories, err := s.gw.ListCategories(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	// the user signed out or changed while the call was in flight
	if !owner.SameIdentity(s.session.Snapshot()) {
		return err
	}
	if err != nil {
		s.categories = []domain.Category{}
		s.err = msgLoadFailed
		return err
	}
	s.categories = categories
	s.err = ""
	return nil
}

// Refresh reloads on demand.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Store) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		appLogger.WithRequestID(ctx, s.logger).Warn("category reload failed", zap.Error(err))
	}
}

// Create stores a category, reloads the collection and returns the server's
// record so callers can use its canonical name right away.
func (s *Store) Create(ctx context.Context, name string) (domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Category{}, domain.ErrCategoryNameMissing
	}
	created, err := s.gw.CreateCategory(ctx, name)
	if err != nil {
		s.mu.Lock()
		s.err = msgCreateFailed
		s.mu.Unlock()
		return domain.Category{}, err
	}
	s.reload(ctx)
	return *created, nil
}

// Categories returns a copy of the held collection.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.categories...)
}

// Names lists category names in collection order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.categories))
	for _, c := range s.categories {
		names = append(names, c.Name)
	}
	return names
}

// Snapshot returns a copy of the store state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Categories: append([]domain.Category{}, s.categories...),
		Loading:    s.loading,
		Error:      s.err,
	}
}
