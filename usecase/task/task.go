// Package task holds the task store: the task collection of the signed-in
// user and the filtered view derived from it.
package task

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	appLogger "github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/usecase"
)

// User-facing failure messages.
const (
	msgLoadFailed   = "Failed to load tasks. Please try again."
	msgCreateFailed = "Failed to create task. Please try again."
	msgUpdateFailed = "Failed to update task. Please try again."
	msgDeleteFailed = "Failed to delete task. Please try again."
)

// State is a read-only snapshot of the store.
type State struct {
	Tasks   []domain.Task
	Filter  domain.TaskFilter
	Loading bool
	Error   string
}

// Store holds the task collection of the signed-in user and its filter state.
type Store struct {
	gw      usecase.TaskGateway
	session usecase.SessionSource
	logger  *zap.Logger

	mu      sync.RWMutex
	tasks   []domain.Task
	filter  domain.TaskFilter
	loading bool
	err     string
}

// New subscribes the store to session transitions and loads immediately when
// a user is already signed in.
func New(ctx context.Context, gw usecase.TaskGateway, session usecase.SessionSource, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		gw:      gw,
		session: session,
		logger:  logger,
		tasks:   []domain.Task{},
		filter:  domain.DefaultTaskFilter(),
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
		s.tasks = []domain.Task{}
		s.err = ""
		s.mu.Unlock()
	}
}

// Load replaces the collection with the server's. It does nothing until a
// user is signed in. A failure empties the collection.
func (s *Store) Load(ctx context.Context) error {
	owner := s.session.Snapshot()
	if !owner.Ready() {
		return nil
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	tasks, err := s.gw.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	// the user signed out or changed while the call was in flight
	if !owner.SameIdentity(s.session.Snapshot()) {
		return err
	}
	if err != nil {
		s.tasks = []domain.Task{}
		s.err = msgLoadFailed
		return err
	}
	s.tasks = tasks
	s.err = ""
	return nil
}

// Refresh reloads on demand, e.g. after a failed load.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Store) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		appLogger.WithRequestID(ctx, s.logger).Warn("task reload failed", zap.Error(err))
	}
}

// Create stores a new task and reloads the collection. The returned task is
// the server's record; it is not merged locally.
func (s *Store) Create(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, err
	}
	created, err := s.gw.CreateTask(ctx, in)
	if err != nil {
		s.setError(msgCreateFailed)
		return domain.Task{}, err
	}
	s.reload(ctx)
	return *created, nil
}

// Update applies a partial change and reloads the collection.
func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if id == "" {
		return domain.ErrTaskIDMissing
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if _, err := s.gw.UpdateTask(ctx, id, patch); err != nil {
		s.setError(msgUpdateFailed)
		return err
	}
	s.reload(ctx)
	return nil
}

// Delete removes a task and reloads the collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTaskIDMissing
	}
	if err := s.gw.DeleteTask(ctx, id); err != nil {
		s.setError(msgDeleteFailed)
		return err
	}
	s.reload(ctx)
	return nil
}

// Get fetches a single task from the server without touching the collection.
func (s *Store) Get(ctx context.Context, id string) (domain.Task, error) {
	if id == "" {
		return domain.Task{}, domain.ErrTaskIDMissing
	}
	t, err := s.gw.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (s *Store) ByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	if !status.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid task status "+string(status))
	}
	return s.gw.ListTasksByStatus(ctx, status)
}

func (s *Store) ByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	if !priority.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid task priority "+string(priority))
	}
	return s.gw.ListTasksByPriority(ctx, priority)
}

func (s *Store) ByCategory(ctx context.Context, category string) ([]domain.Task, error) {
	return s.gw.ListTasksByCategory(ctx, category)
}

// SetFilter, SetSearch and SetCategoryFilter change the view only.

// SetFilter changes the status filter. It never calls the backend.
func (s *Store) SetFilter(status domain.StatusFilter) error {
	if !status.Valid() {
		return domain.NewError(domain.ErrCodeInvalid, "invalid filter "+string(status))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Status = status
	return nil
}

// SetSearch changes the text search.
func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Search = query
}

// SetCategoryFilter narrows the view to one category name; nil removes the narrowing.
func (s *Store) SetCategoryFilter(category *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category == nil {
		s.filter.Category = nil
		return
	}
	name := *category
	s.filter.Category = &name
}

// Tasks returns a copy of the full collection.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Task{}, s.tasks...)
}

// Filtered returns the tasks visible under the current filter.
func (s *Store) Filtered() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterTasks(s.tasks, s.filter)
}

// Stats summarises the full collection, ignoring filters.
func (s *Store) Stats() domain.TaskStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.tasks)
}

// Snapshot returns a copy of the store state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter := s.filter
	if filter.Category != nil {
		name := *filter.Category
		filter.Category = &name
	}
	return State{
		Tasks:   append([]domain.Task{}, s.tasks...),
		Filter:  filter,
		Loading: s.loading,
		Error:   s.err,
	}
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}
