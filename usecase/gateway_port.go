package usecase

import (
	"context"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
)

// UnauthorizedFunc is notified after a 401 cleared the persisted credentials.
type UnauthorizedFunc func(ctx context.Context)

// AuthGateway abstracts the backend auth endpoints so the session store stays transport-agnostic.
type AuthGateway interface {
	Signup(ctx context.Context, email, password string) (*transport.AuthResponse, error)
	Signin(ctx context.Context, email, password string) (*transport.AuthResponse, error)
	Signout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, token, newPassword string) (string, error)

	IsAuthenticated(ctx context.Context) bool
	Credentials(ctx context.Context) (domain.Credentials, error)
	ClearCredentials(ctx context.Context) error
	OnUnauthorized(fn UnauthorizedFunc)
}

// TaskGateway is the backend surface the task store needs.
type TaskGateway interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error)
	ListTasksByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error)
	ListTasksByCategory(ctx context.Context, category string) ([]domain.Task, error)
}

// CategoryGateway is the backend surface the category store needs.
type CategoryGateway interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
}

// SessionListener observes identity transitions of the session store.
type SessionListener func(ctx context.Context, prev, next domain.AuthState)

// SessionSource is the read side of the session store that data stores depend on.
type SessionSource interface {
	Snapshot() domain.AuthState
	// Subscribe registers l and returns the state current at registration.
	Subscribe(l SessionListener) domain.AuthState
}
