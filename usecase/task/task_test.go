package task

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/gateway"
	"github.com/fastygo/taskdesk/internal/testutil"
	"github.com/fastygo/taskdesk/repository/memory"
	"github.com/fastygo/taskdesk/usecase/auth"
)

const (
	email    = "ana@example.com"
	password = "secret-pass"
)

type fixture struct {
	backend *testutil.Backend
	gw      *gateway.Gateway
	session *auth.Store
	tasks   *Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.AddUser(email, password)
	gw := gateway.New(gateway.Config{BaseURL: testutil.BaseURL, Dial: backend.Dial}, memory.NewCredentialRepository(), nil)
	ctx := context.Background()
	session := auth.New(ctx, gw, nil)
	return &fixture{
		backend: backend,
		gw:      gw,
		session: session,
		tasks:   New(ctx, gw, session, nil),
	}
}

func (f *fixture) signin(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Signin(context.Background(), email, password))
}

func TestLoad_GatedWhileUnauthenticated(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.tasks.Load(context.Background()))
	require.Empty(t, f.backend.Calls())
	require.Empty(t, f.tasks.Tasks())
	require.False(t, f.tasks.Snapshot().Loading)
}

func TestSignin_AutoLoadsOnce(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	f.backend.SeedTask(email, domain.Task{Title: "Pay rent", Status: domain.TaskCompleted})

	f.signin(t)

	require.Equal(t, 1, f.backend.CallCount(http.MethodGet, "/tasks"))
	require.Len(t, f.tasks.Tasks(), 2)
	require.Equal(t, f.tasks.Tasks(), f.tasks.Filtered())
	require.Empty(t, f.tasks.Snapshot().Error)
}

func TestNew_LoadsWhenAlreadySignedIn(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	f.signin(t)
	f.backend.ResetCalls()

	late := New(context.Background(), f.gw, f.session, nil)
	require.Len(t, late.Tasks(), 1)
	require.Equal(t, 1, f.backend.CallCount(http.MethodGet, "/tasks"))
}

func TestCreate_WritesThenRefetches(t *testing.T) {
	f := newFixture(t)
	f.signin(t)
	f.backend.ResetCalls()
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, domain.TaskInput{Title: "Pay rent", Priority: domain.PriorityHigh})
	require.NoError(t, err)

	calls := f.backend.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "POST", calls[0].Method)
	require.Equal(t, "/tasks", calls[0].Path)
	require.JSONEq(t, `{"title":"Pay rent","priority":"high"}`, string(calls[0].Body))
	require.Equal(t, "GET", calls[1].Method)
	require.Equal(t, "/tasks", calls[1].Path)

	tasks := f.tasks.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, created.ID, tasks[0].ID)
	require.Equal(t, domain.PriorityHigh, tasks[0].Priority)
}

func TestCreate_ValidationSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	f.signin(t)
	f.backend.ResetCalls()

	_, err := f.tasks.Create(context.Background(), domain.TaskInput{Title: "   "})
	require.ErrorIs(t, err, domain.ErrTitleRequired)

	_, err = f.tasks.Create(context.Background(), domain.TaskInput{Title: "x", Priority: "urgent"})
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	require.Empty(t, f.backend.Calls())
}

func TestMutationFailures_SetErrorAndReturn(t *testing.T) {
	f := newFixture(t)
	seeded := f.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	f.signin(t)
	ctx := context.Background()

	f.backend.FailNext(http.MethodPost, "/tasks", http.StatusInternalServerError, "db down")
	_, err := f.tasks.Create(ctx, domain.TaskInput{Title: "Pay rent"})
	require.EqualError(t, err, "db down")
	require.Equal(t, "Failed to create task. Please try again.", f.tasks.Snapshot().Error)
	require.Len(t, f.tasks.Tasks(), 1)

	title := "Buy oat milk"
	f.backend.FailNext(http.MethodPut, "/tasks/"+seeded.ID, http.StatusBadRequest, "")
	err = f.tasks.Update(ctx, seeded.ID, domain.TaskPatch{Title: &title})
	require.EqualError(t, err, "HTTP error! status: 400")
	require.Equal(t, "Failed to update task. Please try again.", f.tasks.Snapshot().Error)

	err = f.tasks.Delete(ctx, "missing")
	require.EqualError(t, err, "Task not found")
	require.Equal(t, "Failed to delete task. Please try again.", f.tasks.Snapshot().Error)

	require.NoError(t, f.tasks.Update(ctx, seeded.ID, domain.TaskPatch{Title: &title}))
	require.Empty(t, f.tasks.Snapshot().Error)
	require.Equal(t, title, f.tasks.Tasks()[0].Title)
}

func TestLoad_FailureEmptiesCollection(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	f.signin(t)
	require.Len(t, f.tasks.Tasks(), 1)

	f.backend.FailNext(http.MethodGet, "/tasks", http.StatusServiceUnavailable, "maintenance")
	err := f.tasks.Refresh(context.Background())
	require.Error(t, err)

	state := f.tasks.Snapshot()
	require.Empty(t, state.Tasks)
	require.Equal(t, "Failed to load tasks. Please try again.", state.Error)
	require.False(t, state.Loading)

	require.NoError(t, f.tasks.Refresh(context.Background()))
	require.Len(t, f.tasks.Tasks(), 1)
	require.Empty(t, f.tasks.Snapshot().Error)
}

func TestUpdateAndDelete_Refetch(t *testing.T) {
	f := newFixture(t)
	seeded := f.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	f.signin(t)
	ctx := context.Background()

	done := domain.TaskCompleted
	require.NoError(t, f.tasks.Update(ctx, seeded.ID, domain.TaskPatch{Status: &done}))
	require.Equal(t, domain.TaskCompleted, f.tasks.Tasks()[0].Status)
	require.Equal(t, domain.TaskStats{Total: 1, Completed: 1, CompletionRate: 100}, f.tasks.Stats())

	require.NoError(t, f.tasks.Delete(ctx, seeded.ID))
	require.Empty(t, f.tasks.Tasks())
}

func TestFilterSetters_NeverTouchServer(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedTask(email, domain.Task{Title: "Buy Milk", Category: "Groceries"})
	f.backend.SeedTask(email, domain.Task{Title: "Report", Category: "Work", Status: domain.TaskCompleted})
	f.signin(t)
	f.backend.ResetCalls()

	require.NoError(t, f.tasks.SetFilter(domain.FilterCompleted))
	require.Len(t, f.tasks.Filtered(), 1)

	f.tasks.SetSearch("MILK")
	require.Empty(t, f.tasks.Filtered())

	require.NoError(t, f.tasks.SetFilter(domain.FilterAll))
	require.Len(t, f.tasks.Filtered(), 1)

	work := "Work"
	f.tasks.SetSearch("")
	f.tasks.SetCategoryFilter(&work)
	work = "Groceries"
	require.Equal(t, "Report", f.tasks.Filtered()[0].Title)

	f.tasks.SetCategoryFilter(nil)
	require.Len(t, f.tasks.Filtered(), 2)

	require.Error(t, f.tasks.SetFilter("archived"))
	require.Empty(t, f.backend.Calls())
}

func TestSignout_DropsCollection(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	f.signin(t)
	require.Len(t, f.tasks.Tasks(), 1)

	require.NoError(t, f.session.Signout(context.Background()))
	require.Empty(t, f.tasks.Tasks())

	f.backend.ResetCalls()
	require.NoError(t, f.tasks.Load(context.Background()))
	require.Empty(t, f.backend.Calls())
}

func TestServerQueries_DoNotReplaceCollection(t *testing.T) {
	f := newFixture(t)
	seeded := f.backend.SeedTask(email, domain.Task{Title: "Desk", Category: "Home Office", Priority: domain.PriorityHigh})
	f.backend.SeedTask(email, domain.Task{Title: "Milk", Category: "Groceries", Priority: domain.PriorityLow})
	f.signin(t)
	ctx := context.Background()

	byCategory, err := f.tasks.ByCategory(ctx, "Home Office")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byPriority, err := f.tasks.ByPriority(ctx, domain.PriorityLow)
	require.NoError(t, err)
	require.Equal(t, "Milk", byPriority[0].Title)

	byStatus, err := f.tasks.ByStatus(ctx, domain.TaskPending)
	require.NoError(t, err)
	require.Len(t, byStatus, 2)

	_, err = f.tasks.ByStatus(ctx, "done")
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	got, err := f.tasks.Get(ctx, seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "Desk", got.Title)

	require.Len(t, f.tasks.Tasks(), 2)
}

func TestUnauthorized_ClearsCollection(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	f.signin(t)

	f.backend.RevokeAll()
	err := f.tasks.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrAuthExpired)

	require.False(t, f.gw.IsAuthenticated(context.Background()))
	require.Equal(t, domain.AuthUnauthenticated, f.session.Snapshot().Status)
	require.Empty(t, f.tasks.Tasks())
}
