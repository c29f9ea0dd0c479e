package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/app"
	"github.com/fastygo/taskdesk/internal/config"
	"github.com/fastygo/taskdesk/internal/testutil"
	"github.com/fastygo/taskdesk/repository/memory"
)

const (
	email    = "ana@example.com"
	password = "secret-pass"
)

type harness struct {
	backend *testutil.Backend
	creds   *memory.CredentialRepository
}

type result struct {
	stdout string
	stderr string
	err    error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("API_URL", testutil.BaseURL)
	t.Setenv("CREDENTIAL_STORE", config.StoreMemory)
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "error")

	backend := testutil.NewBackend(t)
	backend.AddUser(email, password)
	return &harness{backend: backend, creds: memory.NewCredentialRepository()}
}

// run executes one CLI invocation; the credential repository is shared so a
// session carries over between invocations.
func (h *harness) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cmd := NewRootCommand("test",
		app.WithDial(h.backend.Dial),
		app.WithCredentialRepository(h.creds),
	)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (h *harness) signin(t *testing.T) {
	t.Helper()
	res := h.run(t, "", "signin", "-e", email, "-p", password)
	require.NoError(t, res.err)
	require.Equal(t, "Signed in as "+email+".\n", res.stdout)
}

func TestSignin_ReadsPasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, password+"\n", "signin", "--email", email)
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Signed in as "+email)

	creds, err := h.creds.Get(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, creds.AccessToken)
}

func TestSignin_WrongPassword(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", "signin", "-e", email, "-p", "nope")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "Invalid login credentials")
}

func TestSignup_ConfirmationPending(t *testing.T) {
	h := newHarness(t)
	h.backend.RequireEmailConfirmation(true)

	res := h.run(t, "", "signup", "-e", "new@example.com", "-p", password)
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Check your email")

	res = h.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Equal(t, "Not signed in.\n", res.stdout)
}

func TestWhoamiAndSignout(t *testing.T) {
	h := newHarness(t)
	h.signin(t)

	res := h.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, email)

	res = h.run(t, "", "signout")
	require.NoError(t, res.err)
	require.Equal(t, "Signed out.\n", res.stdout)

	res = h.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Equal(t, "Not signed in.\n", res.stdout)
}

func TestTasks_RequireSignin(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", "tasks", "list")
	require.ErrorIs(t, res.err, domain.ErrAuthRequired)
	require.Zero(t, h.backend.CallCount("GET", "/tasks"))
}

func TestTasks_AddListAndStats(t *testing.T) {
	h := newHarness(t)
	h.backend.SeedTask(email, domain.Task{Title: "Buy Milk", Category: "Groceries"})
	h.signin(t)

	res := h.run(t, "", "tasks", "add", "Write", "report", "-P", "high", "-c", "Work")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Write report")

	res = h.run(t, "", "tasks", "list")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Buy Milk")
	require.Contains(t, res.stdout, "Write report")

	res = h.run(t, "", "tasks", "list", "--search", "MILK")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Buy Milk")
	require.NotContains(t, res.stdout, "Write report")

	res = h.run(t, "", "tasks", "list", "--category", "Work")
	require.NoError(t, res.err)
	require.NotContains(t, res.stdout, "Buy Milk")
	require.Contains(t, res.stdout, "Write report")

	res = h.run(t, "", "tasks", "list", "--filter", "completed")
	require.NoError(t, res.err)
	require.Equal(t, "No tasks found.\n", res.stdout)

	res = h.run(t, "", "--json", "stats")
	require.NoError(t, res.err)
	var stats domain.TaskStats
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &stats))
	require.Equal(t, domain.TaskStats{Total: 2, Active: 2}, stats)
}

func TestTasks_InvalidFilter(t *testing.T) {
	h := newHarness(t)
	h.signin(t)

	res := h.run(t, "", "tasks", "list", "--filter", "someday")
	require.Error(t, res.err)
}

func TestTasks_UpdateDoneAndDelete(t *testing.T) {
	h := newHarness(t)
	seeded := h.backend.SeedTask(email, domain.Task{Title: "Buy Milk"})
	h.signin(t)

	res := h.run(t, "", "tasks", "update", seeded.ID)
	require.EqualError(t, res.err, "nothing to update")

	res = h.run(t, "", "tasks", "update", seeded.ID, "--title", "Buy Oat Milk", "--category", "")
	require.NoError(t, res.err)
	call, ok := h.backend.LastCall("PUT", "/tasks/"+seeded.ID)
	require.True(t, ok)
	require.JSONEq(t, `{"title":"Buy Oat Milk","category":""}`, string(call.Body))

	res = h.run(t, "", "tasks", "done", seeded.ID)
	require.NoError(t, res.err)
	require.Equal(t, "Updated task "+seeded.ID+".\n", res.stdout)

	res = h.run(t, "", "--json", "tasks", "get", seeded.ID)
	require.NoError(t, res.err)
	var got domain.Task
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Equal(t, "Buy Oat Milk", got.Title)
	require.Equal(t, domain.TaskCompleted, got.Status)

	res = h.run(t, "", "tasks", "delete", seeded.ID)
	require.NoError(t, res.err)

	res = h.run(t, "", "stats")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Total:")
	require.Contains(t, res.stdout, "0%")
}

func TestTasks_ByCategory(t *testing.T) {
	h := newHarness(t)
	h.backend.SeedTask(email, domain.Task{Title: "Plan offsite", Category: "Home Office"})
	h.backend.SeedTask(email, domain.Task{Title: "Buy Milk", Category: "Groceries"})
	h.signin(t)

	res := h.run(t, "", "tasks", "by-category", "Home", "Office")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Plan offsite")
	require.NotContains(t, res.stdout, "Buy Milk")
}

func TestCategories_AddAndList(t *testing.T) {
	h := newHarness(t)
	h.signin(t)

	res := h.run(t, "", "categories", "list")
	require.NoError(t, res.err)
	require.Equal(t, "No categories yet.\n", res.stdout)

	res = h.run(t, "", "categories", "add", "Groceries")
	require.NoError(t, res.err)
	require.Equal(t, "Created category \"Groceries\".\n", res.stdout)

	res = h.run(t, "", "categories", "add", "   ")
	require.Error(t, res.err)

	res = h.run(t, "", "categories", "list")
	require.NoError(t, res.err)
	require.Equal(t, "Groceries\n", res.stdout)
}

func TestExpiredSession_PrintsNoticeAndForgetsCredentials(t *testing.T) {
	h := newHarness(t)
	h.signin(t)
	h.backend.RevokeAll()

	res := h.run(t, "", "tasks", "list")
	require.ErrorIs(t, res.err, domain.ErrAuthRequired)
	require.Contains(t, res.stderr, sessionExpiredNotice)

	creds, err := h.creds.Get(t.Context())
	require.NoError(t, err)
	require.Empty(t, creds.AccessToken)
	require.Equal(t, 1, h.creds.Clears())
}
