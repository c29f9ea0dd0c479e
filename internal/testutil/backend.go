// Package testutil provides an in-memory stand-in for the task backend. It
// speaks the same REST contract as the real service over a fasthttputil
// listener, so gateway and store tests exercise real HTTP exchanges.
package testutil

import (
	"encoding/json"
	"net"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/taskdesk/domain"
)

// BaseURL is the API root the in-memory backend answers on.
const BaseURL = "http://taskdesk.test/api"

// Call records one request received by the backend. Path excludes the /api prefix.
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

type failure struct {
	status int
	body   string
}

type account struct {
	user     domain.User
	password string
}

type Backend struct {
	secret []byte
	ln     *fasthttputil.InmemoryListener
	server *fasthttp.Server

	mu                  sync.Mutex
	accounts            map[string]*account // by email
	access              map[string]string   // access token -> user id
	refresh             map[string]string   // refresh token -> user id
	tasks               []domain.Task
	categories          []domain.Category
	calls               []Call
	failures            map[string][]failure
	latency             time.Duration
	requireConfirmation bool
	seq                 int
}

// NewBackend starts the backend and stops it when t finishes.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		secret:   []byte("taskdesk-test-secret"),
		ln:       fasthttputil.NewInmemoryListener(),
		accounts: make(map[string]*account),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		failures: make(map[string][]failure),
	}
	b.server = &fasthttp.Server{
		Handler: b.record(newRouter(b).Handler),
		Name:    "taskdesk-test",
	}

	go func() {
		_ = b.server.Serve(b.ln)
	}()
	t.Cleanup(func() {
		_ = b.server.Shutdown()
		_ = b.ln.Close()
	})
	return b
}

// Dial satisfies fasthttp.DialFunc; every address resolves to the in-memory listener.
func (b *Backend) Dial(addr string) (net.Conn, error) {
	return b.ln.Dial()
}

// RequireEmailConfirmation makes signup answer without a session.
func (b *Backend) RequireEmailConfirmation(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requireConfirmation = on
}

// SetLatency delays every response by d.
func (b *Backend) SetLatency(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latency = d
}

// FailNext makes the next request matching method and path (without /api)
// answer status with {"error": message}. An empty message sends "{}".
func (b *Backend) FailNext(method, path string, status int, message string) {
	body := "{}"
	if message != "" {
		encoded, _ := json.Marshal(map[string]string{"error": message})
		body = string(encoded)
	}
	b.FailNextRaw(method, path, status, body)
}

// FailNextRaw is FailNext with a verbatim response body.
func (b *Backend) FailNextRaw(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{status: status, body: body})
}

// AddUser registers an account and returns its user.
func (b *Backend) AddUser(email, password string) domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, password)
}

func (b *Backend) addUserLocked(email, password string) domain.User {
	now := time.Now().UTC()
	u := domain.User{ID: uuid.NewString(), Email: email, CreatedAt: &now, UpdatedAt: &now}
	b.accounts[email] = &account{user: u, password: password}
	return u
}

// Issue creates a session for an existing account, as signin would.
func (b *Backend) Issue(email string) domain.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok {
		panic("testutil: unknown account " + email)
	}
	return b.issueLocked(acc.user.ID)
}

func (b *Backend) issueLocked(userID string) domain.Session {
	exp := time.Now().Add(time.Hour).Unix()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp,
		"jti": uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	refreshToken := uuid.NewString()
	b.access[signed] = userID
	b.refresh[refreshToken] = userID
	return domain.Session{AccessToken: signed, RefreshToken: refreshToken, ExpiresAt: exp}
}

// RevokeAll invalidates every issued access token; authenticated calls then answer 401.
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]string)
}

// SeedTask stores a task for the account with the given email.
func (b *Backend) SeedTask(email string, task domain.Task) domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok {
		panic("testutil: unknown account " + email)
	}
	task.UserID = acc.user.ID
	return b.insertTaskLocked(task)
}

func (b *Backend) insertTaskLocked(task domain.Task) domain.Task {
	b.seq++
	now := time.Now().UTC().Add(time.Duration(b.seq) * time.Millisecond)
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	b.tasks = append(b.tasks, task)
	return task
}

// SeedCategory stores a category for the account with the given email.
func (b *Backend) SeedCategory(email, name string) domain.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok {
		panic("testutil: unknown account " + email)
	}
	return b.insertCategoryLocked(acc.user.ID, name)
}

func (b *Backend) insertCategoryLocked(userID, name string) domain.Category {
	now := time.Now().UTC()
	c := domain.Category{ID: uuid.NewString(), UserID: userID, Name: name, CreatedAt: now, UpdatedAt: now}
	b.categories = append(b.categories, c)
	return c
}

// Tasks returns the stored tasks of a user, newest first.
func (b *Backend) Tasks(userID string) []domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasksLocked(func(t domain.Task) bool { return t.UserID == userID })
}

func (b *Backend) tasksLocked(match func(domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Calls returns a copy of the recorded requests.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount counts recorded requests for method and path.
func (b *Backend) CallCount(method, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// LastCall returns the most recent request for method and path.
func (b *Backend) LastCall(method, path string) (Call, bool) {
	calls := b.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method && calls[i].Path == path {
			return calls[i], true
		}
	}
	return Call{}, false
}

// ResetCalls forgets recorded requests.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// record logs the call and serves queued failures before routing.
func (b *Backend) record(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		method := string(ctx.Method())
		path := strings.TrimPrefix(string(ctx.Path()), "/api")

		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method:        method,
			Path:          path,
			Authorization: string(ctx.Request.Header.Peek("Authorization")),
			RequestID:     string(ctx.Request.Header.Peek("X-Request-ID")),
			Body:          append([]byte(nil), ctx.PostBody()...),
		})
		latency := b.latency
		key := method + " " + path
		var fail *failure
		if queued := b.failures[key]; len(queued) > 0 {
			fail = &queued[0]
			b.failures[key] = queued[1:]
		}
		b.mu.Unlock()

		if latency > 0 {
			time.Sleep(latency)
		}
		if fail != nil {
			ctx.SetContentType("application/json")
			ctx.SetStatusCode(fail.status)
			ctx.SetBodyString(fail.body)
			return
		}
		next(ctx)
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if payload == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, map[string]string{"error": message})
}
