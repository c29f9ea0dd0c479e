package testutil

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
)

func newRouter(b *Backend) *router.Router {
	r := router.New()

	// Auth routes
	r.POST("/api/auth/signup", b.signup)
	r.POST("/api/auth/signin", b.signin)
	r.POST("/api/auth/refresh", b.refreshSession)
	r.POST("/api/auth/forgot-password", b.forgotPassword)
	r.POST("/api/auth/reset-password", b.resetPassword)

	// Protected routes
	r.POST("/api/auth/signout", b.requireAuth(b.signout))
	r.GET("/api/auth/me", b.requireAuth(b.me))

	r.GET("/api/tasks", b.requireAuth(b.listTasks))
	r.POST("/api/tasks", b.requireAuth(b.createTask))
	r.GET("/api/tasks/{id}", b.requireAuth(b.getTask))
	r.PUT("/api/tasks/{id}", b.requireAuth(b.updateTask))
	r.DELETE("/api/tasks/{id}", b.requireAuth(b.deleteTask))
	// status, priority and category listings share the {id} segment
	r.GET("/api/tasks/{id}/{value}", b.requireAuth(b.listTasksBy))

	r.GET("/api/categories", b.requireAuth(b.listCategories))
	r.POST("/api/categories", b.requireAuth(b.createCategory))

	return r
}

func (b *Backend) signup(ctx *fasthttp.RequestCtx) {
	var req transport.CredentialsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "Email and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[req.Email]; exists {
		writeError(ctx, fasthttp.StatusBadRequest, "User already registered")
		return
	}
	user := b.addUserLocked(req.Email, req.Password)

	if b.requireConfirmation {
		writeJSON(ctx, fasthttp.StatusCreated, transport.AuthResponse{
			User:                      &user,
			Message:                   "Please check your email to confirm your account",
			RequiresEmailConfirmation: true,
		})
		return
	}
	session := b.issueLocked(user.ID)
	writeJSON(ctx, fasthttp.StatusCreated, transport.AuthResponse{User: &user, Session: &session})
}

func (b *Backend) signin(ctx *fasthttp.RequestCtx) {
	var req transport.CredentialsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Email and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[req.Email]
	if !ok || acc.password != req.Password {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid login credentials")
		return
	}
	session := b.issueLocked(acc.user.ID)
	user := acc.user
	writeJSON(ctx, fasthttp.StatusOK, transport.AuthResponse{User: &user, Session: &session})
}

func (b *Backend) signout(ctx *fasthttp.RequestCtx) {
	b.mu.Lock()
	delete(b.access, extractToken(ctx))
	b.mu.Unlock()
	writeJSON(ctx, fasthttp.StatusOK, transport.MessageResponse{Message: "Signed out successfully"})
}

func (b *Backend) me(ctx *fasthttp.RequestCtx) {
	userID := currentUser(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.ID == userID {
			user := acc.user
			writeJSON(ctx, fasthttp.StatusOK, transport.UserResponse{User: &user})
			return
		}
	}
	writeError(ctx, fasthttp.StatusUnauthorized, "Invalid token")
}

func (b *Backend) refreshSession(ctx *fasthttp.RequestCtx) {
	var req transport.RefreshRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.RefreshToken == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "Refresh token is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.refresh[req.RefreshToken]
	if !ok {
		writeError(ctx, fasthttp.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(b.refresh, req.RefreshToken)
	session := b.issueLocked(userID)
	writeJSON(ctx, fasthttp.StatusOK, transport.SessionResponse{Session: &session})
}

func (b *Backend) forgotPassword(ctx *fasthttp.RequestCtx) {
	var req transport.ForgotPasswordRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "Email is required")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, transport.MessageResponse{Message: "Password reset email sent"})
}

func (b *Backend) resetPassword(ctx *fasthttp.RequestCtx) {
	var req transport.ResetPasswordRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Token == "" || req.NewPassword == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "Email, token and new password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[req.Email]
	if !ok {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid reset token")
		return
	}
	acc.password = req.NewPassword
	writeJSON(ctx, fasthttp.StatusOK, transport.MessageResponse{Message: "Password updated successfully"})
}

func (b *Backend) listTasks(ctx *fasthttp.RequestCtx) {
	userID := currentUser(ctx)

	b.mu.Lock()
	tasks := b.tasksLocked(func(t domain.Task) bool { return t.UserID == userID })
	b.mu.Unlock()
	writeJSON(ctx, fasthttp.StatusOK, transport.TasksResponse{Tasks: tasks})
}

func (b *Backend) listTasksBy(ctx *fasthttp.RequestCtx) {
	userID := currentUser(ctx)
	kind, _ := ctx.UserValue("id").(string)
	value, _ := ctx.UserValue("value").(string)

	var match func(domain.Task) bool
	switch kind {
	case "status":
		match = func(t domain.Task) bool { return string(t.Status) == value }
	case "priority":
		match = func(t domain.Task) bool { return string(t.Priority) == value }
	case "category":
		match = func(t domain.Task) bool { return t.Category == value }
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
		return
	}

	b.mu.Lock()
	tasks := b.tasksLocked(func(t domain.Task) bool { return t.UserID == userID && match(t) })
	b.mu.Unlock()
	writeJSON(ctx, fasthttp.StatusOK, transport.TasksResponse{Tasks: tasks})
}

func (b *Backend) getTask(ctx *fasthttp.RequestCtx) {
	userID := currentUser(ctx)
	id, _ := ctx.UserValue("id").(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.findTaskLocked(userID, id); i >= 0 {
		writeJSON(ctx, fasthttp.StatusOK, transport.TaskResponse{Task: b.tasks[i]})
		return
	}
	writeError(ctx, fasthttp.StatusNotFound, "Task not found")
}

func (b *Backend) createTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "Title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	task := b.insertTaskLocked(domain.Task{
		UserID:      currentUser(ctx),
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		Category:    req.Category,
	})
	writeJSON(ctx, fasthttp.StatusCreated, transport.TaskResponse{Task: task})
}

func (b *Backend) updateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskPatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid body")
		return
	}
	userID := currentUser(ctx)
	id, _ := ctx.UserValue("id").(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.findTaskLocked(userID, id)
	if i < 0 {
		writeError(ctx, fasthttp.StatusNotFound, "Task not found")
		return
	}
	task := &b.tasks[i]
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = domain.TaskStatus(*req.Status)
	}
	if req.Priority != nil {
		task.Priority = domain.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	task.UpdatedAt = time.Now().UTC()
	writeJSON(ctx, fasthttp.StatusOK, transport.TaskResponse{Task: *task})
}

func (b *Backend) deleteTask(ctx *fasthttp.RequestCtx) {
	userID := currentUser(ctx)
	id, _ := ctx.UserValue("id").(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.findTaskLocked(userID, id)
	if i < 0 {
		writeError(ctx, fasthttp.StatusNotFound, "Task not found")
		return
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (b *Backend) findTaskLocked(userID, id string) int {
	for i, t := range b.tasks {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}

func (b *Backend) listCategories(ctx *fasthttp.RequestCtx) {
	userID := currentUser(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	categories := make([]domain.Category, 0, len(b.categories))
	for _, c := range b.categories {
		if c.UserID == userID {
			categories = append(categories, c)
		}
	}
	writeJSON(ctx, fasthttp.StatusOK, transport.CategoriesResponse{Categories: categories})
}

func (b *Backend) createCategory(ctx *fasthttp.RequestCtx) {
	var req transport.CategoryRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "Category name is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	category := b.insertCategoryLocked(currentUser(ctx), req.Name)
	writeJSON(ctx, fasthttp.StatusCreated, transport.CategoryResponse{Category: category})
}
