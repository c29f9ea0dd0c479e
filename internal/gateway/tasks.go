package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fastygo/taskdesk/api/transport"
	"github.com/fastygo/taskdesk/domain"
)

// ListTasks returns every task of the signed-in user.
func (g *Gateway) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return g.listTasks(ctx, "/tasks")
}

func (g *Gateway) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, domain.ErrTaskIDMissing
	}
	if err := g.requireToken(ctx); err != nil {
		return nil, err
	}
	var resp transport.TaskResponse
	if err := g.request(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// CreateTask stores a task and returns the server record.
func (g *Gateway) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	if err := g.requireToken(ctx); err != nil {
		return nil, err
	}
	var resp transport.TaskResponse
	if err := g.request(ctx, http.MethodPost, "/tasks", transport.NewTaskRequest(in), true, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// UpdateTask sends only the fields set in patch.
func (g *Gateway) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if id == "" {
		return nil, domain.ErrTaskIDMissing
	}
	if err := g.requireToken(ctx); err != nil {
		return nil, err
	}
	var resp transport.TaskResponse
	if err := g.request(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), transport.NewTaskPatchRequest(patch), true, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// DeleteTask removes a task.
func (g *Gateway) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTaskIDMissing
	}
	if err := g.requireToken(ctx); err != nil {
		return err
	}
	return g.request(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, true, nil)
}

func (g *Gateway) ListTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return g.listTasks(ctx, "/tasks/status/"+url.PathEscape(string(status)))
}

func (g *Gateway) ListTasksByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	return g.listTasks(ctx, "/tasks/priority/"+url.PathEscape(string(priority)))
}

// ListTasksByCategory escapes the category name as a single path segment.
func (g *Gateway) ListTasksByCategory(ctx context.Context, category string) ([]domain.Task, error) {
	return g.listTasks(ctx, "/tasks/category/"+url.PathEscape(category))
}

func (g *Gateway) listTasks(ctx context.Context, path string) ([]domain.Task, error) {
	if err := g.requireToken(ctx); err != nil {
		return nil, err
	}
	var resp transport.TasksResponse
	if err := g.request(ctx, http.MethodGet, path, nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []domain.Task{}, nil
	}
	return resp.Tasks, nil
}

// ListCategories returns the categories of the signed-in user.
func (g *Gateway) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if err := g.requireToken(ctx); err != nil {
		return nil, err
	}
	var resp transport.CategoriesResponse
	if err := g.request(ctx, http.MethodGet, "/categories", nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		return []domain.Category{}, nil
	}
	return resp.Categories, nil
}

// CreateCategory stores a category and returns the server record.
func (g *Gateway) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if err := g.requireToken(ctx); err != nil {
		return nil, err
	}
	var resp transport.CategoryResponse
	if err := g.request(ctx, http.MethodPost, "/categories", transport.CategoryRequest{Name: name}, true, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}
