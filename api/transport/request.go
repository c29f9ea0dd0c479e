package transport

import "github.com/fastygo/taskdesk/domain"

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// TaskRequest is the create body; optional fields are omitted when empty.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Category    string `json:"category,omitempty"`
}

// TaskPatchRequest is the partial update body; only set fields are sent.
type TaskPatchRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Category    *string `json:"category,omitempty"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

func NewTaskRequest(in domain.TaskInput) TaskRequest {
	return TaskRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      string(in.Status),
		Priority:    string(in.Priority),
		DueDate:     in.DueDate,
		Category:    in.Category,
	}
}

func NewTaskPatchRequest(p domain.TaskPatch) TaskPatchRequest {
	req := TaskPatchRequest{
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		Category:    p.Category,
	}
	if p.Status != nil {
		s := string(*p.Status)
		req.Status = &s
	}
	if p.Priority != nil {
		pr := string(*p.Priority)
		req.Priority = &pr
	}
	return req
}
