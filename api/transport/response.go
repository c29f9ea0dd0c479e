package transport

import (
	"encoding/json"

	"github.com/fastygo/taskdesk/domain"
)

// AuthResponse is returned by signup and signin. Session is nil when signup
// awaits email confirmation.
type AuthResponse struct {
	User                      *domain.User    `json:"user"`
	Session                   *domain.Session `json:"session"`
	Message                   string          `json:"message,omitempty"`
	RequiresEmailConfirmation bool            `json:"requiresEmailConfirmation,omitempty"`
}

type UserResponse struct {
	User *domain.User `json:"user"`
}

type SessionResponse struct {
	Session *domain.Session `json:"session"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type TaskResponse struct {
	Task domain.Task `json:"task"`
}

type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

type CategoryResponse struct {
	Category domain.Category `json:"category"`
}

// ErrorResponse is the best-effort body of a non-success response.
type ErrorResponse struct {
	Error interface{} `json:"error,omitempty"`
}

// ParseError extracts the server-supplied message from body. Unparseable
// bodies and non-string error fields yield "".
func ParseError(body []byte) string {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	msg, _ := resp.Error.(string)
	return msg
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e ErrorResponse) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
