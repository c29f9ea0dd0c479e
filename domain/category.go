package domain

import "time"

// Category is a user-defined label. Tasks reference categories by Name, not ID,
// so renaming or deleting a category leaves existing tasks untouched.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
