package usecase

import "github.com/fastygo/taskdesk/domain"

// Command intents.
const (
	CmdSignup         = "auth.signup"
	CmdSignin         = "auth.signin"
	CmdSignout        = "auth.signout"
	CmdRefreshSession = "auth.refresh"
	CmdForgotPassword = "auth.forgot_password"
	CmdResetPassword  = "auth.reset_password"

	CmdCreateTask        = "task.create"
	CmdUpdateTask        = "task.update"
	CmdDeleteTask        = "task.delete"
	CmdReloadTasks       = "task.reload"
	CmdSetFilter         = "task.set_filter"
	CmdSetSearch         = "task.set_search"
	CmdSetCategoryFilter = "task.set_category"

	CmdCreateCategory   = "category.create"
	CmdReloadCategories = "category.reload"
)

// Query intents.
const (
	QryAuthState       = "auth.state"
	QryTasks           = "task.list"
	QryFilteredTasks   = "task.filtered"
	QryTaskStats       = "task.stats"
	QryTask            = "task.get"
	QryTasksByStatus   = "task.by_status"
	QryTasksByPriority = "task.by_priority"
	QryTasksByCategory = "task.by_category"
	QryCategories      = "category.list"
)

type CredentialsPayload struct {
	Email    string
	Password string
}

type ResetPasswordPayload struct {
	Email       string
	Token       string
	NewPassword string
}

type UpdateTaskPayload struct {
	ID    string
	Patch domain.TaskPatch
}

// CategoryFilterPayload selects a category name; nil Category clears the narrowing.
type CategoryFilterPayload struct {
	Category *string
}
