package app

import (
	"context"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/usecase"
)

func (a *App) registerIntents() {
	d := a.Dispatcher

	d.RegisterCommand(usecase.CmdSignup, func(ctx context.Context, payload interface{}) (interface{}, error) {
		p, err := usecase.Payload[usecase.CredentialsPayload](usecase.CmdSignup, payload)
		if err != nil {
			return nil, err
		}
		return a.Session.Signup(ctx, p.Email, p.Password)
	})
	d.RegisterCommand(usecase.CmdSignin, func(ctx context.Context, payload interface{}) (interface{}, error) {
		p, err := usecase.Payload[usecase.CredentialsPayload](usecase.CmdSignin, payload)
		if err != nil {
			return nil, err
		}
		return nil, a.Session.Signin(ctx, p.Email, p.Password)
	})
	d.RegisterCommand(usecase.CmdSignout, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return nil, a.Session.Signout(ctx)
	})
	d.RegisterCommand(usecase.CmdRefreshSession, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Session.RefreshSession(ctx)
	})
	d.RegisterCommand(usecase.CmdForgotPassword, func(ctx context.Context, payload interface{}) (interface{}, error) {
		email, err := usecase.Payload[string](usecase.CmdForgotPassword, payload)
		if err != nil {
			return nil, err
		}
		return a.Session.ForgotPassword(ctx, email)
	})
	d.RegisterCommand(usecase.CmdResetPassword, func(ctx context.Context, payload interface{}) (interface{}, error) {
		p, err := usecase.Payload[usecase.ResetPasswordPayload](usecase.CmdResetPassword, payload)
		if err != nil {
			return nil, err
		}
		return a.Session.ResetPassword(ctx, p.Email, p.Token, p.NewPassword)
	})

	d.RegisterCommand(usecase.CmdCreateTask, func(ctx context.Context, payload interface{}) (interface{}, error) {
		in, err := usecase.Payload[domain.TaskInput](usecase.CmdCreateTask, payload)
		if err != nil {
			return nil, err
		}
		return a.Tasks.Create(ctx, in)
	})
	d.RegisterCommand(usecase.CmdUpdateTask, func(ctx context.Context, payload interface{}) (interface{}, error) {
		p, err := usecase.Payload[usecase.UpdateTaskPayload](usecase.CmdUpdateTask, payload)
		if err != nil {
			return nil, err
		}
		return nil, a.Tasks.Update(ctx, p.ID, p.Patch)
	})
	d.RegisterCommand(usecase.CmdDeleteTask, func(ctx context.Context, payload interface{}) (interface{}, error) {
		id, err := usecase.Payload[string](usecase.CmdDeleteTask, payload)
		if err != nil {
			return nil, err
		}
		return nil, a.Tasks.Delete(ctx, id)
	})
	d.RegisterCommand(usecase.CmdReloadTasks, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return nil, a.Tasks.Refresh(ctx)
	})
	d.RegisterCommand(usecase.CmdSetFilter, func(ctx context.Context, payload interface{}) (interface{}, error) {
		f, err := usecase.Payload[domain.StatusFilter](usecase.CmdSetFilter, payload)
		if err != nil {
			return nil, err
		}
		return nil, a.Tasks.SetFilter(f)
	})
	d.RegisterCommand(usecase.CmdSetSearch, func(ctx context.Context, payload interface{}) (interface{}, error) {
		q, err := usecase.Payload[string](usecase.CmdSetSearch, payload)
		if err != nil {
			return nil, err
		}
		a.Tasks.SetSearch(q)
		return nil, nil
	})
	d.RegisterCommand(usecase.CmdSetCategoryFilter, func(ctx context.Context, payload interface{}) (interface{}, error) {
		p, err := usecase.Payload[usecase.CategoryFilterPayload](usecase.CmdSetCategoryFilter, payload)
		if err != nil {
			return nil, err
		}
		a.Tasks.SetCategoryFilter(p.Category)
		return nil, nil
	})

	d.RegisterCommand(usecase.CmdCreateCategory, func(ctx context.Context, payload interface{}) (interface{}, error) {
		name, err := usecase.Payload[string](usecase.CmdCreateCategory, payload)
		if err != nil {
			return nil, err
		}
		return a.Categories.Create(ctx, name)
	})
	d.RegisterCommand(usecase.CmdReloadCategories, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return nil, a.Categories.Refresh(ctx)
	})

	d.RegisterQuery(usecase.QryAuthState, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Session.Snapshot(), nil
	})
	d.RegisterQuery(usecase.QryTasks, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Tasks.Tasks(), nil
	})
	d.RegisterQuery(usecase.QryFilteredTasks, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Tasks.Filtered(), nil
	})
	d.RegisterQuery(usecase.QryTaskStats, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Tasks.Stats(), nil
	})
	d.RegisterQuery(usecase.QryTask, func(ctx context.Context, params interface{}) (interface{}, error) {
		id, err := usecase.Payload[string](usecase.QryTask, params)
		if err != nil {
			return nil, err
		}
		return a.Tasks.Get(ctx, id)
	})
	d.RegisterQuery(usecase.QryTasksByStatus, func(ctx context.Context, params interface{}) (interface{}, error) {
		status, err := usecase.Payload[domain.TaskStatus](usecase.QryTasksByStatus, params)
		if err != nil {
			return nil, err
		}
		return a.Tasks.ByStatus(ctx, status)
	})
	d.RegisterQuery(usecase.QryTasksByPriority, func(ctx context.Context, params interface{}) (interface{}, error) {
		priority, err := usecase.Payload[domain.TaskPriority](usecase.QryTasksByPriority, params)
		if err != nil {
			return nil, err
		}
		return a.Tasks.ByPriority(ctx, priority)
	})
	d.RegisterQuery(usecase.QryTasksByCategory, func(ctx context.Context, params interface{}) (interface{}, error) {
		category, err := usecase.Payload[string](usecase.QryTasksByCategory, params)
		if err != nil {
			return nil, err
		}
		return a.Tasks.ByCategory(ctx, category)
	})
	d.RegisterQuery(usecase.QryCategories, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.Categories.Categories(), nil
	})
}
