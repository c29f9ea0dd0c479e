package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/app"
	"github.com/fastygo/taskdesk/usecase"
)

func signedIn(a *app.App) error {
	if !a.Session.Snapshot().Ready() {
		return domain.ErrAuthRequired
	}
	return nil
}

// loadFailure surfaces the error message a store recorded while loading.
func loadFailure(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

func tasksCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(tasksListCmd(rt))
	cmd.AddCommand(tasksAddCmd(rt))
	cmd.AddCommand(tasksUpdateCmd(rt))
	cmd.AddCommand(tasksDoneCmd(rt))
	cmd.AddCommand(tasksDeleteCmd(rt))
	cmd.AddCommand(tasksGetCmd(rt))
	cmd.AddCommand(tasksByCmd(rt, "by-status", "List tasks with a status", usecase.QryTasksByStatus, func(v string) interface{} {
		return domain.TaskStatus(v)
	}))
	cmd.AddCommand(tasksByCmd(rt, "by-priority", "List tasks with a priority", usecase.QryTasksByPriority, func(v string) interface{} {
		return domain.TaskPriority(v)
	}))
	cmd.AddCommand(tasksByCmd(rt, "by-category", "List tasks in a category", usecase.QryTasksByCategory, func(v string) interface{} {
		return v
	}))
	return cmd
}

func tasksListCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			if err := signedIn(a); err != nil {
				return err
			}
			if err := loadFailure(a.Tasks.Snapshot().Error); err != nil {
				return err
			}

			filter, _ := cmd.Flags().GetString("filter")
			search, _ := cmd.Flags().GetString("search")
			if _, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdSetFilter, domain.StatusFilter(filter)); err != nil {
				return err
			}
			if _, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdSetSearch, search); err != nil {
				return err
			}
			if cmd.Flags().Changed("category") {
				category, _ := cmd.Flags().GetString("category")
				if _, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdSetCategoryFilter, usecase.CategoryFilterPayload{Category: &category}); err != nil {
					return err
				}
			}

			res, err := a.Dispatcher.ExecuteQuery(ctx, usecase.QryFilteredTasks, nil)
			if err != nil {
				return err
			}
			tasks := res.([]domain.Task)
			return rt.render(cmd.OutOrStdout(), tasks, func(w io.Writer) error {
				return writeTasks(w, tasks)
			})
		}),
	}
	cmd.Flags().StringP("filter", "f", string(domain.FilterAll), "Status filter: all, active or completed")
	cmd.Flags().StringP("search", "s", "", "Case-insensitive text in title or description")
	cmd.Flags().StringP("category", "c", "", "Exact category name")
	return cmd
}

func taskFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("description", "d", "", "Task description")
	cmd.Flags().String("status", "", "pending, in_progress, completed or cancelled")
	cmd.Flags().StringP("priority", "P", "", "low, medium or high")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringP("category", "c", "", "Category name")
}

func tasksAddCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			flags := cmd.Flags()
			description, _ := flags.GetString("description")
			status, _ := flags.GetString("status")
			priority, _ := flags.GetString("priority")
			due, _ := flags.GetString("due")
			category, _ := flags.GetString("category")

			res, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdCreateTask, domain.TaskInput{
				Title:       strings.Join(args, " "),
				Description: description,
				Status:      domain.TaskStatus(status),
				Priority:    domain.TaskPriority(priority),
				DueDate:     due,
				Category:    category,
			})
			if err != nil {
				return err
			}
			created := res.(domain.Task)
			return rt.render(cmd.OutOrStdout(), created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created task %s: %s\n", created.ID, created.Title)
				return err
			})
		}),
	}
	taskFieldFlags(cmd)
	return cmd
}

func tasksUpdateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			patch := patchFromFlags(cmd)
			if patch.Empty() {
				return errors.New("nothing to update")
			}
			return updateTask(ctx, cmd, a, args[0], patch)
		}),
	}
	cmd.Flags().StringP("title", "t", "", "Task title")
	taskFieldFlags(cmd)
	return cmd
}

func tasksDoneCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			completed := domain.TaskCompleted
			return updateTask(ctx, cmd, a, args[0], domain.TaskPatch{Status: &completed})
		}),
	}
}

func updateTask(ctx context.Context, cmd *cobra.Command, a *app.App, id string, patch domain.TaskPatch) error {
	if _, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdUpdateTask, usecase.UpdateTaskPayload{ID: id, Patch: patch}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s.\n", id)
	return nil
}

// patchFromFlags sends only the flags the user set; an explicit empty value clears a field.
func patchFromFlags(cmd *cobra.Command) domain.TaskPatch {
	flags := cmd.Flags()
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	patch := domain.TaskPatch{
		Title:       str("title"),
		Description: str("description"),
		DueDate:     str("due"),
		Category:    str("category"),
	}
	if v := str("status"); v != nil {
		status := domain.TaskStatus(*v)
		patch.Status = &status
	}
	if v := str("priority"); v != nil {
		priority := domain.TaskPriority(*v)
		patch.Priority = &priority
	}
	return patch
}

func tasksDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			if _, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdDeleteTask, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s.\n", args[0])
			return nil
		}),
	}
}

func tasksGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			res, err := a.Dispatcher.ExecuteQuery(ctx, usecase.QryTask, args[0])
			if err != nil {
				return err
			}
			t := res.(domain.Task)
			return rt.render(cmd.OutOrStdout(), t, func(w io.Writer) error {
				return writeTask(w, t)
			})
		}),
	}
}

func tasksByCmd(rt *runtime, use, short, query string, param func(string) interface{}) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			res, err := a.Dispatcher.ExecuteQuery(ctx, query, param(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			tasks := res.([]domain.Task)
			return rt.render(cmd.OutOrStdout(), tasks, func(w io.Writer) error {
				return writeTasks(w, tasks)
			})
		}),
	}
}

func statsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise task progress",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			if err := signedIn(a); err != nil {
				return err
			}
			if err := loadFailure(a.Tasks.Snapshot().Error); err != nil {
				return err
			}
			res, err := a.Dispatcher.ExecuteQuery(ctx, usecase.QryTaskStats, nil)
			if err != nil {
				return err
			}
			stats := res.(domain.TaskStats)
			return rt.render(cmd.OutOrStdout(), stats, func(w io.Writer) error {
				return writeStats(w, stats)
			})
		}),
	}
}
