package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/app"
	"github.com/fastygo/taskdesk/usecase"
)

func categoriesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			if err := signedIn(a); err != nil {
				return err
			}
			if err := loadFailure(a.Categories.Snapshot().Error); err != nil {
				return err
			}
			res, err := a.Dispatcher.ExecuteQuery(ctx, usecase.QryCategories, nil)
			if err != nil {
				return err
			}
			categories := res.([]domain.Category)
			return rt.render(cmd.OutOrStdout(), categories, func(w io.Writer) error {
				return writeCategories(w, categories)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			res, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdCreateCategory, strings.Join(args, " "))
			if err != nil {
				return err
			}
			created := res.(domain.Category)
			return rt.render(cmd.OutOrStdout(), created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created category %q.\n", created.Name)
				return err
			})
		}),
	})
	return cmd
}
