// Package cli is the command-line surface of the client. Every command runs
// one intent through the app dispatcher and renders the resulting store state.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/internal/app"
	"github.com/fastygo/taskdesk/internal/config"
	"github.com/fastygo/taskdesk/pkg/logger"
)

// sessionExpiredNotice is shown whenever the backend rejects the stored session.
const sessionExpiredNotice = "Session expired. Please sign in again with `taskdesk signin`."

type runtime struct {
	opts    []app.Option
	verbose bool
	jsonOut bool
}

type runFunc func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error

// NewRootCommand builds the command tree. opts are passed to every app the
// commands construct.
func NewRootCommand(version string, opts ...app.Option) *cobra.Command {
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:   "taskdesk",
		Short: "Taskdesk - personal task manager client",
		Long: `Taskdesk talks to the task backend configured by API_URL.

Credentials are kept in the store selected by CREDENTIAL_STORE (bolt, sqlite,
redis or memory) so a session survives between invocations.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&rt.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(signupCmd(rt))
	root.AddCommand(signinCmd(rt))
	root.AddCommand(signoutCmd(rt))
	root.AddCommand(whoamiCmd(rt))
	root.AddCommand(refreshCmd(rt))
	root.AddCommand(forgotPasswordCmd(rt))
	root.AddCommand(resetPasswordCmd(rt))
	root.AddCommand(tasksCmd(rt))
	root.AddCommand(statsCmd(rt))
	root.AddCommand(categoriesCmd(rt))
	root.AddCommand(watchCmd(rt))

	return root
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// run builds the app for one command and closes it afterwards.
func (rt *runtime) run(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		level := cfg.Logger.Level
		if rt.verbose {
			level = "debug"
		}
		log, err := logger.New(logger.Config{
			Level:    level,
			Encoding: cfg.Logger.Encoding,
			Output:   cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("logger error: %w", err)
		}
		defer func() { _ = log.Sync() }()

		errOut := cmd.ErrOrStderr()
		opts := append([]app.Option{
			app.OnUnauthorized(func(ctx context.Context) {
				fmt.Fprintln(errOut, sessionExpiredNotice)
			}),
		}, rt.opts...)

		a, err := app.New(cmd.Context(), cfg, log, opts...)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(context.Background()); err != nil {
				log.Error("shutdown failed", zap.Error(err))
			}
		}()

		ctx, cancel := a.Context(cmd.Context())
		defer cancel()
		return fn(ctx, cmd, args, a)
	}
}
