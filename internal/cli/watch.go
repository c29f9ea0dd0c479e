package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/app"
)

func watchCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep tasks and categories in sync until interrupted",
		Long: `Refetch tasks and categories periodically and renew the session before it
expires. Stops on SIGINT or SIGTERM, or when the session ends.`,
		Args: cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			if err := signedIn(a); err != nil {
				return err
			}
			interval, _ := cmd.Flags().GetDuration("interval")

			// watch is long-running; only signals and sign-out end it
			watchCtx, stop := a.Lifecycle().SignalContext(context.WithoutCancel(ctx))
			defer stop()

			out := cmd.OutOrStdout()
			a.Session.Subscribe(func(ctx context.Context, prev, next domain.AuthState) {
				if prev.Ready() && !next.Ready() {
					fmt.Fprintln(out, "Signed out, stopping.")
					stop()
				}
			})

			syncer, err := a.EnableSync(interval)
			if err != nil {
				return err
			}
			syncer.Start()
			fmt.Fprintf(out, "Watching %d tasks (Ctrl+C to stop).\n", len(a.Tasks.Tasks()))

			<-watchCtx.Done()

			stats := a.Tasks.Stats()
			fmt.Fprintf(out, "%d tasks, %d active, %d%% completed.\n", stats.Total, stats.Active, stats.CompletionRate)
			return nil
		}),
	}
	cmd.Flags().Duration("interval", 0, fmt.Sprintf("Sync interval (default SYNC_INTERVAL or %s)", 30*time.Second))
	return cmd
}
