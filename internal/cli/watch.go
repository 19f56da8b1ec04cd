package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/waverider/waverider/internal/channel"
	"github.com/waverider/waverider/internal/store"
	"github.com/waverider/waverider/internal/tui"
)

// AddWatchCommand adds the watch command to the root command.
func AddWatchCommand(root *cobra.Command, flags *GlobalFlags) {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live task progress",
		Long: `Connect to the backend's broadcast channel and print progress updates as
they arrive. Reconnects automatically with backoff when the connection
drops; progress events for unknown session ids are discarded silently.

Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			projectID := ""
			if projectRef != "" {
				p, err := app.resolveProject(cmd.Context(), projectRef)
				if err != nil {
					out.Error(err)
					return err
				}
				projectID = p.ID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ch := channel.New(
				app.Config.Channel.URL,
				channel.Options{
					ReconnectBaseDelay: app.Config.Channel.ReconnectBaseDelay,
					ReconnectMaxDelay:  app.Config.Channel.ReconnectMaxDelay,
					PingInterval:       app.Config.Channel.PingInterval,
				},
				app.Registry,
				app.Terminal.ConnectivityChanged,
				app.Clock,
				app.logger,
			)

			// Print every committed task mutation. Terminal transitions also
			// land in the terminal log.
			subID := app.Store.Subscribe(func(kind store.Kind) {
				if kind != store.KindTasks {
					return
				}
				printTaskUpdates(app, out, projectID)
			})
			defer app.Store.Unsubscribe(subID)

			// The backend scopes subscriptions by project.
			if projectID != "" {
				ch.Subscribe(projectID)
			}

			out.Info("watching for task progress (Ctrl-C to stop)")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return ch.Run(gctx)
			})
			if err := g.Wait(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "limit output to one project")
	root.AddCommand(cmd)
}

// printTaskUpdates prints the freshest progress line for each tracked task
// after every committed task mutation.
func printTaskUpdates(app *App, out tui.Output, projectID string) {
	for _, t := range app.Store.Tasks(projectID) {
		out.Info(tui.TaskLine(t))
	}
}
