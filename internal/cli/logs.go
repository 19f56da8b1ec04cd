package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/waverider/waverider/internal/terminal"
	"github.com/waverider/waverider/internal/tui"
)

// AddLogsCommand adds the logs command to the root command.
func AddLogsCommand(root *cobra.Command, flags *GlobalFlags) {
	var tail int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the persisted terminal log",
		Long: `Show the terminal log: connectivity changes, task lifecycle events, and
file operation failures. The log is capped; oldest entries are dropped
first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			entries := app.Store.TerminalLog()
			if tail > 0 && len(entries) > tail {
				entries = entries[len(entries)-tail:]
			}

			if flags.Output == OutputJSON {
				return out.JSON(entries)
			}
			if len(entries) == 0 {
				out.Info("terminal log is empty")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Message)
				switch e.Level {
				case terminal.LevelError:
					out.Error(stderrors.New(line))
				case terminal.LevelWarn:
					out.Warning(line)
				default:
					out.Info(line)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 0, "show only the last N entries")
	root.AddCommand(cmd)
}
