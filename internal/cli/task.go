package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	"github.com/waverider/waverider/internal/session"
	"github.com/waverider/waverider/internal/tui"
)

// AddTaskCommand adds the task command group to the root command.
func AddTaskCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Submit and track agent tasks",
	}
	cmd.AddCommand(newTaskStartCmd(flags))
	cmd.AddCommand(newTaskStatusCmd(flags))
	cmd.AddCommand(newTaskListCmd(flags))
	root.AddCommand(cmd)
}

func newTaskStartCmd(flags *GlobalFlags) *cobra.Command {
	var projectRef, agentKind string

	cmd := &cobra.Command{
		Use:   "start <description>",
		Short: "Submit an agent task",
		Long: `Submit a task to the backend and track it locally under the session id
the backend allocates.

Examples:
  waverider task start "build a snake game" --project wave-demo
  waverider task start "add tests" -p wave-demo --agent code`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.resolveProject(cmd.Context(), projectRef)
			if err != nil {
				out.Error(err)
				return err
			}

			description := strings.Join(args, " ")
			sessionID, err := app.Backend.SubmitTask(cmd.Context(), p.ID, description, agentKind)
			if err != nil {
				out.Error(err)
				return err
			}

			if err := app.Registry.AdoptTask(sessionID, p.ID, description, agentKind); err != nil {
				out.Error(err)
				return err
			}
			if err := app.Sessions.Register(sessionID, session.Context{
				ProjectID: p.ID,
				Surface:   "cli",
			}); err != nil {
				app.logger.Warn().Err(err).Str("session_id", sessionID).Msg("session context not registered")
			}
			app.Terminal.TaskStarted(sessionID, description)

			if flags.Output == OutputJSON {
				return out.JSON(map[string]string{"session_id": sessionID})
			}
			out.Success(fmt.Sprintf("task submitted, session %s", sessionID))
			out.Info(fmt.Sprintf("follow it with: waverider watch --project %s", p.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or name (required)")
	cmd.Flags().StringVar(&agentKind, "agent", "code", "agent kind to run the task")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskStatusCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the status of one task",
		Long: `Show a task's status, polling the backend for the freshest state.

Polling complements the broadcast channel: it works even when no watch
session was running while the task progressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			sessionID := args[0]
			task, err := refreshTask(cmd.Context(), app, sessionID)
			if err != nil {
				out.Error(err)
				return err
			}

			out.Task(task)
			return nil
		},
	}
}

// refreshTask polls the backend and folds the result into the local record.
// Falls back to the local record when the backend is unreachable; an id
// unknown on both sides is an error.
func refreshTask(ctx context.Context, app *App, sessionID string) (domain.AgentTask, error) {
	rec, pollErr := app.Backend.TaskStatus(ctx, sessionID)
	local, localErr := app.Registry.Task(sessionID)

	if pollErr != nil {
		if localErr != nil {
			return domain.AgentTask{}, pollErr
		}
		app.logger.Debug().Err(pollErr).Str("session_id", sessionID).Msg("backend poll failed, using local record")
		return local, nil
	}

	if localErr != nil {
		// Task unknown locally (created before a reload, or on another
		// client). Adopt it so progress tracking works from here on.
		if err := app.Registry.AdoptTask(sessionID, "", "", ""); err != nil {
			return domain.AgentTask{}, err
		}
	}

	// A poll answering "pending" is not a progress event; folding it in
	// would push the local record to running before the agent started.
	if rec.Status != constants.TaskStatusPending {
		app.Registry.ApplyProgress(domain.ProgressEvent{
			SessionID: sessionID,
			Progress:  rec.Progress,
			Status:    string(rec.Status),
			Message:   rec.Message,
		})
	}
	switch rec.Status {
	case constants.TaskStatusCompleted:
		result := domain.TaskResult{Success: true}
		if rec.Result != nil {
			result = *rec.Result
		}
		if err := app.Registry.Complete(sessionID, result); err != nil {
			return domain.AgentTask{}, err
		}
		app.Terminal.TaskFinished(sessionID, true)
	case constants.TaskStatusFailed:
		reason := rec.Message
		if rec.Result != nil && len(rec.Result.Errors) > 0 {
			reason = rec.Result.Errors[0]
		}
		if err := app.Registry.Fail(sessionID, reason); err != nil {
			return domain.AgentTask{}, err
		}
		app.Terminal.TaskFinished(sessionID, false)
	}

	return app.Registry.Task(sessionID)
}

func newTaskListCmd(flags *GlobalFlags) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked tasks",
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

			tasks := app.Store.Tasks(projectID)
			sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })

			if flags.Output == OutputJSON {
				return out.JSON(tasks)
			}
			if len(tasks) == 0 {
				out.Info("no tracked tasks (task records are not persisted across restarts)")
				return nil
			}
			for _, t := range tasks {
				out.Info(tui.TaskLine(t))
				if t.Description != "" {
					out.Detail(t.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "filter by project id or name")
	return cmd
}
