package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/waverider/waverider/internal/backend"
	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	"github.com/waverider/waverider/internal/tui"
)

var (
	glamourRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer for performance
	glamourRendererOnce sync.Once             //nolint:gochecknoglobals // sync.Once for renderer initialization
)

// getGlamourRenderer returns a cached glamour renderer for markdown
// rendering. The renderer is initialized once and reused across all calls.
func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// renderMarkdown renders agent markdown for the terminal, falling back to
// the raw text when no renderer is available.
func renderMarkdown(content string) string {
	if r := getGlamourRenderer(); r != nil {
		if rendered, err := r.Render(content); err == nil {
			return rendered
		}
	}
	return content
}

// AddChatCommand adds the chat command to the root command.
func AddChatCommand(root *cobra.Command, flags *GlobalFlags) {
	var projectRef string
	var history bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with an agent about a project",
		Long: `Send a chat message scoped to a project, or show the transcript.

The transcript is append-only and survives restarts. Agent replies are
rendered as markdown.

Examples:
  waverider chat "add a readme" --project wave-demo
  waverider chat --history --project wave-demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if history {
				return showChatHistory(app, out, flags.Output)
			}
			if len(args) == 0 {
				return cmd.Help()
			}

			p, err := app.resolveProject(cmd.Context(), projectRef)
			if err != nil {
				out.Error(err)
				return err
			}

			message := strings.Join(args, " ")
			reply, err := sendChat(cmd.Context(), app, p.ID, message)
			if err != nil {
				out.Error(err)
				return err
			}

			if flags.Output == OutputJSON {
				return out.JSON(reply)
			}
			_, _ = fmt.Fprint(os.Stdout, renderMarkdown(reply.Response))
			for _, f := range reply.FilesCreated {
				out.Success("created " + f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or name")
	cmd.Flags().BoolVar(&history, "history", false, "show the chat transcript")
	root.AddCommand(cmd)
}

// sendChat appends the user message to the transcript, sends it to the
// backend, and appends the agent reply with any created files noted in the
// terminal log.
func sendChat(ctx context.Context, app *App, projectID, message string) (backend.ChatReply, error) {
	app.Store.AppendChat(domain.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    constants.SenderUser,
		Content:   message,
		Timestamp: app.Clock.Now().UTC(),
	})

	reply, err := app.Backend.SendChat(ctx, projectID, message)
	if err != nil {
		return backend.ChatReply{}, err
	}

	app.Store.AppendChat(domain.ChatMessage{
		ID:           uuid.NewString(),
		Sender:       constants.SenderAgent,
		Content:      reply.Response,
		Timestamp:    app.Clock.Now().UTC(),
		FilesCreated: reply.FilesCreated,
	})
	for _, f := range reply.FilesCreated {
		app.Terminal.Info("chat created file %s", f)
	}

	return reply, nil
}

func showChatHistory(app *App, out tui.Output, format string) error {
	messages := app.Store.ChatHistory()
	if format == OutputJSON {
		return out.JSON(messages)
	}
	if len(messages) == 0 {
		out.Info("no chat history")
		return nil
	}
	for _, m := range messages {
		prefix := "you"
		if m.Sender == constants.SenderAgent {
			prefix = "agent"
		}
		out.Info(fmt.Sprintf("[%s] %s", prefix, m.Timestamp.Format("15:04:05")))
		if m.Sender == constants.SenderAgent {
			_, _ = fmt.Fprint(os.Stdout, renderMarkdown(m.Content))
		} else {
			_, _ = fmt.Fprintln(os.Stdout, m.Content)
		}
	}
	return nil
}
