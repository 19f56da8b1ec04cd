package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/waverider/waverider/internal/tui"
)

// AddProjectCommand adds the project command group to the root command.
func AddProjectCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectCreateCmd(flags))
	cmd.AddCommand(newProjectListCmd(flags))
	cmd.AddCommand(newProjectShowCmd(flags))
	root.AddCommand(cmd)
}

func newProjectCreateCmd(flags *GlobalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Long: `Create a new project on the backend and cache it locally.

Examples:
  waverider project create wave-demo
  waverider project create wave-demo --description "Demo project"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.Backend.CreateProject(cmd.Context(), args[0], description)
			if err != nil {
				out.Error(err)
				return err
			}
			app.Store.PutProject(p)

			if flags.Output == OutputJSON {
				return out.JSON(p)
			}
			out.Success(fmt.Sprintf("project %q created (%s)", p.Name, p.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	return cmd
}

func newProjectListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			// Refresh the local cache when the backend is reachable; list
			// still works offline from persisted state.
			if projects, err := app.Backend.Projects(cmd.Context()); err == nil {
				for _, p := range projects {
					app.Store.PutProject(p)
				}
			} else {
				out.Warning("backend unreachable, showing cached projects")
			}

			projects := app.Store.Projects()
			sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })

			if flags.Output == OutputJSON {
				return out.JSON(projects)
			}
			if len(projects) == 0 {
				out.Info("no projects")
				return nil
			}
			for _, p := range projects {
				out.Info(fmt.Sprintf("%s  %s", p.ID, p.Name))
			}
			return nil
		},
	}
}

func newProjectShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.resolveProject(cmd.Context(), args[0])
			if err != nil {
				out.Error(err)
				return err
			}

			if flags.Output == OutputJSON {
				return out.JSON(p)
			}
			out.Info(fmt.Sprintf("ID:          %s", p.ID))
			out.Info(fmt.Sprintf("Name:        %s", p.Name))
			if p.Description != "" {
				out.Info(fmt.Sprintf("Description: %s", p.Description))
			}
			out.Info(fmt.Sprintf("Created:     %s", p.CreatedAt.Format("2006-01-02 15:04:05")))

			tasks := app.Store.Tasks(p.ID)
			out.Info(fmt.Sprintf("Tasks:       %d", len(tasks)))
			return nil
		},
	}
}
