package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	wrerrors "github.com/waverider/waverider/internal/errors"
	"github.com/waverider/waverider/internal/tui"
)

// AddFileCommand adds the file command group to the root command.
func AddFileCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Work with a project's file tree",
	}
	cmd.AddCommand(newFileCreateCmd(flags))
	cmd.AddCommand(newFileDeleteCmd(flags))
	cmd.AddCommand(newFileRenameCmd(flags))
	cmd.AddCommand(newFileCatCmd(flags))
	cmd.AddCommand(newFileTreeCmd(flags))
	root.AddCommand(cmd)
}

// fileProjectFlag wires the shared --project flag.
func fileProjectFlag(cmd *cobra.Command, projectRef *string) {
	cmd.Flags().StringVarP(projectRef, "project", "p", "", "project id or name (required)")
	_ = cmd.MarkFlagRequired("project")
}

func newFileCreateCmd(flags *GlobalFlags) *cobra.Command {
	var projectRef, content, fromFile string

	cmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Create a file",
		Long: `Create a file in the project's storage. The tree reflects the file only
after storage acknowledges the write; creating an existing path fails.

Examples:
  waverider file create main.py -p wave-demo --content 'print("hi")'
  waverider file create notes.md -p wave-demo --from ./notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			if content != "" && fromFile != "" {
				return wrerrors.Wrap(wrerrors.ErrInvalidInput, "--content and --from are mutually exclusive")
			}
			if fromFile != "" {
				data, err := os.ReadFile(fromFile) //#nosec G304 -- user-supplied local path
				if err != nil {
					return wrerrors.Wrapf(err, "failed to read %q", fromFile)
				}
				content = string(data)
			}

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

			ft := app.FileTree(p.ID)
			if err := ft.Reload(cmd.Context()); err != nil {
				out.Error(err)
				return err
			}
			if err := ft.Create(cmd.Context(), args[0], content); err != nil {
				app.Terminal.FileOpFailed("create", args[0], err)
				out.Error(err)
				return err
			}

			out.Success(fmt.Sprintf("created %s", args[0]))
			return nil
		},
	}

	fileProjectFlag(cmd, &projectRef)
	cmd.Flags().StringVar(&content, "content", "", "file content")
	cmd.Flags().StringVar(&fromFile, "from", "", "read content from a local file")
	return cmd
}

func newFileDeleteCmd(flags *GlobalFlags) *cobra.Command {
	var projectRef string
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			if !force {
				confirmed, err := confirmDelete(args[0])
				if err != nil {
					return err
				}
				if !confirmed {
					out.Info("aborted")
					return nil
				}
			}

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

			ft := app.FileTree(p.ID)
			if err := ft.Reload(cmd.Context()); err != nil {
				out.Error(err)
				return err
			}
			if err := ft.Delete(cmd.Context(), args[0]); err != nil {
				app.Terminal.FileOpFailed("delete", args[0], err)
				out.Error(err)
				return err
			}

			out.Success(fmt.Sprintf("deleted %s", args[0]))
			return nil
		},
	}

	fileProjectFlag(cmd, &projectRef)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

// confirmDelete asks before removing a path. Deletion is the one file
// operation that requires confirmation.
func confirmDelete(path string) (bool, error) {
	var confirm bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", path)).
				Description("This cannot be undone.").
				Affirmative("Yes, delete").
				Negative("No, cancel").
				Value(&confirm),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirm, nil
}

func newFileRenameCmd(flags *GlobalFlags) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "rename <old-path> <new-path>",
		Short: "Rename a file",
		Long: `Rename a file. Storage has no atomic rename, so this copies to the new
path and then deletes the old one. If the delete step fails, both paths
remain until resolved manually; no content is ever lost silently.`,
		Args: cobra.ExactArgs(2),
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

			ft := app.FileTree(p.ID)
			if err := ft.Reload(cmd.Context()); err != nil {
				out.Error(err)
				return err
			}
			if err := ft.Rename(cmd.Context(), args[0], args[1]); err != nil {
				app.Terminal.FileOpFailed("rename", args[0], err)
				if stderrors.Is(err, wrerrors.ErrRenameIncomplete) {
					out.Warning(fmt.Sprintf("rename incomplete: both %s and %s exist", args[0], args[1]))
				}
				out.Error(err)
				return err
			}

			out.Success(fmt.Sprintf("renamed %s to %s", args[0], args[1]))
			return nil
		},
	}

	fileProjectFlag(cmd, &projectRef)
	return cmd
}

func newFileCatCmd(flags *GlobalFlags) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.resolveProject(cmd.Context(), projectRef)
			if err != nil {
				return err
			}

			content, err := app.Backend.Read(cmd.Context(), p.ID, args[0])
			if err != nil {
				app.Terminal.FileOpFailed("read", args[0], err)
				return err
			}
			app.Store.CacheFileContent(p.ID, args[0], content)
			app.Store.SetOpenFile(args[0])

			_, _ = fmt.Fprint(os.Stdout, content)
			return nil
		},
	}

	fileProjectFlag(cmd, &projectRef)
	return cmd
}

func newFileTreeCmd(flags *GlobalFlags) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the project file tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			ft := app.FileTree(p.ID)
			if err := ft.Reload(cmd.Context()); err != nil {
				out.Error(err)
				return err
			}

			nodes := ft.Flatten()
			if flags.Output == OutputJSON {
				return out.JSON(nodes)
			}
			_, _ = fmt.Fprint(os.Stdout, tui.RenderTree(nodes))
			return nil
		},
	}

	fileProjectFlag(cmd, &projectRef)
	return cmd
}
