package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/waverider/waverider/internal/config"
	wrerrors "github.com/waverider/waverider/internal/errors"
	"github.com/waverider/waverider/internal/tui"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}
	cmd.AddCommand(newConfigInitCmd(flags))
	cmd.AddCommand(newConfigShowCmd(flags))
	root.AddCommand(cmd)
}

func newConfigInitCmd(flags *GlobalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default global config file",
		Long: `Write the default configuration to the global config file
(~/.waverider/config.yaml) as a starting point for edits. Refuses to
overwrite an existing file unless --force is given.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			path, err := config.GlobalConfigPath()
			if err != nil {
				out.Error(err)
				return err
			}
			if _, statErr := os.Stat(path); statErr == nil && !force {
				err = wrerrors.Wrapf(wrerrors.ErrConflict, "%s already exists (use --force to overwrite)", path)
				out.Error(err)
				return err
			}

			data, err := yaml.Marshal(config.DefaultConfig())
			if err != nil {
				return wrerrors.Wrap(err, "failed to marshal default config")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return wrerrors.Wrap(err, "failed to create config directory")
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				err = wrerrors.Wrap(err, "failed to write config file")
				out.Error(err)
				return err
			}

			out.Success(fmt.Sprintf("wrote %s", path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging defaults, the global config file,
the project config file, and environment overrides.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(os.Stdout, flags.Output)

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				out.Error(err)
				return err
			}

			if flags.Output == OutputJSON {
				return out.JSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return wrerrors.Wrap(err, "failed to marshal config")
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
