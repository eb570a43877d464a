package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pomodoro/internal/config"
)

// ConfigView is the effective configuration and where it came from.
type ConfigView struct {
	Path   string        `json:"path"`
	Exists bool          `json:"exists"`
	Config config.Config `json:"config"`
}

// String renders the configuration as the YAML a config file would hold.
func (v ConfigView) String() string {
	data, err := yaml.Marshal(v.Config)
	if err != nil {
		return fmt.Sprintf("# %s\nerror: %v\n", v.Path, err)
	}
	source := v.Path
	if !v.Exists {
		source += " (not found, using defaults)"
	}
	return fmt.Sprintf("# %s\n%s", source, data)
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(rootOpts, cmd)
		},
	}

	cmd.AddCommand(newConfigInitCommand(rootOpts))
	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := rootOpts.configPath()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to locate config", err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return NewExitError(ExitCommandError, fmt.Sprintf("config already exists: %s (use --force to overwrite)", path))
			}
			if err := config.Save(path, config.Default()); err != nil {
				return WrapExitError(ExitCommandError, "failed to write config", err)
			}
			return rootOpts.formatter(cmd).Success(ConfigView{Path: path, Exists: true, Config: config.Default()})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func showConfig(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	path, err := opts.configPath()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to locate config", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		_ = out.Error(ErrCodeConfig, "invalid configuration", err.Error())
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	_, statErr := os.Stat(path)
	return out.Success(ConfigView{Path: path, Exists: statErr == nil, Config: cfg})
}
