package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/memex/internal/config"
	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/output"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage memex configuration",
		Long: `Configuration is layered: built-in defaults, the user file
(~/.config/memex/config.yaml), the workspace file (.memex.yaml), then
MEMEX_* environment variables. Later layers win.`,
	}

	cmd.AddCommand(newConfigInitCmd(g))
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigPathCmd(g))

	return cmd
}

func newConfigInitCmd(g *globals) *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			if project {
				ws, err := workspaceDir(g)
				if err != nil {
					return err
				}
				path = filepath.Join(ws, config.ProjectFileName)
			}

			backup, err := config.InitFile(path, force)
			if err != nil {
				return mxerrors.New(mxerrors.ErrCodeConfigInvalid, err.Error(), err).
					WithSuggestion("Use --force to overwrite (the old file is backed up)")
			}

			out := output.New(cmd.OutOrStdout())
			if backup != "" {
				out.Status("💾", "Backed up previous config to "+backup)
			}
			out.Success("Wrote " + path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&project, "project", false, "Write .memex.yaml in the workspace instead of the user config")

	return cmd
}

func newConfigShowCmd(g *globals) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if jsonOut {
				return output.New(cmd.OutOrStdout()).JSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := workspaceDir(g)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "user:      %s\n", config.GetUserConfigPath())
			fmt.Fprintf(w, "workspace: %s\n", filepath.Join(ws, config.ProjectFileName))
			return nil
		},
	}
}

// workspaceDir returns the workspace the configuration resolves to.
func workspaceDir(g *globals) (string, error) {
	cfg, err := g.config()
	if err != nil {
		return "", err
	}
	return cfg.Workspace, nil
}
