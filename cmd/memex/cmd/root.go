// Package cmd provides the CLI commands for memex.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/memex/internal/config"
	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/logging"
	"github.com/Aman-CERP/memex/internal/profiling"
	"github.com/Aman-CERP/memex/pkg/version"
)

// globals holds persistent flags and state shared by subcommands.
type globals struct {
	workspace string
	debug     bool
	profile   profiling.Options

	cfg        *config.Config
	cfgErr     error
	loaded     bool
	session    *profiling.Session
	logCleanup func()
}

// config loads the configuration once per invocation.
func (g *globals) config() (*config.Config, error) {
	if !g.loaded {
		g.cfg, g.cfgErr = config.Load(g.workspace)
		g.loaded = true
	}
	return g.cfg, g.cfgErr
}

// NewRootCmd creates the root command for the memex CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globals{})
}

func newRootCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memex",
		Short: "Search and replay your personal memory files",
		Long: `memex indexes daily notes, tacit knowledge files, a knowledge graph of
entity facts and tool documentation into one TF-IDF index, then answers
ranked searches, id lookups and time-window timelines over it.

Run 'memex index' once, then 'memex search <query>'.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("memex version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&g.workspace, "workspace", "w", "", "Workspace directory (default: $MEMEX_WORKSPACE or current directory)")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to ~/.memex/logs/")
	cmd.PersistentFlags().StringVar(&g.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return g.start()
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return g.stop()
	}

	cmd.AddCommand(newIndexCmd(g))
	cmd.AddCommand(newSearchCmd(g))
	cmd.AddCommand(newGetCmd(g))
	cmd.AddCommand(newTimelineCmd(g))
	cmd.AddCommand(newStatsCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start sets up logging and profiling before a command runs.
func (g *globals) start() error {
	level := "warn"
	if cfg, err := g.config(); err == nil {
		level = cfg.Logging.Level
	}

	cleanup, err := logging.SetupCLI(level, g.debug)
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	g.logCleanup = cleanup

	if g.profile.Enabled() {
		g.session, err = profiling.Start(g.profile)
		if err != nil {
			return err
		}
	}
	return nil
}

// stop flushes profiles and closes the debug log. Safe to call twice.
func (g *globals) stop() error {
	var err error
	if g.session != nil {
		err = g.session.Stop()
		g.session = nil
	}
	if g.logCleanup != nil {
		g.logCleanup()
		g.logCleanup = nil
	}
	return err
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	g := &globals{}
	err := newRootCmd(g).Execute()
	if err != nil {
		slog.LogAttrs(context.Background(), slog.LevelDebug, "command_failed", mxerrors.LogAttrs(err)...)
	}
	// PersistentPostRunE is skipped when a command fails.
	if stopErr := g.stop(); err == nil {
		err = stopErr
	}
	if err != nil {
		fmt.Fprint(os.Stderr, mxerrors.FormatForCLI(err, g.debug))
	}
	return err
}
