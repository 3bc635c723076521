package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/memex/internal/output"
	"github.com/Aman-CERP/memex/internal/watcher"
)

func newIndexCmd(g *globals) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the memory index",
		Long: `Collect every memory layer and rebuild the TF-IDF index from scratch.

With --watch, memex stays running and rebuilds whenever a memory file
changes. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIndex(ctx, cmd, g, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and rebuild when memory files change")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, g *globals, watch bool) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.Close()

	out := output.New(cmd.OutOrStdout())
	out.Status("🔍", "Indexing memories...")
	report, err := a.builder.Build(ctx)
	if err != nil {
		return err
	}
	out.BuildReport(report)
	if report.ArtifactPath != "" {
		out.Status("💾", "Saved to "+report.ArtifactPath)
	}

	if !watch {
		return nil
	}
	return watchAndRebuild(ctx, a, out)
}

// watchAndRebuild rebuilds the index after every debounced batch of changes.
func watchAndRebuild(ctx context.Context, a *app, out *output.Writer) error {
	w, err := watcher.New(a.cfg.Sources().Roots(), watcher.Options{
		DebounceWindow: a.cfg.WatchDebounce(),
		ArtifactPath:   a.cfg.ArtifactPath(),
		IgnorePatterns: a.cfg.Watch.Ignore,
		ForcePolling:   a.cfg.Watch.Polling,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	out.Newline()
	out.Statusf("👀", "Watching for changes (%s), Ctrl+C to stop", w.Mode())

	events, errs := w.Events(), w.Errors()
	for {
		select {
		case <-ctx.Done():
			out.Status("", "Stopped watching")
			return nil
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("watch_error", slog.String("error", err.Error()))
		case batch, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			slog.Info("watch_rebuild", slog.Int("changes", len(batch)))
			out.Newline()
			out.Statusf("🔄", "%d changed, rebuilding...", len(batch))
			report, err := a.builder.Build(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				out.Error(err.Error())
				continue
			}
			out.BuildReport(report)
		}
	}
}
