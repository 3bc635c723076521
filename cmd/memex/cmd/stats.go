package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/memex/internal/index"
	"github.com/Aman-CERP/memex/internal/output"
	"github.com/Aman-CERP/memex/internal/telemetry"
)

func newStatsCmd(g *globals) *cobra.Command {
	var (
		jsonOut bool
		days    int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics and query telemetry",
		Long: `Show entry counts per layer, whether the index still matches the
memory files, and a summary of recent queries when telemetry is enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.engine.Stats(ctx)
			if err != nil {
				return err
			}
			report := &output.StatsReport{Index: stats}

			if artifact, err := a.engine.Artifact(ctx); err == nil {
				fresh, err := index.CheckFreshness(ctx, a.cfg.Sources(), a.cfg.ArtifactPath(), artifact)
				if err != nil {
					return err
				}
				report.Freshness = fresh
			}

			if a.recorder != nil {
				if days < 1 {
					days = 1
				}
				to := time.Now()
				from := to.AddDate(0, 0, -(days - 1))
				snap, err := a.recorder.Snapshot(ctx, from.Format(time.DateOnly), to.Format(time.DateOnly), telemetry.DefaultTopTerms)
				if err != nil {
					slog.Warn("telemetry_snapshot_failed", slog.String("error", err.Error()))
				} else {
					report.Telemetry = snap
				}
			}

			return output.New(cmd.OutOrStdout()).Stats(report, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&days, "days", 7, "Days of query telemetry to summarize")

	return cmd
}
