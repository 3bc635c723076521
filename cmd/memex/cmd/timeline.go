package cmd

import (
	"github.com/spf13/cobra"

	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/output"
	"github.com/Aman-CERP/memex/internal/timeline"
)

func newTimelineCmd(g *globals) *cobra.Command {
	var (
		anchor  timeline.Anchor
		before  int
		after   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show what happened around a memory or date",
		Long: `Gather daily note headlines and knowledge graph facts in a window
around an anchor. The anchor is a memory id, a date, or the best match of
a query, checked in that order.

Examples:
  memex timeline --date 2026-03-14
  memex timeline --id mem-3f2a9c01d4e5 --before 48
  memex timeline --query "launch retro" --after 72`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if anchor.IsZero() {
				return mxerrors.New(mxerrors.ErrCodeInvalidInput, "an anchor is required", nil).
					WithSuggestion("Use --id, --date or --query")
			}
			for name, v := range map[string]*int{"before": &before, "after": &after} {
				if cmd.Flags().Changed(name) && *v < 0 {
					return mxerrors.New(mxerrors.ErrCodeInvalidInput, "--"+name+" must not be negative", nil)
				}
			}

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("before") {
				before = a.cfg.Timeline.HoursBefore
			}
			if !cmd.Flags().Changed("after") {
				after = a.cfg.Timeline.HoursAfter
			}
			res, err := a.timeline.Timeline(cmd.Context(), anchor, before, after)
			if err != nil {
				return err
			}
			return output.New(cmd.OutOrStdout()).Timeline(res, jsonOut)
		},
	}

	cmd.Flags().StringVar(&anchor.ID, "id", "", "Anchor on a memory id")
	cmd.Flags().StringVar(&anchor.Date, "date", "", "Anchor on a date (YYYY-MM-DD or ISO date-time)")
	cmd.Flags().StringVar(&anchor.Query, "query", "", "Anchor on the best match of a search")
	cmd.Flags().IntVar(&before, "before", 24, "Hours before the anchor")
	cmd.Flags().IntVar(&after, "after", 24, "Hours after the anchor")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
