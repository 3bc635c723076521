package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/memory"
	"github.com/Aman-CERP/memex/internal/output"
	"github.com/Aman-CERP/memex/internal/search"
)

func newSearchCmd(g *globals) *cobra.Command {
	var (
		limit  int
		layer  string
		since  string
		entity string
		format string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search your memories",
		Long: `Rank every indexed memory by TF-IDF cosine similarity to the query.

The index is built on first use if it does not exist yet.

Examples:
  memex search "deploy checklist"
  memex search kubernetes --layer daily --since 2026-01-01
  memex search pricing -f index`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return mxerrors.New(mxerrors.ErrCodeQueryEmpty, "query must not be empty", nil)
			}
			f, err := output.ParseFormat(format)
			if err != nil {
				return mxerrors.New(mxerrors.ErrCodeInvalidInput, err.Error(), nil)
			}
			opts := search.Options{Limit: limit, Since: since, Entity: entity}
			if layer != "" {
				l, err := memory.ParseLayer(layer)
				if err != nil {
					return mxerrors.New(mxerrors.ErrCodeInvalidInput, err.Error(), nil)
				}
				opts.Layer = l
			}

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()

			if opts.Limit <= 0 {
				opts.Limit = a.cfg.Search.DefaultLimit
			}
			results, err := a.engine.Search(cmd.Context(), query, opts)
			if err != nil {
				return err
			}
			return output.New(cmd.OutOrStdout()).Results(results, f)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVar(&layer, "layer", "", "Only search one layer (daily, tacit, knowledge_graph, tools)")
	cmd.Flags().StringVar(&since, "since", "", "Only memories dated on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&entity, "entity", "", "Only facts about this entity")
	cmd.Flags().StringVarP(&format, "format", "f", "full", "Output format: full, index, json")

	return cmd
}
