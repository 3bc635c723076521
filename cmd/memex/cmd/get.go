package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/output"
)

func newGetCmd(g *globals) *cobra.Command {
	var (
		ids    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "get [id...]",
		Short: "Show memories by id",
		Long: `Show the full content of memories by id, in index order.

Ids may be given as arguments or comma-separated with --ids, with or
without the "mem-" prefix shown in search results. Unknown ids are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wanted := splitIDs(append(args, ids))
			if len(wanted) == 0 {
				return mxerrors.New(mxerrors.ErrCodeInvalidInput, "no ids given", nil).
					WithSuggestion("Pass ids from 'memex search -f index', e.g. memex get 3f2a9c01d4e5,b81c07a2ff90")
			}
			f, err := output.ParseFormat(format)
			if err != nil {
				return mxerrors.New(mxerrors.ErrCodeInvalidInput, err.Error(), nil)
			}

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.engine.GetByIDs(cmd.Context(), wanted)
			if err != nil {
				return err
			}
			return output.New(cmd.OutOrStdout()).Results(results, f)
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", "Comma-separated ids")
	cmd.Flags().StringVarP(&format, "format", "f", "full", "Output format: full, index, json")

	return cmd
}

// splitIDs splits comma-separated values and drops empty ids.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
