package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillstack/skillmcp/pkg/presenter"
	"github.com/skillstack/skillmcp/pkg/search"
	"github.com/skillstack/skillmcp/pkg/types/skills"
)

var (
	searchContent  bool
	searchAll      bool
	searchLimit    int
	searchMinScore float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the skill index",
	Long: `Search skill metadata by default. Use --content for full-text search
over document bodies, or --all for both.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := buildStore(ctx, cfg)
		if err != nil {
			return err
		}
		engine := search.NewEngine(store)

		opts := skills.SearchOptions{Limit: searchLimit, MinScore: searchMinScore}
		var results skills.SearchResults
		switch {
		case searchAll:
			results = engine.SearchAll(ctx, query, opts)
		case searchContent:
			results = engine.SearchContent(ctx, query, opts)
		default:
			results = engine.SearchSkills(ctx, query, opts)
		}

		if results.IsEmpty() {
			presenter.Info(fmt.Sprintf("No results for %q", query))
			return nil
		}

		presenter.Section(fmt.Sprintf("Results for %q (%d)", query, results.TotalMatches))
		for i := range results.Results {
			r := &results.Results[i]
			presenter.Info(fmt.Sprintf("%-30s %.2f  %s", r.DisplayID(), r.Score, r.MatchType))
			if r.Snippet != "" {
				presenter.Info("    " + r.Snippet)
			}
		}
		if results.Truncated {
			presenter.Info(fmt.Sprintf("(showing %d of %d matches)", len(results.Results), results.TotalMatches))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchContent, "content", false, "Search document bodies instead of metadata")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "Search metadata and document bodies")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (default 10, capped at 100)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "Drop results scoring below this value")
}
