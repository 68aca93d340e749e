package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/wikipath-mcp/internal/search"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

var searchVerbose bool

var searchCmd = &cobra.Command{
	Use:   "search SOURCE TARGET",
	Short: "Find a chain of links from SOURCE to TARGET",
	Long: `Crawl outbound links from SOURCE until TARGET is among the best scoring
links of an expanded page.

By default the crawl is greedy: the best scoring link anywhere in the
frontier is expanded next. --bfs expands breadth first instead, keeping at
most --neighbors links per page.

Prints the adjacency list, the visited pages and the ordered path.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	flags := searchCmd.Flags()
	flags.Bool("bfs", false, "expand breadth first instead of greedy best first")
	flags.IntP("neighbors", "n", search.DefaultNeighborsToCheck, "best scoring links kept per page")
	flags.Bool("word-uniqueness", true, "weight title words by corpus rarity")
	flags.Int("workers", search.DefaultWorkers, "pages fetched concurrently ahead of the crawl")
	flags.Int("max-steps", 0, "maximum pages to expand (0 for no limit)")
	flags.Duration("timeout", 0, "abort the crawl after this long (0 for no limit)")
	flags.BoolVarP(&searchVerbose, "verbose", "v", false, "print every visited page and its links")

	bindFlag(flags.Lookup("bfs"), "search.use_bfs")
	bindFlag(flags.Lookup("neighbors"), "search.neighbors_to_check")
	bindFlag(flags.Lookup("word-uniqueness"), "search.word_uniqueness")
	bindFlag(flags.Lookup("workers"), "search.workers")
	bindFlag(flags.Lookup("max-steps"), "search.max_steps")
	bindFlag(flags.Lookup("timeout"), "search.timeout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	source, _, closeSource, err := openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	engine := search.NewEngine(source, cfg.SearchOptions(args[0], args[1]), logger)

	out := cmd.OutOrStdout()
	if searchVerbose {
		engine.OnVisit(func(rec types.PageRecord, top []types.Candidate) {
			fmt.Fprintf(out, "Visiting %s\n", rec.Title)
			if top == nil {
				fmt.Fprintln(out, "  (no links)")
				return
			}
			titles := make([]string, len(top))
			for i, c := range top {
				titles[i] = fmt.Sprintf("%s (%.2f)", c.Title, c.Score)
			}
			fmt.Fprintf(out, "  %s\n", strings.Join(titles, ", "))
		})
	}

	result, err := engine.Search(cmd.Context())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Fprint(out, engine.Summary().String())
	if result.BudgetExceeded {
		fmt.Fprintf(out, "Stopped after %d pages (max steps reached)\n", result.VisitedCount)
	}
	fmt.Fprintf(out, "Finished in %s\n", result.Duration.Round(time.Millisecond))
	return nil
}
