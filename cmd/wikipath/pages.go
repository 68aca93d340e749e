package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/wikipath-mcp/internal/relevance"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

var (
	freqTop    int
	rankLimit  int
	rankUnique bool
)

var linksCmd = &cobra.Command{
	Use:   "links TITLE",
	Short: "Print the outbound links of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _, closeSource, err := openSource()
		if err != nil {
			return err
		}
		defer closeSource()

		links, err := source.Outlinks(cmd.Context(), types.NormalizeTitle(args[0]))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, link := range links {
			fmt.Fprintln(out, link)
		}
		return nil
	},
}

var textCmd = &cobra.Command{
	Use:   "text TITLE",
	Short: "Print the plain text of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _, closeSource, err := openSource()
		if err != nil {
			return err
		}
		defer closeSource()

		text, err := source.Text(cmd.Context(), types.NormalizeTitle(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var freqCmd = &cobra.Command{
	Use:   "freq TITLE",
	Short: "Print the word counts of a page, most frequent first",
	Long: `Print the word profile the crawl scores links against when TITLE is the
target: word counts of the page text with stop words removed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _, closeSource, err := openSource()
		if err != nil {
			return err
		}
		defer closeSource()

		text, err := source.Text(cmd.Context(), types.NormalizeTitle(args[0]))
		if err != nil {
			return err
		}

		counts := relevance.WordFrequency(text)
		if freqTop > 0 && len(counts) > freqTop {
			counts = counts[:freqTop]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, wc := range counts {
			fmt.Fprintf(w, "%s\t%d\n", wc.Word, wc.Count)
		}
		return w.Flush()
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank TITLE TARGET",
	Short: "Score the links of TITLE against TARGET",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _, closeSource, err := openSource()
		if err != nil {
			return err
		}
		defer closeSource()

		title := types.NormalizeTitle(args[0])
		target := types.NormalizeTitle(args[1])

		unique := cfg.Search.WordUniqueness
		if cmd.Flags().Changed("word-uniqueness") {
			unique = rankUnique
		}

		profile, err := relevance.TargetProfile(cmd.Context(), source, target)
		if err != nil {
			return err
		}
		top, err := relevance.NewScorer(source, unique).TopCandidates(cmd.Context(), title, profile, rankLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for i, c := range top {
			fmt.Fprintf(w, "%d\t%s\t%.4f\n", i+1, c.Title, c.Score)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(linksCmd, textCmd, freqCmd, rankCmd)

	freqCmd.Flags().IntVar(&freqTop, "top", 25, "number of words to print (0 for all)")

	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 10, "number of candidates to print")
	rankCmd.Flags().BoolVar(&rankUnique, "word-uniqueness", true, "weight title words by corpus rarity")
}
