package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	recommendLimit int
	recommendJSON  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <track-id>",
	Short: "Print the tracks most similar to a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "k", 0, "Maximum number of recommendations (0 = recommend.default_limit)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.recommender()
	if err != nil {
		return err
	}

	seed, err := rec.Track(ctx, args[0])
	if err != nil {
		return err
	}
	recs, err := rec.Recommend(ctx, seed.ID, recommendLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if recommendJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	fmt.Fprintf(out, "Similar to %s\n", seed)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTITLE\tARTIST\tSIMILARITY")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.4f\n", i+1, r.ID, r.Title, r.Artist, r.Similarity)
	}
	return tw.Flush()
}
