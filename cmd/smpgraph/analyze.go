package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ngudow/SMP-graph/internal/analytics"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio ACCOUNT_ID",
	Short: "Show an account's net positions",
	Long: `Derive the portfolio of an account: net shares per instrument
(BUY amounts minus SELL amounts), keeping only strictly positive positions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			positions, err := a.reader.Portfolio(ctx, args[0])
			if err != nil {
				return err
			}

			if done, err := render(positions); done {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TICKER\tSHARES\tCOMPANY\tSECTOR")
			for _, p := range positions {
				fmt.Fprintf(w, "%s\t%g\t%s\t%s\n", p.Ticker, p.Shares, p.Company, p.Sector)
			}
			return w.Flush()
		})
	},
}

var historyDays int

var historyCmd = &cobra.Command{
	Use:   "history TICKER",
	Short: "Show recent closing prices for an instrument",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			points, err := a.reader.PriceHistory(ctx, args[0], historyDays)
			if err != nil {
				return err
			}

			if done, err := render(points); done {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCLOSE")
			for _, p := range points {
				fmt.Fprintf(w, "%s\t%g\n", p.Date, p.Close)
			}
			return w.Flush()
		})
	},
}

var correlatedThreshold float64

var correlatedCmd = &cobra.Command{
	Use:   "correlated TICKER",
	Short: "Show instruments correlated with a ticker",
	Long: `List instruments whose correlation strength with the given ticker is
at or above the threshold (inclusive), strongest first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			correlations, err := a.reader.Correlated(ctx, args[0], correlatedThreshold)
			if err != nil {
				return err
			}

			if done, err := render(correlations); done {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TICKER\tSTRENGTH")
			for _, c := range correlations {
				fmt.Fprintf(w, "%s\t%.4f\n", c.Ticker, c.Strength)
			}
			return w.Flush()
		})
	},
}

var riskCmd = &cobra.Command{
	Use:   "risk ACCOUNT_ID",
	Short: "Summarize portfolio risk for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			profile, found, err := a.reader.PortfolioRisk(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("no positive positions with correlation data")
				return nil
			}

			if done, err := render(profile); done {
				return err
			}

			fmt.Printf("average volatility: %.4f\n", profile.AvgVolatility)
			fmt.Printf("sector diversity:   %d\n", profile.SectorDiversity)
			return nil
		})
	},
}

var (
	pagerankIterations int
	pagerankDamping    float64
	pagerankWrite      bool
	pagerankProperty   string
)

var pagerankCmd = &cobra.Command{
	Use:   "pagerank",
	Short: "Rank instruments by structural influence",
	Long: `Run PageRank over the full investment graph.

By default results stream back as per-node scores ordered descending. With
--write the scores are persisted onto the nodes instead, and only iteration
and write counts are reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			pr := analytics.NewPageRank(a.client, a.projections)

			if pagerankWrite {
				summary, err := pr.Write(ctx, pagerankIterations, pagerankDamping, pagerankProperty)
				if err != nil {
					return err
				}
				if done, err := render(summary); done {
					return err
				}
				fmt.Printf("ran %d iterations, wrote %d properties\n",
					summary.RanIterations, summary.PropertiesWritten)
				return nil
			}

			nodes, err := pr.Stream(ctx, pagerankIterations, pagerankDamping)
			if err != nil {
				return err
			}
			return renderScores(nodes)
		})
	},
}

var centralityTopN int

var centralityCmd = &cobra.Command{
	Use:       "centrality {betweenness|closeness}",
	Short:     "Compute node centrality over derived relationships",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"betweenness", "closeness"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			c := analytics.NewCentrality(a.client, a.projections, a.caps)

			var nodes []analytics.ScoredNode
			var err error
			switch args[0] {
			case "betweenness":
				nodes, err = c.Betweenness(ctx, centralityTopN)
			case "closeness":
				nodes, err = c.Closeness(ctx, centralityTopN)
			default:
				return fmt.Errorf("unknown centrality kind: %s", args[0])
			}
			if err != nil {
				return err
			}
			return renderScores(nodes)
		})
	},
}

var (
	communitiesWrite    bool
	communitiesProperty string
)

var communitiesCmd = &cobra.Command{
	Use:       "communities {louvain|labelprop}",
	Short:     "Detect instrument communities",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"louvain", "labelprop"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			cd := analytics.NewCommunity(a.client, a.projections)

			if args[0] == "louvain" && communitiesWrite {
				summary, err := cd.LouvainWrite(ctx, communitiesProperty)
				if err != nil {
					return err
				}
				if done, err := render(summary); done {
					return err
				}
				fmt.Printf("%d communities in %d iterations\n",
					summary.CommunityCount, summary.RanIterations)
				return nil
			}

			var assignments []analytics.CommunityAssignment
			var err error
			switch args[0] {
			case "louvain":
				assignments, err = cd.Louvain(ctx)
			case "labelprop":
				assignments, err = cd.LabelPropagation(ctx)
			default:
				return fmt.Errorf("unknown community algorithm: %s", args[0])
			}
			if err != nil {
				return err
			}

			if done, err := render(assignments); done {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TICKER\tCOMMUNITY")
			for _, a := range assignments {
				fmt.Fprintf(w, "%s\t%d\n", a.Ticker, a.CommunityID)
			}
			return w.Flush()
		})
	},
}

var (
	neighborsMaxHops int
	neighborsLimit   int
	neighborsRels    []string
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors TICKER",
	Short: "Find instruments reachable within N hops",
	Long: `Expand outward from a start ticker and list the distinct instruments
reachable within the hop bound, nearest first. The start ticker itself is
never returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			mh := analytics.NewMultiHop(a.client, a.caps)

			neighbors, err := mh.Neighbors(ctx, args[0], neighborsMaxHops, neighborsRels, neighborsLimit)
			if err != nil {
				return err
			}

			if done, err := render(neighbors); done {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TICKER\tDISTANCE\tLABELS")
			for _, n := range neighbors {
				fmt.Fprintf(w, "%s\t%d\t%s\n", n.Ticker, n.Distance, strings.Join(n.Labels, ","))
			}
			return w.Flush()
		})
	},
}

func renderScores(nodes []analytics.ScoredNode) error {
	if done, err := render(nodes); done {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tSCORE\tLABELS")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%.6f\t%s\n", n.Ticker, n.Score, strings.Join(n.Labels, ","))
	}
	return w.Flush()
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 30, "number of days of history")

	correlatedCmd.Flags().Float64Var(&correlatedThreshold, "threshold", 0.7, "minimum correlation strength (inclusive)")

	pagerankCmd.Flags().IntVar(&pagerankIterations, "max-iterations", 20, "maximum PageRank iterations")
	pagerankCmd.Flags().Float64Var(&pagerankDamping, "damping", 0.85, "damping factor")
	pagerankCmd.Flags().BoolVar(&pagerankWrite, "write", false, "persist scores onto nodes instead of streaming")
	pagerankCmd.Flags().StringVar(&pagerankProperty, "property", "pagerank", "node property for persisted scores")

	centralityCmd.Flags().IntVar(&centralityTopN, "top", 50, "maximum result rows")

	communitiesCmd.Flags().BoolVar(&communitiesWrite, "write", false, "persist community ids onto nodes (louvain only)")
	communitiesCmd.Flags().StringVar(&communitiesProperty, "property", "louvain_community", "node property for persisted community ids")

	neighborsCmd.Flags().IntVar(&neighborsMaxHops, "max-hops", 3, "maximum hop distance")
	neighborsCmd.Flags().IntVar(&neighborsLimit, "limit", 100, "maximum result rows")
	neighborsCmd.Flags().StringSliceVar(&neighborsRels, "rels", nil, "relationship types to expand (default all)")
}
