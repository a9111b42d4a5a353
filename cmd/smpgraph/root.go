package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ngudow/SMP-graph/internal/analytics"
	"github.com/ngudow/SMP-graph/internal/config"
	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/projection"
	"github.com/ngudow/SMP-graph/internal/universe"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "smpgraph",
	Short: "Investment universe graph facade",
	Long: `smpgraph models an investment universe (accounts, stocks, prices,
transactions) in a Neo4j graph and runs graph-data-science analytics over it:
PageRank, centrality, community detection, and multi-hop expansion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		setupLogging(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(correlatedCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(pagerankCmd)
	rootCmd.AddCommand(centralityCmd)
	rootCmd.AddCommand(communitiesCmd)
	rootCmd.AddCommand(neighborsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(healthCmd)
}

// Execute runs the root command with signal-aware context cancellation.
func Execute(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func setupLogging(lc config.LoggingConfig) {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// app bundles the connected client with the facade components commands use.
type app struct {
	client      graph.Client
	writer      *universe.Writer
	reader      *universe.Reader
	projections *projection.Manager
	caps        *analytics.Capabilities
}

// withApp connects to the graph engine, runs fn, and closes the connection
// on every exit path.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	client, err := graph.NewNeo4jClient(cfg.GraphConfig())
	if err != nil {
		return err
	}

	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close(ctx)

	a := &app{
		client:      client,
		writer:      universe.NewWriter(client),
		reader:      universe.NewReader(client),
		projections: projection.NewManager(client),
		caps:        analytics.NewCapabilities(),
	}

	return fn(ctx, a)
}

// render writes v as indented JSON when --output json is set and returns
// true; table-rendering callers fall through on false.
func render(v any) (bool, error) {
	if outputFormat != "json" {
		return false, nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return true, fmt.Errorf("failed to encode output: %w", err)
	}
	return true, nil
}
