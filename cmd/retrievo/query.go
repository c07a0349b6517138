package retrievo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	retrievolib "github.com/soundprediction/retrievo"
	"github.com/soundprediction/retrievo/pkg/config"
	"github.com/soundprediction/retrievo/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Run a one-shot retrieval query",
	Long: `Run a single retrieval query against the configured backends and print
the resulting records as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var (
	queryTopK    int
	querySources []string
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "Maximum number of records (0 = configured default)")
	queryCmd.Flags().StringSliceVar(&querySources, "source", nil, "Sources to query (keyword, knowledge_graph); default all")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)

	client, err := retrievolib.NewFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize retrievo: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Retrieval.OverallTimeout)*time.Second)
	defer cancel()
	defer client.Close(context.Background())

	opts := types.Options{TopK: queryTopK}
	for _, s := range querySources {
		opts.SearchTypes = append(opts.SearchTypes, types.Source(s))
	}

	records, err := client.Retrieve(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
