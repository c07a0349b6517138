package retrievo

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	retrievolib "github.com/soundprediction/retrievo"
	"github.com/soundprediction/retrievo/pkg/config"
	"github.com/soundprediction/retrievo/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the retrievo HTTP server",
	Long: `Start the retrievo HTTP server to provide REST API access to hybrid retrieval.

The server provides endpoints for:
- Retrieving records (POST /api/v1/retrieve)
- Health checks (/health, /ready, /live)

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().String("host", "localhost", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
	serverCmd.Flags().String("mode", "release", "Server mode (debug, release, test)")

	// Backend flags
	serverCmd.Flags().String("keyword-base-url", "", "Keyword index base URL")
	serverCmd.Flags().String("graph-uri", "", "Knowledge graph URI")
	serverCmd.Flags().String("graph-username", "", "Knowledge graph username")
	serverCmd.Flags().String("graph-password", "", "Knowledge graph password")
	serverCmd.Flags().String("reranker-provider", "", "Reranker provider (openai, jina, local)")
	serverCmd.Flags().String("reranker-model", "", "Reranker model")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")

	viper.BindPFlag("server.host", serverCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serverCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.mode", serverCmd.Flags().Lookup("mode"))
	viper.BindPFlag("keyword.base_url", serverCmd.Flags().Lookup("keyword-base-url"))
	viper.BindPFlag("graph.uri", serverCmd.Flags().Lookup("graph-uri"))
	viper.BindPFlag("graph.username", serverCmd.Flags().Lookup("graph-username"))
	viper.BindPFlag("graph.password", serverCmd.Flags().Lookup("graph-password"))
	viper.BindPFlag("reranker.provider", serverCmd.Flags().Lookup("reranker-provider"))
	viper.BindPFlag("reranker.model", serverCmd.Flags().Lookup("reranker-model"))
	viper.BindPFlag("telemetry.parquet_path", serverCmd.Flags().Lookup("telemetry-parquet-path"))
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)

	client, err := retrievolib.NewFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize retrievo: %w", err)
	}

	srv := server.New(cfg, client)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		logger.Error("server failed", "error", err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server cleanly", "error", err.Error())
	}
	if err := client.Close(shutdownCtx); err != nil {
		logger.Error("failed to close retrievo client", "error", err.Error())
	}

	return nil
}
