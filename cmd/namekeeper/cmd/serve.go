package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/namekeeper/internal/core/api"
	"github.com/solatis/namekeeper/internal/core/auth"
	"github.com/solatis/namekeeper/internal/core/config"
	"github.com/solatis/namekeeper/internal/core/server"
	"github.com/solatis/namekeeper/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC naming policy service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
	serveCmd.Flags().String("rules", "", "default rule file for requests without rules")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := slog.Default()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if cmd.Flags().Changed("rules") {
		cfg.RulesFile, _ = cmd.Flags().GetString("rules")
	} else {
		cfg.RulesFile = configRelative(cfg.RulesFile)
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	store, err := openStore(dbURL)
	if err != nil {
		return err
	}
	defer store.Close()

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set NK_HMAC_SECRET environment variable)")
	}

	authenticator := auth.NewAuthenticator(secrets, store.Queries())

	var rules []types.RuleConfig
	if cfg.RulesFile != "" {
		rules, err = config.LoadRules(cfg.RulesFile)
		if err != nil {
			return err
		}
		logger.Info("loaded default rules", "path", cfg.RulesFile, "rules", len(rules))
	}

	service, err := api.NewService(cfg, rules, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting namekeeper policy API", "version", Version, "host", cfg.Host, "port", cfg.Port, "metrics_port", cfg.MetricsPort)
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return grpcServer.Shutdown(ctx)
	}
}
