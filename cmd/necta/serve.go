package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/necta-results/internal/config"
	"github.com/jonathan/necta-results/internal/server"
	"github.com/jonathan/necta-results/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var servePort int

// cachePurgeInterval is how often expired pages are removed while serving.
const cachePurgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes roster, result and candidate lookups.
When DATABASE_URL is set, fetched pages are cached in PostgreSQL. Setting
JWT_SECRET and ADMIN_PASSWORD_HASH enables the admin token and cache endpoints.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := server.Config{
		Port:      a.cfg.Port,
		Service:   a.service,
		RateLimit: ratelimit.LoadConfig(),
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if a.db != nil {
		cfg.DB = a.db
		cfg.Cache = a.cached
		go a.cached.RunPurge(ctx, cachePurgeInterval)
	}

	if os.Getenv("JWT_SECRET") != "" {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("failed to create JWT config: %w", err)
		}
		adminConfig, err := config.NewAdminConfig()
		if err != nil {
			return fmt.Errorf("failed to create admin config: %w", err)
		}
		cfg.JWT = jwtConfig
		cfg.Admin = adminConfig
	} else {
		slog.Info("JWT_SECRET not set, admin endpoints disabled")
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
