package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonathan/necta-results/internal/config"
	"github.com/jonathan/necta-results/internal/db"
	"github.com/jonathan/necta-results/internal/fetch"
	"github.com/jonathan/necta-results/internal/results"
	"github.com/jonathan/necta-results/internal/schemas"
	"github.com/spf13/cobra"
)

// Persistent flags shared by every command
var (
	configPath     string
	verbose        bool
	outputJSON     bool
	validateOutput bool
	useBrowser     bool
	timeoutSeconds int
	userAgent      string
	databaseURL    string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to JSON config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&outputJSON, "json", false, "Print JSON instead of tables")
	flags.BoolVar(&validateOutput, "validate", false, "Validate output against the embedded JSON schemas")
	flags.BoolVar(&useBrowser, "browser", false, "Render pages with headless Chrome instead of plain HTTP")
	flags.IntVar(&timeoutSeconds, "timeout", 0, "Per-page fetch timeout in seconds (default 30)")
	flags.StringVar(&userAgent, "user-agent", "", "User-Agent header sent to the publisher")
	flags.StringVar(&databaseURL, "db-url", "", "PostgreSQL URL for the page cache (overrides DATABASE_URL)")
}

// setupLogging installs a text slog handler on stderr. loadSettings raises
// the level again once the config file has been read.
func setupLogging(_ *cobra.Command, _ []string) error {
	configureLogging(verbose)
	return nil
}

func configureLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadSettings merges flags over environment over the config file over defaults.
func loadSettings() (config.Config, error) {
	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	envCfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}

	flagCfg := config.Config{
		DatabaseURL:    databaseURL,
		UserAgent:      userAgent,
		TimeoutSeconds: timeoutSeconds,
		UseBrowser:     useBrowser,
		Verbose:        verbose,
	}

	merged := envCfg.MergeWithDefaults(fileCfg)
	cfg := flagCfg.MergeWithDefaults(merged)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	configureLogging(cfg.Verbose)
	return cfg, nil
}

// app bundles the collaborators a command needs
type app struct {
	cfg     config.Config
	service *results.Service
	db      *db.DB
	cached  *fetch.CachedFetcher
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// newApp builds the fetch stack: HTTP or browser, wrapped by the page cache
// when a database is configured.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}

	var source fetch.Fetcher
	if cfg.UseBrowser {
		source = fetch.NewBrowserFetcher(cfg.Timeout(), fetch.DefaultSettleDelay)
	} else {
		source = fetch.NewHTTPFetcher(&fetch.Options{
			Timeout:   cfg.Timeout(),
			UserAgent: cfg.UserAgent,
		})
	}

	a := &app{cfg: cfg}
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		database, err := db.Connect(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(connectCtx); err != nil {
			database.Close()
			return nil, err
		}
		a.db = database
		a.cached = fetch.NewCachedFetcher(database, source, &fetch.CachedFetcherConfig{CacheTTL: cfg.CacheTTL()})
		source = a.cached
		slog.Debug("page cache enabled", "ttl", cfg.CacheTTL())
	}

	a.service = results.NewService(source)
	return a, nil
}

// emit validates v when requested, then prints it as JSON or through pretty.
func emit(w io.Writer, kind schemas.Kind, v any, pretty func()) error {
	if validateOutput {
		if err := schemas.Validate(kind, v); err != nil {
			return fmt.Errorf("output failed %s schema validation: %w", kind, err)
		}
		slog.Debug("output matches schema", "schema", kind)
	}

	if outputJSON {
		return writeJSON(w, v)
	}
	pretty()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
