package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/logger"
	"github.com/inkpad/inkpad/internal/metrics"
	"github.com/inkpad/inkpad/internal/session"
	"github.com/inkpad/inkpad/pkg/api"
	"github.com/inkpad/inkpad/pkg/config"
	"github.com/inkpad/inkpad/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Inkpad server",
	Long: `Start the Inkpad server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/inkpad/config.yaml.

Examples:
  # Start with default config location
  inkpad serve

  # Start with custom config file
  inkpad serve --config /etc/inkpad/config.yaml

  # Start with environment variable overrides
  INKPAD_LOGGING_LEVEL=DEBUG inkpad serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()
	logger.Info("store initialized", "type", cfg.Database.Type)

	sessionStore, err := session.NewStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	logger.Info("session store initialized", "backend", cfg.Session.Store)

	sessionCfg := cfg.Session
	sessionCfg.Secret = cfg.SessionSecret()
	sessions, err := session.NewManager(sessionCfg, sessionStore, db)
	if err != nil {
		return err
	}

	googleCfg := cfg.Google
	googleCfg.ClientSecret = cfg.GoogleClientSecret()
	google := auth.NewGoogle(googleCfg, db)
	if google.Enabled() {
		logger.Info("Google sign-in enabled", "redirect_url", googleCfg.RedirectURL)
	} else {
		logger.Info("Google sign-in disabled")
	}

	var m *metrics.Metrics
	if cfg.Server.MetricsEnabled {
		m = metrics.New()
		logger.Info("metrics enabled", "path", "/metrics")
	}

	server := api.NewServer(cfg.Server, api.Deps{
		Store:     db,
		Sessions:  sessions,
		Local:     auth.NewLocal(db),
		Registrar: auth.NewRegistrar(db, 0),
		Google:    google,
		Metrics:   m,
	})

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", "error", err)
			return err
		}
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		logger.Info("server stopped")
	}

	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
