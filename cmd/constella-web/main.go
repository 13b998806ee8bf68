package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	// CA roots for images built without a certificate bundle
	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/constella-app/constella-web/internal/logger"
	"github.com/constella-app/constella-web/internal/ui/config"
	"github.com/constella-app/constella-web/internal/ui/server"
	"github.com/constella-app/constella-web/internal/ui/wizardstore"
	"github.com/constella-app/constella-web/internal/version"
)

func main() {
	cmd := &cobra.Command{
		Use:   "constella-web",
		Short: "Constella web front end",
		Long:  `Serves the Constella home, login and signup pages in front of the Constella API`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	var envFile string
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before reading the configuration")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	}

	cmd.Version = version.Get().String()

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server (the default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadEnvFile reads variables from the env file when it exists. Variables already set in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func run(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		return err
	}

	serverLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(serverLogger)

	serverLogger.Info("Starting UI server",
		slog.String("version", version.Get().Version),
		slog.String("environment", cfg.Environment),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	store := newStore(ctx, cfg, serverLogger)
	defer store.Close()

	if err := server.New(cfg, serverLogger, store).Start(ctx); err != nil {
		serverLogger.Error("UI server error", slog.String("error", err.Error()))
		return err
	}

	serverLogger.Info("UI server shutdown complete")
	return nil
}

// newStore uses Redis when configured. An unreachable Redis falls back to memory so the site stays up.
func newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) wizardstore.Store {
	if cfg.RedisURL == "" {
		log.Info("Using in-memory wizard store", slog.Duration("ttl", cfg.WizardTTL))
		return wizardstore.NewMemoryStore(cfg.WizardTTL)
	}

	if cfg.WizardSecret == "" {
		log.Warn("WIZARD_SECRET is not set: wizard sessions in Redis are lost on restart and not shared between servers")
	}
	sealer, err := wizardstore.NewSealer(cfg.WizardSecret)
	if err != nil {
		log.Warn("Falling back to in-memory wizard store", slog.String("error", err.Error()))
		return wizardstore.NewMemoryStore(cfg.WizardTTL)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := wizardstore.NewRedisStore(connectCtx, cfg.RedisURL, cfg.WizardTTL, sealer)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory wizard store", slog.String("error", err.Error()))
		return wizardstore.NewMemoryStore(cfg.WizardTTL)
	}

	log.Info("Using Redis wizard store", slog.Duration("ttl", cfg.WizardTTL))
	return store
}
