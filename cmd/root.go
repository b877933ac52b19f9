package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/indexnow/internal/app"
	"github.com/JakeFAU/indexnow/internal/config"
	"github.com/JakeFAU/indexnow/internal/keygen"
	"github.com/JakeFAU/indexnow/internal/logging"
	"github.com/JakeFAU/indexnow/internal/notifier"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a mock app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetConfig() config.Config
	Provisioner() *keygen.Provisioner
	Notifier(ctx context.Context, dryRun bool) (*notifier.Notifier, error)
}

// newApp is the application factory. It's a variable so tests can swap in
// fakes for the cloud clients.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.NewApp(ctx, cfg, logger, app.Options{})
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "indexnow",
		Short: "Provision an IndexNow key and announce changed video pages.",
		Long: `indexnow keeps search engines informed about the video pages of the site.

  keygen   creates the <uuid>.txt verification key in the public directory
  notify   submits new video URLs to the IndexNow API

Configuration comes from an optional YAML file (--config) and INDEXNOW_*
environment variables; the site URL may also be given as PUBLIC_SITE_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Builds the application before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(logging.Options{
				Development: cfg.Logging.Development,
				Level:       cfg.Logging.Level,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newKeygenCmd())
	cmd.AddCommand(newNotifyCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point. A failing command exits with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	logger, logErr := logging.New(logging.Options{Development: true})
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "indexnow: %v\n", err)
		os.Exit(1)
	}
	logger.Fatal("Command execution failed", zap.Error(err))
}
