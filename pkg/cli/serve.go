package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/grclab/riskflow/pkg/cli/config"
	httpctrl "github.com/grclab/riskflow/pkg/controller/http"
	"github.com/grclab/riskflow/pkg/service/notify"
	"github.com/grclab/riskflow/pkg/service/worker"
	"github.com/grclab/riskflow/pkg/usecase"
	"github.com/grclab/riskflow/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var catalogPath string
	var expiryInterval time.Duration
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKFLOW_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "catalog-path",
			Usage:       "Path to TOML catalog of categories and organizations (optional)",
			Sources:     cli.EnvVars("RISKFLOW_CATALOG_PATH"),
			Destination: &catalogPath,
		},
		&cli.DurationFlag{
			Name:        "expiry-interval",
			Usage:       "Interval for the acceptance expiry sweep",
			Value:       time.Hour,
			Sources:     cli.EnvVars("RISKFLOW_EXPIRY_INTERVAL"),
			Destination: &expiryInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Configure Slack delivery if a bot token is provided
			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}

			notifyOpts := []notify.Option{}
			if slackSvc != nil {
				notifyOpts = append(notifyOpts, notify.WithSlack(slackSvc))
				logging.Default().Info("Slack delivery enabled for notifications")
			} else {
				logging.Default().Info("Slack Bot Token not configured, notifications are in-app only")
			}
			dispatcher := notify.New(repo, notifyOpts...)

			// Initialize use cases with catalog and notifier
			ucOpts := []usecase.Option{
				usecase.WithNotifier(dispatcher),
			}
			if catalogPath != "" {
				appCfg, err := config.LoadAppConfiguration(catalogPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load catalog configuration")
				}
				ucOpts = append(ucOpts, usecase.WithCatalog(appCfg.ToCatalog()))
				logging.Default().Info("Catalog loaded",
					"path", catalogPath,
					"categories", len(appCfg.Categories),
					"organizations", len(appCfg.Organizations),
				)
			} else {
				logging.Default().Info("Catalog not configured, category and organization checks are disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			// Start acceptance expiry worker
			expiryWorker := worker.NewAcceptanceExpiryWorker(repo, dispatcher, expiryInterval)
			if err := expiryWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start acceptance expiry worker")
			}

			// Create HTTP server
			httpHandler, err := httpctrl.New(uc)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				expiryWorker.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop expiry worker first so no notifications fire mid-shutdown
				expiryWorker.Stop()

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
