package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/okian/lojista/internal/config"
	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	logFilePermission = 0600
)

// cli holds what the persistent pre-run sets up for every subcommand.
type cli struct {
	configPath string

	cfg     *config.Config
	log     logger.Logger
	logFile *os.File
	metrics *http.Server
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "lojista",
		Short: "Merchant profile screen",
		Long: `lojista shows a merchant's profile and products, and lets you rate the merchant.

Configuration is read from defaults, then the YAML file given by --config (or
LOJISTA_CONFIG), then LOJISTA_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The terminal UI owns stdout, so its records go to the log file.
			return c.setup(cmd.Context(), cmd.Name() == "view", cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")

	root.AddCommand(c.viewCmd(), c.showCmd(), c.rateCmd())
	return root
}

func (c *cli) setup(ctx context.Context, toFile bool, stderr io.Writer) error {
	cfg, err := config.LoadFrom(ctx, c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	out := stderr
	if toFile && cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		c.logFile = f
		out = f
	} else if toFile {
		out = io.Discard
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		c.serveMetrics(ctx, cfg.MetricsAddr)
	}
	return nil
}

func (c *cli) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	c.metrics = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv, log := c.metrics, c.log
	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
}

func (c *cli) teardown(ctx context.Context) {
	if c.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		if err := c.metrics.Shutdown(shutdownCtx); err != nil {
			c.log.Warn(ctx, "metrics server shutdown failed", logger.Error(err))
		}
		cancel()
	}
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}
