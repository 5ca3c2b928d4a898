package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mpelletier/rosterd/app"
	"github.com/mpelletier/rosterd/config"
	"github.com/mpelletier/rosterd/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "rosterd",
	Short: "Daily roster assignment service",
	Long: "rosterd assigns behavioral-health staff to students for one day at a time.\n" +
		"Without a subcommand it serves the run-log query API and Prometheus metrics\n" +
		"over the accumulated run history.",
	RunE: serve,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Serving mode only fronts HTTP surfaces. With none configured the
	// process would block on nothing, so refuse to start instead.
	if cfg.API.Addr == "" && cfg.Metrics.PrometheusAddr == "" {
		return fmt.Errorf("nothing to serve: set api.addr or metrics.prometheus_addr, or use the run subcommand")
	}

	log := logger.New("main")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()

	if cfg.API.Addr != "" {
		log.Infof("serving run-log API on %s", cfg.API.Addr)
	}
	if cfg.Metrics.PrometheusAddr != "" {
		log.Infof("serving prometheus metrics on %s", cfg.Metrics.PrometheusAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return svc.Run(ctx)
}
