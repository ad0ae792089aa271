package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/lease-intake/internal/app"
	"github.com/joseph-ayodele/lease-intake/internal/common"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "leasectl",
	Short: "Extract and analyze oil and gas lease documents",
	Long: `leasectl runs the lease intake pipeline from the command line: text
extraction (direct, synchronous OCR or asynchronous OCR through the bucket),
model analysis, and risk/quality scoring with an XLSX export.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger logs to stderr so command output on stdout stays machine readable.
func newLogger(cfg common.LogConfig) *slog.Logger {
	if verbose {
		cfg.Level = "debug"
	}
	return common.NewLogger(os.Stderr, cfg)
}

func loadApp(ctx context.Context) (*app.App, *slog.Logger, error) {
	cfg, err := common.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.Log)
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
