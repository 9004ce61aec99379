// Package cli provides the command-line interface for rastreador.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/rastreador/internal/config"
	"github.com/raphaelgruber/rastreador/internal/db"
	"github.com/raphaelgruber/rastreador/internal/ingest"
	"github.com/raphaelgruber/rastreador/internal/metrics"
	"github.com/raphaelgruber/rastreador/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose       bool
	mask          bool
	configPath    string
	donationsPath string
	contractsPath string

	// Per-run overrides of the run configuration
	windowDays int
	direction  string
	entityCap  int
	topN       int

	// Loaded in PersistentPreRunE
	cfg        config.Config
	runCfg     config.RunConfig
	logger     *slog.Logger
	logCleanup func() error
	collector  *metrics.Collector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rastreador",
	Short: "Correlate political donations with government contract awards",
	Long: `Rastreador links political-donation records to government contract
awards by donor identity and flags donations made close in time to an award
to the same entity.

It reports temporal coincidence only. A flagged pair is not evidence of
wrongdoing.

Input files are CSV or JSON; a directory loads every file in it.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg)
		slog.SetDefault(logger)
		collector = metrics.NewCollector()

		path := configPath
		if path == "" {
			path = cfg.RunConfigPath
		}
		var err error
		runCfg, err = config.LoadRunConfig(path)
		if err != nil {
			return err
		}
		applyOverrides(cmd)
		return runCfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// applyOverrides copies explicitly set flags over the loaded run config.
func applyOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("window") {
		runCfg.WindowDays = windowDays
	}
	if flags.Changed("direction") {
		runCfg.Direction = direction
	}
	if flags.Changed("cap") {
		runCfg.EntityCap = entityCap
		runCfg.PerSideLimit = entityCap / 2
	}
	if flags.Changed("top") {
		runCfg.TopN = topN
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&mask, "mask", false, "mask identifiers in output")
	pf.StringVar(&configPath, "config", "", "run configuration YAML (default $RASTREADOR_CONFIG)")
	pf.StringVarP(&donationsPath, "donations", "d", "", "donations file or directory")
	pf.StringVarP(&contractsPath, "contracts", "c", "", "contracts file or directory")
	pf.IntVar(&windowDays, "window", 0, "proximity window in days")
	pf.StringVar(&direction, "direction", "", "direction filter: before-only or both")
	pf.IntVar(&entityCap, "cap", 0, "per-entity event cap; also resets the per-side limit to cap/2")
	pf.IntVar(&topN, "top", 0, "keep only the top N alerts (0 = all)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(rejectionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
}

// analyze loads both datasets and runs the pipeline once.
func analyze(ctx context.Context) (*service.Report, error) {
	if donationsPath == "" || contractsPath == "" {
		return nil, errors.New("both --donations and --contracts are required")
	}

	donations, donationSources, err := ingest.Load(donationsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load donations: %w", err)
	}
	contracts, contractSources, err := ingest.Load(contractsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}

	analyzer, err := service.NewAnalyzer(runCfg,
		service.WithLogger(logger),
		service.WithMetrics(collector),
		service.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return nil, err
	}
	return analyzer.Run(ctx, service.Input{
		Donations: donations,
		Contracts: contracts,
		Sources:   append(donationSources, contractSources...),
	})
}

// connectDB opens the report store and ensures its schema.
func connectDB(ctx context.Context) (*db.Client, error) {
	client, err := db.NewClient(ctx, db.ConfigFrom(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return client, nil
}
