package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/fresque-scraper/internal/config"
	"github.com/pfrederiksen/fresque-scraper/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string
)

// app carries state shared by subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	cfg   *config.Config
	runID string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "fresque-scraper",
		Short: "Scrape climate workshop sessions into normalized records",
		Long: `A CLI tool that collects workshop sessions from the FEC community site
and Billetweb ticketing pages, geocodes their venues and writes one
normalized JSON record per session.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR (overrides config)")

	cmd.AddCommand(newScrapeCmd(a))
	cmd.AddCommand(newGeocodeCmd(a))
	cmd.AddCommand(newWorkshopsCmd())

	return cmd
}

// setup loads the dotenv file, the configuration and the run logger
func (a *app) setup() error {
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", flagEnvFile, err)
		}
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}

	a.runID = uuid.NewString()
	logger.SetDefault(logger.New(lvl, os.Stderr).With(logger.Fields{"run_id": a.runID}))
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
