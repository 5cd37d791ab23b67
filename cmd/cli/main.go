package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kosarica/booking-calculator/config"
	"github.com/kosarica/booking-calculator/internal/app"
)

var (
	cfgFile     string
	catalogPath string
	cfg         *config.Config
	logger      *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "booking-calculator",
	Short: "Booking calculator CLI - cleaning service quotes from the command line",
	Long: `A CLI for the booking calculator. Prices bookings against the service
catalog, validates pricing input files, lists the pricing rules and imports
area price tables from spreadsheets.`,
	PersistentPreRunE: persistentPreRun,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "service catalog file (overrides catalog.path)")
}

// persistentPreRun loads configuration and the logger before each command
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	logger = initLogger(cmd.ErrOrStderr())
	return nil
}

// buildApp wires the pricing pipeline for commands that price or list rules.
func buildApp() (*app.App, error) {
	return app.New(cfg, logger)
}

// initLogger writes to stderr so command output stays machine readable.
func initLogger(out io.Writer) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && parsedLevel > level {
			level = parsedLevel
		}
	}
	if cfg != nil && (cfg.Pricing.Debug || cfg.Rules.Debug) {
		level = zerolog.DebugLevel
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: out, NoColor: cfg != nil && cfg.Logging.NoColor}
	if cfg != nil && cfg.Logging.Format == "json" {
		output = out
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
