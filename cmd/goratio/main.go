package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/philipparndt/goratio/internal/config"
	"github.com/philipparndt/goratio/internal/logging"
	"github.com/philipparndt/goratio/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    = config.Default()
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "goratio",
	Short: "Measure epiphyseal h/H ratios on radiographic series",
	Long: `goratio measures the epiphyseal height ratio (h/H) on multi-frame
radiographic series. Measurements are constrained to a bone line, stored in
.dcmstate session files and can be copied across frames, exported as CSV,
compared between sessions and shared through a Postgres database.`,
	Version:           version.GetFullVersion(),
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.GetConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}

	cfg = c
	logger = logging.New(level, os.Stderr)
	slog.SetDefault(logger)
	logger.Debug("starting", "build", version.Current(), "command", cmd.CommandPath())
	return nil
}

// fatal reports err and exits
func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
