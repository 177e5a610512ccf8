// Package cli implements the hostprint command tree.
package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/ppiankov/hostprint/internal/config"
)

var (
	flagConfig  string
	flagVerbose int
)

var rootCmd = &cobra.Command{
	Use:   "hostprint",
	Short: "Host configuration fingerprinting and drift detection",
	Long: "Collects the host's configuration surface into canonical snapshots,\n" +
		"protects them at rest, and reports severity-classified changes between them.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default ~/.hostprint/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "Increase log verbosity (repeatable)")
}

// errThreshold signals that --fail-on matched; Execute maps it to exit
// code 3 so CI can distinguish "changes found" from real failures.
var errThreshold = errors.New("severity threshold exceeded")

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errThreshold) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

// loadConfig loads the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger at the verbosity -v selected.
func newLogger() logr.Logger {
	stdr.SetVerbosity(flagVerbose)
	return stdr.New(log.New(os.Stderr, "[hostprint] ", log.LstdFlags))
}
