// Package cmd provides the command-line interface for timekeeper.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timekeeper",
	Short: "Timekeeper polls timed events and reports when they fire.",
	Long: `Timekeeper polls timed events and reports when they fire. ` +
		`It can trace the firings into CSV or SQLite files and serve the ` +
		`event status over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File to load TIMEKEEPER_* defaults from. A missing file is ignored.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It runs the registered exit handlers before exiting.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// applyEnv sets a flag from an environment variable unless the flag is given
// on the command line.
func applyEnv(cmd *cobra.Command, flag, key string) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}

	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	err := cmd.Flags().Set(flag, value)
	if err != nil {
		return fmt.Errorf("applying %s to --%s: %w", key, flag, err)
	}

	return nil
}
