package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/toolsuite/shortener/internal/config"
)

// Cfg is the loaded configuration, accessible to all Cobra commands.
var Cfg *config.Config

// RootCmd is the base command for the CLI application. The subcommands
// (run-server, create, stats, migrate) register themselves via their own
// init() functions, which keeps the command packages decoupled and avoids
// import cycles.
var RootCmd = &cobra.Command{
	Use:   "shortener",
	Short: "A link shortening service",
	Long: `A link shortening service that mints short codes for long URLs,
redirects visitors while recording click analytics, and throttles clients
per admission window.`,
}

// Execute is the main entry point for the Cobra application.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Load configuration before any command runs.
	cobra.OnInitialize(initConfig)
}

// initConfig loads the application configuration at the beginning of every
// command execution.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
	}
}
