// Package main is the operator CLI: schema migrations, one-off job runs, platform settings
// and category seeding.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"marketapi/cmd/marketctl/internal/commands"
	"marketapi/internal/config"
	"marketapi/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	rootCmd := &cobra.Command{
		Use:           "marketctl",
		Short:         "Operator tool for the experience marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.Register(rootCmd, commands.NewRuntime(cfg, log))

	return rootCmd.Execute()
}
