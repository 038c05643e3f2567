package main

import (
	"fmt"
	"os"

	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// rootCommand builds the CLI. Running it without a subcommand serves HTTP.
func rootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "climate-dashboard",
		Short:         "Climate monitoring dashboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	serveCmd := serveCommand(a)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.AddCommand(serveCmd, migrateCommand(a), createAdminCommand(a))

	return rootCmd
}
