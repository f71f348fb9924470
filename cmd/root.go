package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vrptw/config"
)

var (
	cfgPath string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:          "vrptw",
	Short:        "Vehicle routing with time windows as a MILP",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with VRPTW_ overrides (default .env when present)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
