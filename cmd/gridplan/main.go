// Command gridplan plans least-cost electrification networks from demand
// points and an optional existing grid.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gridplan/pkg/config"
	"gridplan/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	logLevel   string
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "gridplan",
	Short: "Budget-constrained network planning",
	Long: `gridplan connects demand points to each other and to an existing grid
with a minimum spanning forest in which every connection must fit the
budgets of the points it serves.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "gridplan", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML run configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write JSON logs instead of console output")

	rootCmd.AddCommand(planCmd, serveCmd, versionCmd)
}

// loadConfig reads the configuration and builds the logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	var log zerolog.Logger
	if logJSON {
		log = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	} else {
		log = logging.NewConsole(cfg.LogLevel, cmd.ErrOrStderr())
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
