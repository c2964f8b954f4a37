package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ArseneVrnd/linkedin-mcp-server/cmd/tracker/commands"
	"github.com/ArseneVrnd/linkedin-mcp-server/logger"
)

var (
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Job application tracker with MCP-backed auto-import",
	Long: `tracker - personal job-application tracker backend.

Connects to a LinkedIn MCP server for job search, imports results into a
local SQLite database, auto-tags them against a rule list, and re-runs
saved searches on their cron schedules.

Examples:
  tracker serve                          # Start API server + scheduler
  tracker search "golang backend"        # Run one search-and-import cycle
  tracker autotag                        # Re-classify every stored job
  tracker db migrate                     # Apply pending migrations
  tracker db stats                       # Show database statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			err = logger.InitializeDebug(jsonOutput)
		} else {
			err = logger.Initialize(jsonOutput)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit JSON logs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.AutotagCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
