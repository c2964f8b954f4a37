package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArseneVrnd/linkedin-mcp-server/config"
	"github.com/ArseneVrnd/linkedin-mcp-server/db"
	"github.com/ArseneVrnd/linkedin-mcp-server/logger"
)

// DbCmd groups database maintenance commands.
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage tracker database operations",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Logger

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		conn, err := db.Open(cfg.Database.Path, log)
		if err != nil {
			return err
		}
		defer conn.Close()

		return db.Migrate(conn, log)
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		conn, err := db.Open(cfg.Database.Path, nil)
		if err != nil {
			return err
		}
		defer conn.Close()

		for _, table := range []string{"jobs", "tags", "job_tags", "saved_searches", "search_runs"} {
			var count int64
			if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
				return err
			}
			fmt.Printf("%-16s %d\n", table, count)
		}
		return nil
	},
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}
