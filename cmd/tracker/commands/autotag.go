package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArseneVrnd/linkedin-mcp-server/autotag"
	"github.com/ArseneVrnd/linkedin-mcp-server/config"
	"github.com/ArseneVrnd/linkedin-mcp-server/db"
	"github.com/ArseneVrnd/linkedin-mcp-server/logger"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// AutotagCmd re-classifies every stored job against the rule list.
var AutotagCmd = &cobra.Command{
	Use:   "autotag",
	Short: "Apply auto-tagging rules to all stored jobs",
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

		if err := db.Migrate(conn, log); err != nil {
			return err
		}

		jobs := tracker.NewJobStore(conn, log)
		tags := tracker.NewTagStore(conn)
		engine := autotag.NewEngine(jobs, tags, log)

		reports, err := engine.TagAll()
		if err != nil {
			return err
		}

		tagged := 0
		for _, report := range reports {
			if len(report.Tags) > 0 {
				tagged++
			}
		}
		fmt.Printf("Processed %d jobs, %d received tags\n", len(reports), tagged)
		return nil
	},
}
