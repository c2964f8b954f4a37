package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArseneVrnd/linkedin-mcp-server/autotag"
	"github.com/ArseneVrnd/linkedin-mcp-server/config"
	"github.com/ArseneVrnd/linkedin-mcp-server/db"
	"github.com/ArseneVrnd/linkedin-mcp-server/importer"
	"github.com/ArseneVrnd/linkedin-mcp-server/logger"
	"github.com/ArseneVrnd/linkedin-mcp-server/mcpclient"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

var (
	searchLocation string
	searchLimit    int
)

// SearchCmd runs one ad-hoc search-and-import cycle from the command line.
var SearchCmd = &cobra.Command{
	Use:   "search <keywords>",
	Short: "Run one search-and-import cycle",
	Args:  cobra.MinimumNArgs(1),
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
		searches := tracker.NewSavedSearchStore(conn)
		runs := tracker.NewRunStore(conn)

		timeout := time.Duration(cfg.MCP.TimeoutSeconds) * time.Second
		mcp := mcpclient.New(cfg.MCP.URL, timeout, log)
		defer mcp.Close()

		engine := autotag.NewEngine(jobs, tags, log)
		svc := importer.New(jobs, searches, runs, engine, mcp, mcp, importer.Config{
			DefaultLimit:      cfg.Importer.DefaultLimit,
			SearchesPerMinute: cfg.Importer.SearchesPerMinute,
		}, log)

		result, err := svc.Execute(context.Background(), importer.Params{
			Keywords: strings.Join(args, " "),
			Location: searchLocation,
			Limit:    searchLimit,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Seen %d listings, imported %d, applied %d tags\n",
			result.JobsSeen, result.Imported, result.TagsApplied)
		if result.Degenerate {
			fmt.Println("Payload could not be parsed; raw output follows:")
			fmt.Println(result.Raw)
		}
		return nil
	},
}

func init() {
	SearchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Location filter")
	SearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Result limit (default from config)")
}
