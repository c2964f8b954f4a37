package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArseneVrnd/linkedin-mcp-server/autotag"
	"github.com/ArseneVrnd/linkedin-mcp-server/config"
	"github.com/ArseneVrnd/linkedin-mcp-server/db"
	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	"github.com/ArseneVrnd/linkedin-mcp-server/importer"
	"github.com/ArseneVrnd/linkedin-mcp-server/logger"
	"github.com/ArseneVrnd/linkedin-mcp-server/mcpclient"
	"github.com/ArseneVrnd/linkedin-mcp-server/scheduler"
	"github.com/ArseneVrnd/linkedin-mcp-server/server"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// ServeCmd starts the API server and the saved-search scheduler.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracker API server and scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Logger

		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load config")
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

		var loc *time.Location
		if cfg.Scheduler.Timezone != "" {
			loc, err = time.LoadLocation(cfg.Scheduler.Timezone)
			if err != nil {
				return errors.Wrapf(err, "load timezone %s", cfg.Scheduler.Timezone)
			}
		}

		sched := scheduler.New(searches, svc, timeout, loc, log)
		if err := sched.Start(); err != nil {
			return errors.Wrap(err, "start scheduler")
		}
		defer sched.Shutdown()

		srv := server.New(cfg, log, jobs, tags, searches, runs, engine, svc, sched, mcp)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return srv.Start(ctx)
	},
}
