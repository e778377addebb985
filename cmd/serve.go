package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/SARx613/shopgraph/internal/graph"
	"github.com/SARx613/shopgraph/internal/observability"
	"github.com/SARx613/shopgraph/internal/server"
	"github.com/SARx613/shopgraph/internal/source"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the liveness endpoint over both backing stores",
		Long: `Exposes GET /health returning {"ok": <bool>}, true only when both the
source database and the graph store answer a fresh round-trip probe. Runs
until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.Logger)
			defer logger.Sync() //nolint:errcheck

			pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
			if err != nil {
				return fmt.Errorf("opening source pool: %w", err)
			}
			defer pool.Close()

			driver, err := graph.Connect(cfg.Neo4j)
			if err != nil {
				return err
			}
			defer driver.Close(ctx) //nolint:errcheck

			src := source.New(pool, logger)
			loader := graph.NewLoader(driver, cfg.Pipeline.BatchSize, logger)

			gin.SetMode(gin.ReleaseMode)
			handler := server.NewHealthHandler(src.Probe, loader.Probe, logger)
			return server.Run(ctx, cfg.Server.Addr, server.NewRouter(handler), logger)
		},
	}
}
