package main

import (
	"github.com/spf13/cobra"

	"gridplan/pkg/api"
	"gridplan/pkg/metrics"
	"gridplan/pkg/plan"
)

var serveFlags struct {
	addr       string
	corsOrigin string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planning HTTP API",
	Long: `Serves POST /api/v1/plan, GET /api/v1/health and GET /metrics until
SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.corsOrigin, "cors-origin", "", "CORS allowed origin (empty = same-origin)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveFlags.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m := metrics.New()
	planner := plan.New(log, m)
	handlers := api.NewHandlers(planner, plan.Options{
		Strategy:     cfg.Strategy(),
		Mode:         cfg.Mode(),
		MinNodeCount: cfg.MinNodeCount,
	}, api.DefaultMaxBody)

	srvCfg := api.DefaultConfig(cfg.Server.Addr)
	srvCfg.ReadTimeout = cfg.GetReadTimeout()
	srvCfg.WriteTimeout = cfg.GetWriteTimeout()
	srvCfg.CORSOrigin = serveFlags.corsOrigin

	srv := api.NewServer(srvCfg, handlers, log, m)
	if err := api.ListenAndServe(cmd.Context(), srv, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return err
	}
	return nil
}
