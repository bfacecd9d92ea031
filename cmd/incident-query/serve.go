package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/goatkit/incidentquery/internal/api"
	"github.com/goatkit/incidentquery/internal/auth"
	"github.com/goatkit/incidentquery/internal/database"
	"github.com/goatkit/incidentquery/internal/repository"
	"github.com/goatkit/incidentquery/internal/service"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if serveMigrate || cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, db, logger); err != nil {
				return err
			}
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := database.RegisterPoolCollector(reg, db, "incidents"); err != nil {
			return fmt.Errorf("failed to register pool metrics: %w", err)
		}
		metrics := database.NewQueryMetrics(reg, cfg.Database.SlowQueryThreshold, logger)

		svc := service.NewIncidentQueryService(
			repository.NewIncidentRepository(db, metrics),
			service.WithLogger(logger),
		)

		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(api.RouterConfig{
			Queries:        svc,
			Decoder:        auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
			Logger:         logger,
			Impl:           cfg.App.Impl,
			AllowedOrigins: cfg.Server.CORSAllowedOrigins,
			Registry:       reg,
		})

		logger.Info("starting incident query api",
			slog.String("env", cfg.App.Env),
			slog.String("driver", db.DriverName()))
		return api.NewServer(cfg.Server, router, logger).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
}

