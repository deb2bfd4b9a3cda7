package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/MatGen-Intelligence/internal/bootstrap"
	"github.com/turtacn/MatGen-Intelligence/internal/config"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/MatGen-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MatGen-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MatGen-Intelligence/internal/interfaces/http/middleware"
)

func newServeCommand(root *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the generation API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			logging.SetDefault(logger)

			return RunServer(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

// RunServer assembles the pipeline and serves HTTP until SIGINT/SIGTERM.
// Shared with cmd/apiserver so the flag-based entry point and the CLI serve
// subcommand behave identically.
func RunServer(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	pipe, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pipe.Close()

	genHandler, err := handlers.NewGenerationHandler(
		pipe.Service, pipe.Extractor, pipe.Exporter, pipe.Cache, pipe.Metrics, logger.Named("http"))
	if err != nil {
		return err
	}

	checks := make(map[string]handlers.ReadinessCheck)
	for name, fn := range pipe.ReadinessChecks() {
		checks[name] = fn
	}

	rateLimit := middleware.DefaultRateLimitConfig()
	router := httpserver.NewRouter(httpserver.RouterConfig{
		GenerationHandler: genHandler,
		StructureHandler:  handlers.NewStructureHandler(pipe.Exporter.OutputDir(), logger.Named("http")),
		HealthHandler:     handlers.NewHealthHandler(checks, logger.Named("http")),
		Logger:            logger.Named("http"),
		Metrics:           pipe.Metrics,
		MetricsCollector:  pipe.Collector,
		Logging:           middleware.DefaultLoggingConfig(),
		CORS:              middleware.DefaultCORSConfig(),
		RateLimit:         &rateLimit,
	})

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	notifyCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-notifyCtx.Done():
	}

	return srv.Stop(context.Background())
}
