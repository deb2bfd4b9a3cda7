// Command apiserver runs the generation API server with flag-based startup,
// for deployments that do not want the full CLI surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/turtacn/MatGen-Intelligence/internal/config"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/internal/interfaces/cli"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: MATGEN_* environment)")
	port := flag.Int("port", 0, "HTTP listen port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting apiserver",
		logging.String("version", cli.Version),
		logging.Int("port", cfg.Server.Port))

	if err := cli.RunServer(context.Background(), cfg, logger); err != nil {
		logger.Error("server exited", logging.Err(err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
