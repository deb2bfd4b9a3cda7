// Package cli implements the matgen command-line interface: serving the API
// and running one-shot generation without a server.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/MatGen-Intelligence/internal/config"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand builds the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "matgen",
		Short: "Property-conditioned inorganic material generation",
		Long: "MatGen-Intelligence generates candidate inorganic crystal structures that\n" +
			"match target physical properties (band gap, formation energy, bulk\n" +
			"modulus) using a conditional VAE over a reference materials catalog.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: env-only configuration)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newGenerateCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// loadConfig resolves configuration from the --config file or, when absent,
// from MATGEN_* environment variables, then applies the log-level override.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
