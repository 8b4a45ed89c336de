package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/deploy-push/internal/config"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/service/push"
	"github.com/oshokin/deploy-push/internal/version"
)

// errUnknownLogLevel is returned for an unrecognized --log-level value.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the push manifest YAML file.
	configPath string
	// logLevel is the minimum level written to stderr.
	logLevel string
	// metricsFile receives the push outcome for the node exporter textfile collector.
	metricsFile string
	// overrides are command-line values applied over the manifest.
	overrides config.Overrides

	// rootCmd represents the base command for pushing a profile.
	rootCmd = &cobra.Command{
		Use:   "deploy-push",
		Short: "Build a node profile and copy it to the node.",
		Long: `Builds the profile described by the push manifest, checks that it carries
the deploy-rs activation scripts, signs it when LOCAL_KEY names a signing key
and copies it to the node's nix store with "nix copy" over ssh.

Activation on the node is not performed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &push.Options{
				ConfigPath:  configPath,
				Overrides:   overrides,
				SigningKey:  push.SigningKeyFromEnv(),
				MetricsFile: metricsFile,
			}

			_, err := push.Run(ctx, options)

			return err
		},
	}
)

// Execute runs the deploy-push CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to push manifest")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write the push outcome in Prometheus text format to this file")
	overrides.BindFlags(rootCmd.Flags())
}
