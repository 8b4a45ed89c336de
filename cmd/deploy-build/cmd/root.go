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
	"github.com/oshokin/deploy-push/internal/service/buildca"
	"github.com/oshokin/deploy-push/internal/version"
)

// errUnknownLogLevel is returned for an unrecognized --log-level value.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the push manifest YAML file.
	configPath string
	// logLevel is the minimum level written to stderr.
	logLevel string
	// overrides are command-line values applied over the manifest.
	overrides config.Overrides

	// rootCmd represents the base command for realizing a content-addressed profile.
	rootCmd = &cobra.Command{
		Use:   "deploy-build",
		Short: "Realize a content-addressed profile and print its store path.",
		Long: `Builds the content-addressed profile described by the push manifest from its
flake attribute and prints the realized store path on stdout. Nothing is
copied; logs go to stderr.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &buildca.Options{
				ConfigPath: configPath,
				Overrides:  overrides,
			}

			realized, err := buildca.Run(ctx, options)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), realized)

			return err
		},
	}
)

// Execute runs the deploy-build CLI and exits with non-zero status on error.
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
	overrides.BindFlags(rootCmd.Flags())
}
