package push

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/deploy-push/internal/config"
	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/metrics"
	"github.com/oshokin/deploy-push/internal/nix"
)

// Options contains inputs for the push entry point.
type Options struct {
	// ConfigPath is the path of the push manifest (defaults to deploy-push.yaml).
	ConfigPath string
	// Overrides are command-line values applied over the manifest.
	Overrides config.Overrides
	// SigningKey is the local signing key path, resolved once by the caller.
	SigningKey string
	// Runner executes nix commands; nil means local processes.
	Runner nix.Runner
	// MetricsFile receives the push outcome in Prometheus text format. Empty disables it.
	MetricsFile string
}

// Run loads the push manifest and pushes the profile it describes.
func Run(ctx context.Context, opts *Options) (deploy.Artifact, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "deploy-push")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load push manifest: %w", err)
	}

	settings := cfg.Settings()
	opts.Overrides.Apply(settings)

	runner := opts.Runner
	if runner == nil {
		runner = nix.NewExecRunner()
	}

	req := &Request{
		Target:     cfg.Target(),
		Settings:   settings,
		SigningKey: opts.SigningKey,
	}

	started := time.Now()
	artifact, err := New(runner).Push(ctx, req)

	if opts.MetricsFile != "" {
		recorder := metrics.NewPushRecorder()
		recorder.Observe(req.Target, started, time.Now(), err)

		// A metrics failure never changes the push result.
		if writeErr := recorder.WriteTextfile(opts.MetricsFile); writeErr != nil {
			logger.WarnKV(ctx, "Failed to write push metrics", "path", opts.MetricsFile, "error", writeErr)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("push profile %s/%s: %w", req.Target.Node, req.Target.Profile, err)
	}

	logger.InfoKV(ctx, "Profile pushed",
		"node", req.Target.Node,
		"profile", req.Target.Profile,
		"path", artifact.Path(),
		"host", settings.ResolveHostname())

	return artifact, nil
}
