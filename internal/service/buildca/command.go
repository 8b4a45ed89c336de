package buildca

import (
	"context"
	"fmt"

	"github.com/oshokin/deploy-push/internal/config"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/nix"
	"github.com/oshokin/deploy-push/internal/service/push"
)

// Options contains inputs for the build-only entry point.
type Options struct {
	// ConfigPath is the path of the push manifest (defaults to deploy-push.yaml).
	ConfigPath string
	// Overrides are command-line values applied over the manifest.
	Overrides config.Overrides
	// Runner executes nix commands; nil means local processes.
	Runner nix.Runner
}

// Run builds the content-addressed profile described by the manifest and
// returns its realized store path.
func Run(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "deploy-build")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", fmt.Errorf("load push manifest: %w", err)
	}

	settings := cfg.Settings()
	opts.Overrides.Apply(settings)

	runner := opts.Runner
	if runner == nil {
		runner = nix.NewExecRunner()
	}

	target := cfg.Target()
	ctx = logger.WithFields(ctx, "node", target.Node, "profile", target.Profile)

	realized, err := push.New(runner).BuildContentAddressed(ctx, target, settings)
	if err != nil {
		return "", fmt.Errorf("build profile %s/%s: %w", target.Node, target.Profile, err)
	}

	logger.InfoKV(ctx, "Profile realized", "path", realized)

	return realized, nil
}
