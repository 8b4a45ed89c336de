package push

import (
	"context"
	"strings"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/nix"
)

// printOutPathsFlag makes nix build print the realized output path on stdout.
const printOutPathsFlag = "--print-out-paths"

// Build realizes the target profile.
//
// Content-addressed profiles are built from their flake attribute and the
// realized path is read from the build output. Store-path profiles are built
// from the derivation that produced them; the configured path stays authoritative.
func (p *Pipeline) Build(ctx context.Context, target deploy.Target, settings *deploy.Settings) (deploy.Artifact, error) {
	if target.IsContentAddressed() {
		logger.InfoKV(ctx, "Profile path is not in the nix store, assuming a content-addressed derivation",
			"path", target.Path, "store", deploy.StorePrefix)

		return p.realize(ctx, target, settings, linkArgs(target, settings))
	}

	derivation, err := p.LocateDerivation(ctx, target.Path)
	if err != nil {
		return nil, err
	}

	cmd := &nix.Command{Binary: nix.LegacyBuildBinary}
	if settings.SupportsFlakes {
		cmd.Binary = nix.NixBinary
		cmd.Args = append(cmd.Args, "build")
	}

	cmd.Args = append(cmd.Args, derivation)
	cmd.Args = append(cmd.Args, linkArgs(target, settings)...)
	cmd.Args = append(cmd.Args, settings.ExtraBuildArgs...)

	logger.Infof(ctx, "Building profile `%s` for node `%s`", target.Profile, target.Node)

	// Nix logs to stderr; the store path printed on stdout is already known.
	if _, err = p.execute(ctx, cmd, deploy.KindBuildStart, deploy.KindBuildRun, deploy.KindBuildExit); err != nil {
		return nil, err
	}

	return deploy.StorePathArtifact{StorePath: target.Path}, nil
}

// BuildContentAddressed realizes a content-addressed profile without keeping
// a result link and returns the realized output path.
func (p *Pipeline) BuildContentAddressed(
	ctx context.Context,
	target deploy.Target,
	settings *deploy.Settings,
) (string, error) {
	logger.InfoKV(ctx, "Assuming a content-addressed derivation", "path", target.Path)

	artifact, err := p.realize(ctx, target, settings, []string{"--no-link"})
	if err != nil {
		return "", err
	}

	return artifact.RealizedPath, nil
}

// realize runs nix build on the profile attribute and parses the realized path.
func (p *Pipeline) realize(
	ctx context.Context,
	target deploy.Target,
	settings *deploy.Settings,
	links []string,
) (deploy.ContentAddressedArtifact, error) {
	if !settings.SupportsFlakes {
		return deploy.ContentAddressedArtifact{}, deploy.NewError(deploy.KindCADerivationNonFlake, nil)
	}

	args := make([]string, 0, 2+len(links)+len(settings.ExtraBuildArgs)+1)
	args = append(args, "build", target.Attribute())
	args = append(args, links...)
	args = append(args, settings.ExtraBuildArgs...)
	// The configured reference is not a usable path, so the output path must be printed.
	args = append(args, printOutPathsFlag)

	cmd := &nix.Command{
		Binary:        nix.NixBinary,
		Args:          args,
		CaptureStdout: true,
	}

	logger.Infof(ctx, "Building content-addressed profile `%s` for node `%s`", target.Profile, target.Node)

	res, err := p.execute(ctx, cmd, deploy.KindBuildStart, deploy.KindBuildRun, deploy.KindBuildExit)
	if err != nil {
		return deploy.ContentAddressedArtifact{}, err
	}

	realized := strings.TrimSpace(string(res.Stdout))

	logger.DebugKV(ctx, "Realized content-addressed profile", "path", realized)

	return deploy.ContentAddressedArtifact{
		Reference:    target.Path,
		RealizedPath: realized,
	}, nil
}

// linkArgs returns the result link policy flags for the build dialect.
func linkArgs(target deploy.Target, settings *deploy.Settings) []string {
	switch {
	case settings.KeepResult:
		return []string{"--out-link", settings.ResultLink(target)}
	case settings.SupportsFlakes:
		return []string{"--no-link"}
	default:
		return []string{"--no-out-link"}
	}
}
