package push

import (
	"context"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/logger"
)

// Activation entry points every deployable profile must contain.
const (
	// ActivateWrapper runs the deploy tool's activation protocol.
	ActivateWrapper = "deploy-rs-activate"
	// ActivateScript is the lower-level activation program.
	ActivateScript = "activate-rs"
)

// VerifyActivation checks that the artifact contains both activation entry
// points. The wrapper is checked first.
func (p *Pipeline) VerifyActivation(ctx context.Context, artifact deploy.Artifact) error {
	root := artifact.Path()

	if !p.exists(root + "/" + ActivateWrapper) {
		return deploy.NewError(deploy.KindDeployRsActivateMissing, nil)
	}

	if !p.exists(root + "/" + ActivateScript) {
		return deploy.NewError(deploy.KindActivateRsMissing, nil)
	}

	logger.DebugKV(ctx, "Activation scripts found", "path", root)

	return nil
}

func (p *Pipeline) exists(name string) bool {
	_, err := p.stat(name)

	return err == nil
}
