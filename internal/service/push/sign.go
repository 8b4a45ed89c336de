package push

import (
	"context"
	"os"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/nix"
)

// SigningKeyEnv names the environment variable holding the local signing key path.
const SigningKeyEnv = "LOCAL_KEY"

// SigningKeyFromEnv reads the signing key once, at pipeline start.
// An unset or empty variable disables signing.
func SigningKeyFromEnv() string {
	return os.Getenv(SigningKeyEnv)
}

// Sign signs the artifact closure with key. It reports whether signing ran;
// an empty key is a no-op.
func (p *Pipeline) Sign(ctx context.Context, artifact deploy.Artifact, key string) (bool, error) {
	if key == "" {
		logger.DebugKV(ctx, "No signing key, skipping signing", "env", SigningKeyEnv)

		return false, nil
	}

	logger.Info(ctx, "Signing key present! Signing profile")

	cmd := &nix.Command{
		Binary: nix.NixBinary,
		Args:   []string{"sign-paths", "-r", "-k", key, artifact.Path()},
	}

	if _, err := p.execute(ctx, cmd, deploy.KindSignStart, deploy.KindSignStart, deploy.KindSignExit); err != nil {
		return false, err
	}

	return true, nil
}
