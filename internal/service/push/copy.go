package push

import (
	"context"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/nix"
)

// SSHOptsEnv is read by nix copy for extra ssh arguments.
const SSHOptsEnv = "NIX_SSHOPTS"

// Copy transfers the artifact closure to the node's store over ssh.
func (p *Pipeline) Copy(
	ctx context.Context,
	target deploy.Target,
	artifact deploy.Artifact,
	settings *deploy.Settings,
) error {
	logger.Infof(ctx, "Copying profile `%s` to node `%s`", target.Profile, target.Node)

	args := []string{"copy"}

	if !settings.IsFastConnection() {
		args = append(args, "--substitute-on-destination")
	}

	if !settings.CheckSigs {
		args = append(args, "--no-check-sigs")
	}

	args = append(args, "--to", settings.RemoteStore(), artifact.Path())

	cmd := &nix.Command{
		Binary: nix.NixBinary,
		Args:   args,
		Env:    []string{SSHOptsEnv + "=" + settings.SSHOptsString()},
	}

	_, err := p.execute(ctx, cmd, deploy.KindCopyStart, deploy.KindCopyStart, deploy.KindCopyExit)

	return err
}
