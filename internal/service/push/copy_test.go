package push

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/nix"
)

// TestCopy_Flags covers the substitution and signature policy flags.
func TestCopy_Flags(t *testing.T) {
	t.Parallel()

	fast, slow := true, false

	cases := []struct {
		name     string
		settings deploy.Settings
		want     string
	}{
		{
			name:     "unknown speed, no signature check",
			settings: deploy.Settings{},
			want:     "nix copy --substitute-on-destination --no-check-sigs --to ssh://deploy@web1.internal " + storePath,
		},
		{
			name:     "slow connection, checked signatures",
			settings: deploy.Settings{FastConnection: &slow, CheckSigs: true},
			want:     "nix copy --substitute-on-destination --to ssh://deploy@web1.internal " + storePath,
		},
		{
			name:     "fast connection, no signature check",
			settings: deploy.Settings{FastConnection: &fast},
			want:     "nix copy --no-check-sigs --to ssh://deploy@web1.internal " + storePath,
		},
		{
			name:     "fast connection, checked signatures, hostname override",
			settings: deploy.Settings{FastConnection: &fast, CheckSigs: true, HostnameOverride: "10.0.0.5"},
			want:     "nix copy --to ssh://deploy@10.0.0.5 " + storePath,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			settings := tc.settings
			settings.SSHUser = "deploy"
			settings.Hostname = "web1.internal"

			runner := newFakeRunner()

			err := New(runner).Copy(context.Background(), storeTarget(), deploy.StorePathArtifact{StorePath: storePath}, &settings)
			require.NoError(t, err)
			require.Equal(t, []string{tc.want}, runner.commandLines())
		})
	}
}

// TestCopy_SSHOpts passes the joined ssh options through NIX_SSHOPTS.
func TestCopy_SSHOpts(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	settings := &deploy.Settings{
		SSHUser:  "deploy",
		Hostname: "web1.internal",
		SSHOpts:  []string{"-p", "2222", "-o", "ProxyJump=bastion"},
	}

	err := New(runner).Copy(context.Background(), storeTarget(), deploy.StorePathArtifact{StorePath: storePath}, settings)
	require.NoError(t, err)
	require.Equal(t, []string{"NIX_SSHOPTS=-p 2222 -o ProxyJump=bastion"}, runner.call(0).Env)
}

// TestCopy_Failures maps spawn failures and bad exits onto copy errors.
func TestCopy_Failures(t *testing.T) {
	t.Parallel()

	artifact := deploy.StorePathArtifact{StorePath: storePath}
	settings := &deploy.Settings{SSHUser: "deploy", Hostname: "web1.internal"}

	err := New(newFakeRunner(failed(&nix.StartError{Err: os.ErrPermission}))).
		Copy(context.Background(), storeTarget(), artifact, settings)
	require.ErrorIs(t, err, deploy.ErrCopyStart)

	err = New(newFakeRunner(exited(255, ""))).Copy(context.Background(), storeTarget(), artifact, settings)
	require.ErrorIs(t, err, deploy.ErrCopyExit)

	var pushErr *deploy.Error
	require.ErrorAs(t, err, &pushErr)
	require.Equal(t, deploy.PhaseCopy, pushErr.Phase())
	require.Equal(t, 255, *pushErr.ExitCode)
}
