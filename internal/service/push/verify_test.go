package push

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
)

// TestVerifyActivation checks each missing script yields its own error, wrapper first.
func TestVerifyActivation(t *testing.T) {
	t.Parallel()

	artifact := deploy.StorePathArtifact{StorePath: storePath}

	cases := []struct {
		name  string
		files []string
		want  error
	}{
		{
			name:  "both present",
			files: activatable(storePath),
		},
		{
			name:  "wrapper missing",
			files: []string{storePath + "/" + ActivateScript},
			want:  deploy.ErrDeployRsActivateMissing,
		},
		{
			name:  "script missing",
			files: []string{storePath + "/" + ActivateWrapper},
			want:  deploy.ErrActivateRsMissing,
		},
		{
			name: "both missing reports the wrapper",
			want: deploy.ErrDeployRsActivateMissing,
		},
		{
			name:  "scripts of another profile",
			files: activatable("/nix/store/dddd-other"),
			want:  deploy.ErrDeployRsActivateMissing,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := New(newFakeRunner(), fakeStore(t, tc.files...)).VerifyActivation(context.Background(), artifact)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tc.want)
		})
	}
}

// TestVerifyActivation_RealFilesystem uses the default os.Stat lookup on a realized path.
func TestVerifyActivation_RealFilesystem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	artifact := deploy.ContentAddressedArtifact{Reference: "/ca-placeholder", RealizedPath: dir}
	pipeline := New(newFakeRunner())

	require.ErrorIs(t, pipeline.VerifyActivation(context.Background(), artifact), deploy.ErrDeployRsActivateMissing)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ActivateWrapper), nil, 0o600))
	require.ErrorIs(t, pipeline.VerifyActivation(context.Background(), artifact), deploy.ErrActivateRsMissing)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ActivateScript), nil, 0o600))
	require.NoError(t, pipeline.VerifyActivation(context.Background(), artifact))
}
