package integration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/deploy-push/internal/config"
)

// fakeNixScript logs every invocation with NIX_SSHOPTS and imitates the
// subcommands used by a push.
const fakeNixScript = `#!/bin/sh
printf '%s %s|%s\n' "$(basename "$0")" "$*" "$NIX_SSHOPTS" >> "$FAKE_NIX_LOG"
case "$1" in
show-derivation)
	printf '{"%s":{"outputs":{}}}' "$FAKE_NIX_DRV"
	;;
build)
	for arg in "$@"; do
		if [ "$arg" = "--print-out-paths" ]; then
			echo "$FAKE_NIX_REALIZED"
		fi
	done
	exit "${FAKE_NIX_BUILD_EXIT:-0}"
	;;
copy)
	exit "${FAKE_NIX_COPY_EXIT:-0}"
	;;
esac
`

// fakeNix is a PATH with scripted nix and nix-build binaries.
type fakeNix struct {
	logPath  string
	realized string
}

// installFakeNix puts the fake binaries first on PATH and prepares a realized
// profile directory carrying both activation scripts.
// Tests using it mutate the process environment and must not run in parallel.
func installFakeNix(t *testing.T) *fakeNix {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	dir := t.TempDir()
	binDir := filepath.Join(dir, "bin")
	realized := filepath.Join(dir, "store", "cccc-profile")

	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.MkdirAll(realized, 0o755))

	for _, name := range []string{"nix", "nix-build"} {
		//nolint:gosec // Fake binaries must be executable.
		require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte(fakeNixScript), 0o755))
	}

	for _, name := range []string{"deploy-rs-activate", "activate-rs"} {
		require.NoError(t, os.WriteFile(filepath.Join(realized, name), nil, 0o600))
	}

	f := &fakeNix{
		logPath:  filepath.Join(dir, "nix.log"),
		realized: realized,
	}

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("FAKE_NIX_LOG", f.logPath)
	t.Setenv("FAKE_NIX_REALIZED", realized)
	t.Setenv("FAKE_NIX_DRV", "/nix/store/bbbb-profile.drv")
	t.Setenv("NIX_SSHOPTS", "")

	return f
}

// invocations returns the logged command lines as "binary args|NIX_SSHOPTS".
func (f *fakeNix) invocations(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(f.logPath)
	if os.IsNotExist(err) {
		return nil
	}

	require.NoError(t, err)

	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// writeManifest saves cfg as a push manifest in a temporary directory.
func writeManifest(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	return path
}

func caManifest() *config.Config {
	return &config.Config{
		Repo:           "github:acme/infra",
		Node:           "web1",
		Profile:        "system",
		Path:           "/ca-placeholder",
		Hostname:       "web1.internal",
		SSHUser:        "deploy",
		SSHOpts:        []string{"-p", "2222"},
		SupportsFlakes: true,
	}
}
