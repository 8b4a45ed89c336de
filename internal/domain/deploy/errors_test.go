package deploy

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestError_IsMatchesKind ensures sentinels match by kind regardless of payload.
func TestError_IsMatchesKind(t *testing.T) {
	t.Parallel()

	code := 1
	err := fmt.Errorf("push web1/system: %w", NewExitError(KindBuildExit, &code))

	require.ErrorIs(t, err, ErrBuildExit)
	require.NotErrorIs(t, err, ErrCopyExit)

	var pushErr *Error
	require.ErrorAs(t, err, &pushErr)
	require.Equal(t, PhaseBuild, pushErr.Phase())
	require.NotNil(t, pushErr.ExitCode)
	require.Equal(t, 1, *pushErr.ExitCode)
}

// TestError_Messages checks rendering of exit codes and wrapped causes.
func TestError_Messages(t *testing.T) {
	t.Parallel()

	code := 3
	require.Equal(t,
		"nix copy command resulted in a bad exit code: 3",
		NewExitError(KindCopyExit, &code).Error())
	require.Equal(t,
		"nix build command resulted in a bad exit code: none",
		NewExitError(KindBuildExit, nil).Error())

	wrapped := NewError(KindBuildRun, io.ErrUnexpectedEOF)
	require.Equal(t, "nix build command finished with error: unexpected EOF", wrapped.Error())
	require.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)

	require.Contains(t, ErrDeployRsActivateMissing.Error(), "deploy-rs-activate")
	require.Contains(t, ErrActivateRsMissing.Error(), "activate-rs does not exist")
	require.Contains(t, Kind(99).String(), "unknown")
}

// TestKind_Phase verifies every kind is assigned to a phase.
func TestKind_Phase(t *testing.T) {
	t.Parallel()

	for kind := KindShowDerivationStart; kind <= KindCopyExit; kind++ {
		require.NotEmpty(t, kind.Phase(), kind.String())
	}

	require.Equal(t, PhasePrecondition, KindCADerivationNonFlake.Phase())
	require.Equal(t, PhaseVerification, KindActivateRsMissing.Phase())
	require.NotEqual(t, KindDeployRsActivateMissing, KindActivateRsMissing)
	require.False(t, errors.Is(ErrDeployRsActivateMissing, ErrActivateRsMissing))
}
