package deploy

import (
	"fmt"
	"strconv"
)

// Phase groups error kinds by the pipeline stage that produced them.
type Phase string

// Pipeline phases.
const (
	PhaseResolution   Phase = "resolution"
	PhasePrecondition Phase = "precondition"
	PhaseBuild        Phase = "build"
	PhaseVerification Phase = "verification"
	PhaseSign         Phase = "sign"
	PhaseCopy         Phase = "copy"
)

// Kind identifies a single failure of the push pipeline.
type Kind int

// Error kinds, in pipeline order.
const (
	KindShowDerivationStart Kind = iota + 1
	KindShowDerivationExit
	KindShowDerivationUTF8
	KindShowDerivationParse
	KindShowDerivationEmpty
	KindCADerivationNonFlake
	KindBuildStart
	KindBuildRun
	KindBuildExit
	KindDeployRsActivateMissing
	KindActivateRsMissing
	KindSignStart
	KindSignExit
	KindCopyStart
	KindCopyExit
)

// kindInfo holds the phase and operator-facing message of a kind.
type kindInfo struct {
	phase   Phase
	message string
}

//nolint:gochecknoglobals // Static lookup table.
var kinds = map[Kind]kindInfo{
	KindShowDerivationStart: {PhaseResolution, "failed to run nix show-derivation command"},
	KindShowDerivationExit:  {PhaseResolution, "nix show-derivation command resulted in a bad exit code"},
	KindShowDerivationUTF8:  {PhaseResolution, "nix show-derivation command output contained an invalid UTF-8 sequence"},
	KindShowDerivationParse: {PhaseResolution, "failed to parse the output of nix show-derivation"},
	KindShowDerivationEmpty: {PhaseResolution, "nix show-derivation output is empty"},
	KindCADerivationNonFlake: {
		PhasePrecondition,
		"cannot build a content-addressed derivation without a flake",
	},
	KindBuildStart: {PhaseBuild, "failed to start nix build command"},
	KindBuildRun:   {PhaseBuild, "nix build command finished with error"},
	KindBuildExit:  {PhaseBuild, "nix build command resulted in a bad exit code"},
	KindDeployRsActivateMissing: {
		PhaseVerification,
		"activation script deploy-rs-activate does not exist in profile.\n" +
			"Did you forget to use deploy-rs#lib.<...>.activate.<...> on your profile path?",
	},
	KindActivateRsMissing: {
		PhaseVerification,
		"activation script activate-rs does not exist in profile.\n" +
			"Is there a mismatch in deploy-rs used in the flake you're deploying and deploy-rs command you're running?",
	},
	KindSignStart: {PhaseSign, "failed to run nix sign command"},
	KindSignExit:  {PhaseSign, "nix sign command resulted in a bad exit code"},
	KindCopyStart: {PhaseCopy, "failed to run nix copy command"},
	KindCopyExit:  {PhaseCopy, "nix copy command resulted in a bad exit code"},
}

// Phase returns the pipeline phase the kind belongs to.
func (k Kind) Phase() Phase {
	return kinds[k].phase
}

// String returns the operator-facing message of the kind.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}

	return "unknown push error " + strconv.Itoa(int(k))
}

// hasExitCode reports whether errors of this kind describe a process exit status.
func (k Kind) hasExitCode() bool {
	switch k {
	case KindShowDerivationExit, KindBuildExit, KindSignExit, KindCopyExit:
		return true
	default:
		return false
	}
}

// Error is a phase-tagged failure of the push pipeline.
type Error struct {
	// Kind identifies the failure.
	Kind Kind
	// ExitCode is the exit code of the failed process. It is nil when the
	// process did not exit normally, e.g. when it was killed by a signal.
	ExitCode *int
	// Err is the underlying I/O or decoding error, if any.
	Err error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrShowDerivationStart     = &Error{Kind: KindShowDerivationStart}
	ErrShowDerivationExit      = &Error{Kind: KindShowDerivationExit}
	ErrShowDerivationUTF8      = &Error{Kind: KindShowDerivationUTF8}
	ErrShowDerivationParse     = &Error{Kind: KindShowDerivationParse}
	ErrShowDerivationEmpty     = &Error{Kind: KindShowDerivationEmpty}
	ErrCADerivationNonFlake    = &Error{Kind: KindCADerivationNonFlake}
	ErrBuildStart              = &Error{Kind: KindBuildStart}
	ErrBuildRun                = &Error{Kind: KindBuildRun}
	ErrBuildExit               = &Error{Kind: KindBuildExit}
	ErrDeployRsActivateMissing = &Error{Kind: KindDeployRsActivateMissing}
	ErrActivateRsMissing       = &Error{Kind: KindActivateRsMissing}
	ErrSignStart               = &Error{Kind: KindSignStart}
	ErrSignExit                = &Error{Kind: KindSignExit}
	ErrCopyStart               = &Error{Kind: KindCopyStart}
	ErrCopyExit                = &Error{Kind: KindCopyExit}
)

// NewError returns an error of the given kind wrapping err.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewExitError returns an error of the given kind carrying a process exit code.
func NewExitError(kind Kind, exitCode *int) *Error {
	return &Error{Kind: kind, ExitCode: exitCode}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind.hasExitCode():
		return fmt.Sprintf("%s: %s", e.Kind, FormatExitCode(e.ExitCode))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Kind == e.Kind
}

// Phase returns the pipeline phase that failed.
func (e *Error) Phase() Phase {
	return e.Kind.Phase()
}

// FormatExitCode renders an optional exit code, "none" meaning the process
// did not exit normally.
func FormatExitCode(code *int) string {
	if code == nil {
		return "none"
	}

	return strconv.Itoa(*code)
}
