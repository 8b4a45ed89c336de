package push

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/google/uuid"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/nix"
)

// Pipeline runs the build, verify, sign and copy stages for one profile at a time.
// It holds no per-push state, so one Pipeline may serve concurrent pushes of
// different profiles.
type Pipeline struct {
	// runner executes the external nix tools.
	runner nix.Runner
	// stat inspects the local filesystem during activation checks.
	stat func(name string) (fs.FileInfo, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStat replaces the filesystem lookup used to verify activation scripts.
func WithStat(stat func(name string) (fs.FileInfo, error)) Option {
	return func(p *Pipeline) {
		if stat != nil {
			p.stat = stat
		}
	}
}

// New creates a pipeline running commands through runner.
func New(runner nix.Runner, opts ...Option) *Pipeline {
	p := &Pipeline{
		runner: runner,
		stat:   os.Stat,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Request is the input of a single push.
type Request struct {
	// Target is the profile being pushed.
	Target deploy.Target
	// Settings are the merged deployment settings for the node.
	Settings *deploy.Settings
	// SigningKey is the path of the local signing key. Empty disables signing.
	SigningKey string
}

// stage is a state of the push state machine.
type stage int

const (
	stageStart stage = iota
	stageBuildStoreLookup
	stageBuildContentAddressed
	stageBuilt
	stageVerified
	stageSigned
	stageSkippedSign
	stageCopied
	stageDone
	stageFailed
)

//nolint:gochecknoglobals // Static lookup table.
var stageNames = [...]string{
	stageStart:                 "start",
	stageBuildStoreLookup:      "build-store-lookup",
	stageBuildContentAddressed: "build-content-addressed",
	stageBuilt:                 "built",
	stageVerified:              "verified",
	stageSigned:                "signed",
	stageSkippedSign:           "skipped-sign",
	stageCopied:                "copied",
	stageDone:                  "done",
	stageFailed:                "failed",
}

func (s stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}

	return "unknown"
}

// run tracks the current stage of one push for logging.
type run struct {
	current stage
}

// advance moves the push to the next stage.
func (r *run) advance(ctx context.Context, next stage) {
	logger.DebugKV(ctx, "Push stage changed", "from", r.current.String(), "to", next.String())
	r.current = next
}

// fail moves the push to the terminal failed state and returns err unchanged.
func (r *run) fail(ctx context.Context, err error) error {
	kvs := []any{"stage", r.current.String(), "error", err}

	var pushErr *deploy.Error
	if errors.As(err, &pushErr) {
		kvs = append(kvs, "phase", string(pushErr.Phase()))
	}

	logger.ErrorKV(ctx, "Push failed", kvs...)
	r.current = stageFailed

	return err
}

// Push builds, verifies, optionally signs and copies the profile to its node.
// Every stage aborts the push on its first failure; nothing is retried.
// The returned artifact is the pushed path (realized for content-addressed profiles).
func (p *Pipeline) Push(ctx context.Context, req *Request) (deploy.Artifact, error) {
	ctx = logger.WithFields(ctx,
		"push_id", uuid.NewString(),
		"node", req.Target.Node,
		"profile", req.Target.Profile)

	r := &run{current: stageStart}

	if req.Target.IsContentAddressed() {
		r.advance(ctx, stageBuildContentAddressed)
	} else {
		r.advance(ctx, stageBuildStoreLookup)
	}

	artifact, err := p.Build(ctx, req.Target, req.Settings)
	if err != nil {
		return nil, r.fail(ctx, err)
	}

	r.advance(ctx, stageBuilt)

	if err = p.VerifyActivation(ctx, artifact); err != nil {
		return nil, r.fail(ctx, err)
	}

	r.advance(ctx, stageVerified)

	signed, err := p.Sign(ctx, artifact, req.SigningKey)
	if err != nil {
		return nil, r.fail(ctx, err)
	}

	if signed {
		r.advance(ctx, stageSigned)
	} else {
		r.advance(ctx, stageSkippedSign)
	}

	if err = p.Copy(ctx, req.Target, artifact, req.Settings); err != nil {
		return nil, r.fail(ctx, err)
	}

	r.advance(ctx, stageCopied)
	r.advance(ctx, stageDone)

	return artifact, nil
}

// execute runs cmd and maps runner failures onto phase-tagged errors.
// A nonzero or missing exit code becomes exitKind.
func (p *Pipeline) execute(
	ctx context.Context,
	cmd *nix.Command,
	startKind, runKind, exitKind deploy.Kind,
) (*nix.Result, error) {
	logger.DebugKV(ctx, "Running command", "command", cmd.String())

	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		var waitErr *nix.WaitError
		if errors.As(err, &waitErr) {
			return nil, deploy.NewError(runKind, waitErr.Err)
		}

		var startErr *nix.StartError
		if errors.As(err, &startErr) {
			return nil, deploy.NewError(startKind, startErr.Err)
		}

		return nil, deploy.NewError(startKind, err)
	}

	if !res.Success() {
		return nil, deploy.NewExitError(exitKind, res.ExitCode)
	}

	return res, nil
}
