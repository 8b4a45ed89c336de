package push

import (
	"context"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/nix"
)

// response is a scripted outcome of one fake command.
type response struct {
	result *nix.Result
	err    error
}

// fakeRunner records commands and replays scripted responses in order.
// Once the script is exhausted every command succeeds with empty output.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []*nix.Command
	responses []response
}

func newFakeRunner(responses ...response) *fakeRunner {
	return &fakeRunner{responses: responses}
}

func (f *fakeRunner) Run(_ context.Context, cmd *nix.Command) (*nix.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cmd)

	if len(f.responses) == 0 {
		return exited(0, "").result, nil
	}

	next := f.responses[0]
	f.responses = f.responses[1:]

	return next.result, next.err
}

// commandLines renders every recorded command.
func (f *fakeRunner) commandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, c.String())
	}

	return lines
}

func (f *fakeRunner) call(i int) *nix.Command {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[i]
}

func exited(code int, stdout string) response {
	return response{result: &nix.Result{Stdout: []byte(stdout), ExitCode: &code}}
}

func signalled() response {
	return response{result: &nix.Result{}}
}

func failed(err error) response {
	return response{err: err}
}

// fakeStore serves activation checks from an in-memory filesystem rooted at "/".
func fakeStore(t *testing.T, files ...string) Option {
	t.Helper()

	store := fstest.MapFS{}
	for _, name := range files {
		store[strings.TrimPrefix(name, "/")] = &fstest.MapFile{Mode: 0o555}
	}

	return WithStat(func(name string) (fs.FileInfo, error) {
		return fs.Stat(store, strings.TrimPrefix(name, "/"))
	})
}

// activatable lists both activation scripts under root.
func activatable(root string) []string {
	return []string{root + "/" + ActivateWrapper, root + "/" + ActivateScript}
}

const (
	storePath  = "/nix/store/aaaa-profile"
	derivation = "/nix/store/bbbb-profile.drv"
	realized   = "/nix/store/cccc-profile"
)

func storeTarget() deploy.Target {
	return deploy.Target{
		Node:    "web1",
		Profile: "system",
		Path:    storePath,
		Repo:    "github:acme/infra",
	}
}

func caTarget() deploy.Target {
	target := storeTarget()
	target.Path = "/ca-placeholder"

	return target
}

func showDerivation(name string) response {
	return exited(0, `{"`+name+`":{"outputs":{"out":{"path":"`+storePath+`"}}}}`)
}
