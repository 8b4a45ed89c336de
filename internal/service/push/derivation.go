package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
	"github.com/oshokin/deploy-push/internal/logger"
	"github.com/oshokin/deploy-push/internal/nix"
)

// errInvalidUTF8 is wrapped when show-derivation prints bytes that are not UTF-8.
var errInvalidUTF8 = errors.New("invalid UTF-8 sequence")

// LocateDerivation returns the derivation that produces storePath.
// `nix-store --query --deriver` does not work on invalid paths, so the
// output of `nix show-derivation` is parsed instead.
func (p *Pipeline) LocateDerivation(ctx context.Context, storePath string) (string, error) {
	logger.DebugKV(ctx, "Finding the deriver of store path", "path", storePath)

	cmd := &nix.Command{
		Binary:        nix.NixBinary,
		Args:          []string{"show-derivation", storePath},
		CaptureStdout: true,
	}

	res, err := p.execute(ctx, cmd,
		deploy.KindShowDerivationStart,
		deploy.KindShowDerivationStart,
		deploy.KindShowDerivationExit,
	)
	if err != nil {
		return "", err
	}

	if err = validateUTF8(res.Stdout); err != nil {
		return "", deploy.NewError(deploy.KindShowDerivationUTF8, err)
	}

	name, count, err := firstDerivation(res.Stdout)
	if err != nil {
		return "", err
	}

	if count > 1 {
		logger.WarnKV(ctx, "Nix show-derivation returned several derivations, using the first one",
			"derivation", name, "count", count)
	}

	logger.DebugKV(ctx, "Found derivation", "derivation", name)

	return name, nil
}

// validateUTF8 reports the offset of the first invalid UTF-8 sequence.
func validateUTF8(data []byte) error {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("%w at byte %d", errInvalidUTF8, i)
		}

		i += size
	}

	return nil
}

// firstDerivation decodes the show-derivation object and returns its first
// key in document order together with the number of keys.
func firstDerivation(data []byte) (string, int, error) {
	var derivations map[string]json.RawMessage
	if err := json.Unmarshal(data, &derivations); err != nil {
		return "", 0, deploy.NewError(deploy.KindShowDerivationParse, err)
	}

	if len(derivations) == 0 {
		return "", 0, deploy.NewError(deploy.KindShowDerivationEmpty, nil)
	}

	// Map iteration order is random; walk the tokens to keep the first key stable.
	decoder := json.NewDecoder(bytes.NewReader(data))

	if _, err := decoder.Token(); err != nil {
		return "", 0, deploy.NewError(deploy.KindShowDerivationParse, err)
	}

	token, err := decoder.Token()
	if err != nil {
		return "", 0, deploy.NewError(deploy.KindShowDerivationParse, err)
	}

	name, ok := token.(string)
	if !ok {
		return "", 0, deploy.NewError(deploy.KindShowDerivationParse,
			fmt.Errorf("unexpected token %v", token))
	}

	return name, len(derivations), nil
}
