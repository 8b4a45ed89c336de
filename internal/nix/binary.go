package nix

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// determinateProfileBin is where Determinate Nix installs its binaries.
// It is outside PATH by default, so it is checked after the PATH lookup.
const determinateProfileBin = "/nix/var/nix/profiles/default/bin"

// ErrBinaryNotFound is returned when a Nix tool cannot be located.
var ErrBinaryNotFound = errors.New("binary not found")

// FindBinary resolves a Nix binary by name. Names containing a path separator
// are used as-is; otherwise PATH is searched first, then the Determinate Nix
// profile directory.
func FindBinary(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	determinatePath := filepath.Join(determinateProfileBin, name)
	if _, err := os.Stat(determinatePath); err == nil {
		return determinatePath, nil
	}

	return "", fmt.Errorf("%s: not on PATH or at %s: %w", name, determinatePath, ErrBinaryNotFound)
}
