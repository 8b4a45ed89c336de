package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
)

// Config is the fully resolved description of one profile push.
type Config struct {
	// Repo is the flake reference owning the deploy configuration.
	Repo string `yaml:"repo"`
	// Node is the node name.
	Node string `yaml:"node"`
	// Profile is the profile name on the node.
	Profile string `yaml:"profile"`
	// Path is the profile store path or content-addressed reference.
	Path string `yaml:"path"`
	// Hostname is the node address used for SSH.
	Hostname string `yaml:"hostname"`
	// SSHUser is the remote login.
	SSHUser string `yaml:"ssh_user"`
	// SSHOpts are extra ssh options for the copy.
	SSHOpts []string `yaml:"ssh_opts,omitempty"`
	// FastConnection disables substitution on the destination when true.
	FastConnection *bool `yaml:"fast_connection,omitempty"`
	// CheckSigs keeps signature checks on the destination store.
	CheckSigs bool `yaml:"check_sigs"`
	// SupportsFlakes selects the unified nix build command.
	SupportsFlakes bool `yaml:"supports_flakes"`
	// KeepResult retains result links under ResultPath.
	KeepResult bool `yaml:"keep_result"`
	// ResultPath is the root directory for result links.
	ResultPath string `yaml:"result_path,omitempty"`
	// ExtraBuildArgs are appended to every build command.
	ExtraBuildArgs []string `yaml:"extra_build_args,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename of the push manifest.
	DefaultConfigFilename = "deploy-push.yaml"

	// DefaultRepo is the flake used when none is configured.
	DefaultRepo = "."

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errFieldRequired is returned when a mandatory field is empty.
	errFieldRequired = errors.New("field must be provided")
	// errEmptyBuildArg is returned for blank entries in extra_build_args.
	errEmptyBuildArg = errors.New("extra build arguments must not be empty")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read push manifest: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal push manifest: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal push manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write push manifest: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	required := []struct {
		name  string
		value string
	}{
		{"node", cfg.Node},
		{"profile", cfg.Profile},
		{"path", cfg.Path},
		{"hostname", cfg.Hostname},
		{"ssh_user", cfg.SSHUser},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s: %w", field.name, errFieldRequired)
		}
	}

	for i, arg := range cfg.ExtraBuildArgs {
		if arg == "" {
			return fmt.Errorf("extra_build_args[%d]: %w", i, errEmptyBuildArg)
		}
	}

	if cfg.Repo == "" {
		cfg.Repo = DefaultRepo
	}

	return nil
}

// Target returns the profile identity described by the configuration.
func (c *Config) Target() deploy.Target {
	return deploy.Target{
		Node:    c.Node,
		Profile: c.Profile,
		Path:    c.Path,
		Repo:    c.Repo,
	}
}

// Settings returns the deployment settings described by the configuration.
func (c *Config) Settings() *deploy.Settings {
	return &deploy.Settings{
		SupportsFlakes: c.SupportsFlakes,
		CheckSigs:      c.CheckSigs,
		FastConnection: c.FastConnection,
		SSHOpts:        append([]string(nil), c.SSHOpts...),
		SSHUser:        c.SSHUser,
		Hostname:       c.Hostname,
		ExtraBuildArgs: append([]string(nil), c.ExtraBuildArgs...),
		KeepResult:     c.KeepResult,
		ResultPath:     c.ResultPath,
	}
}
