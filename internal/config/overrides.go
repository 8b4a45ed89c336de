package config

import (
	"github.com/spf13/pflag"

	"github.com/oshokin/deploy-push/internal/domain/deploy"
)

// Overrides are command-line values that take precedence over the push manifest.
type Overrides struct {
	// Hostname replaces the node hostname for this invocation.
	Hostname string
	// KeepResult forces result links to be kept.
	KeepResult bool
	// ResultPath replaces the result link directory.
	ResultPath string
	// ExtraBuildArgs are appended after the manifest's build arguments.
	ExtraBuildArgs []string
}

// BindFlags registers the override flags on the provided flag set.
func (o *Overrides) BindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.Hostname, "hostname", "", "override the node hostname")
	flags.BoolVar(&o.KeepResult, "keep-result", false, "keep a link to the build result")
	flags.StringVar(&o.ResultPath, "result-path", "", "directory for kept result links (default "+deploy.DefaultResultPath+")")
	flags.StringArrayVar(&o.ExtraBuildArgs, "extra-build-arg", nil, "extra argument for the build command (repeatable)")
}

// Apply merges the overrides into settings.
func (o *Overrides) Apply(settings *deploy.Settings) {
	if o == nil || settings == nil {
		return
	}

	settings.HostnameOverride = o.Hostname

	if o.KeepResult {
		settings.KeepResult = true
	}

	if o.ResultPath != "" {
		settings.ResultPath = o.ResultPath
	}

	settings.ExtraBuildArgs = append(settings.ExtraBuildArgs, o.ExtraBuildArgs...)
}
