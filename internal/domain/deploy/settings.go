package deploy

import "strings"

// DefaultResultPath is where build result links are kept when no directory is configured.
const DefaultResultPath = "./.deploy-gc"

// Settings is the merged node and profile configuration for a single push.
type Settings struct {
	// SupportsFlakes selects `nix build` over the legacy `nix-build`.
	SupportsFlakes bool
	// CheckSigs keeps signature verification enabled on the destination store.
	CheckSigs bool
	// FastConnection disables substitution on the destination when explicitly true.
	// Nil means the connection speed is unknown.
	FastConnection *bool
	// SSHOpts are passed to the copy tool through NIX_SSHOPTS.
	SSHOpts []string
	// SSHUser is the remote login used in the ssh:// store URI.
	SSHUser string
	// Hostname is the node's declared address.
	Hostname string
	// HostnameOverride comes from the command line and wins over Hostname.
	HostnameOverride string
	// ExtraBuildArgs are appended verbatim to every build command.
	ExtraBuildArgs []string
	// KeepResult retains a link to the build output under ResultPath.
	KeepResult bool
	// ResultPath is the root directory for kept result links.
	ResultPath string
}

// ResolveHostname returns the command-line override if set, otherwise the node hostname.
func (s *Settings) ResolveHostname() string {
	if s.HostnameOverride != "" {
		return s.HostnameOverride
	}

	return s.Hostname
}

// ResultLink returns the out-link location for the target, namespaced by node
// and profile so parallel pushes never share a link.
func (s *Settings) ResultLink(target Target) string {
	root := s.ResultPath
	if root == "" {
		root = DefaultResultPath
	}

	return root + "/" + target.Node + "/" + target.Profile
}

// IsFastConnection reports whether the connection was explicitly marked fast.
func (s *Settings) IsFastConnection() bool {
	return s.FastConnection != nil && *s.FastConnection
}

// SSHOptsString joins the SSH options with single spaces.
// Options are not quoted, so an option containing spaces is split by the
// receiving ssh invocation.
func (s *Settings) SSHOptsString() string {
	return strings.Join(s.SSHOpts, " ")
}

// RemoteStore returns the ssh:// store URI of the destination.
func (s *Settings) RemoteStore() string {
	return "ssh://" + s.SSHUser + "@" + s.ResolveHostname()
}
