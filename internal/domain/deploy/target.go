package deploy

import "strings"

// StorePrefix is the root of the local Nix store. Profile paths outside it are
// treated as content-addressed references that still need to be realized.
const StorePrefix = "/nix/store"

// Target identifies the profile being pushed to a node.
type Target struct {
	// Node is the name of the node in the deploy configuration.
	Node string
	// Profile is the name of the profile on that node.
	Profile string
	// Path is the profile path declared by the configuration: either a store
	// path or a content-addressed reference without a known output yet.
	Path string
	// Repo is the flake reference owning the deploy configuration.
	Repo string
}

// IsContentAddressed reports whether the profile path is not yet a concrete store path.
func (t Target) IsContentAddressed() bool {
	return !strings.HasPrefix(t.Path, StorePrefix)
}

// Attribute returns the flake attribute that evaluates to the profile path.
func (t Target) Attribute() string {
	return t.Repo + "#deploy.nodes." + t.Node + ".profiles." + t.Profile + ".path"
}
