package deploy

// Artifact is a built profile ready for verification, signing and copying.
// The interface is sealed: only the build step produces values, so an
// unrealized content-addressed reference can never be signed or copied.
type Artifact interface {
	// Path is the local store path that holds the profile.
	Path() string
	// ContentAddressed reports whether the path was resolved by the build.
	ContentAddressed() bool

	artifact()
}

// StorePathArtifact is a profile whose store path was known before the build.
type StorePathArtifact struct {
	// StorePath is the configured profile path.
	StorePath string
}

// Path returns the configured store path.
func (a StorePathArtifact) Path() string { return a.StorePath }

// ContentAddressed always returns false.
func (StorePathArtifact) ContentAddressed() bool { return false }

func (StorePathArtifact) artifact() {}

// ContentAddressedArtifact is a profile realized from a content-addressed derivation.
type ContentAddressedArtifact struct {
	// Reference is the configured, unrealized profile path.
	Reference string
	// RealizedPath is the output path printed by the build.
	RealizedPath string
}

// Path returns the realized output path.
func (a ContentAddressedArtifact) Path() string { return a.RealizedPath }

// ContentAddressed always returns true.
func (ContentAddressedArtifact) ContentAddressed() bool { return true }

func (ContentAddressedArtifact) artifact() {}
