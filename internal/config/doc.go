// Package config defines the push manifest consumed by the deploy binaries
// and provides helpers to load, validate and save it in YAML format.
//
// A manifest describes one node profile (node, profile, path, flake) together
// with its merged deployment settings. Overrides holds command-line values
// that take precedence over the manifest.
package config
