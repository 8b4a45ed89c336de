// Package integration runs the push and build entry points against fake nix
// binaries placed on PATH.
package integration
