// Package nix runs the external Nix tools (nix, nix-build) used by the
// deploy pipeline.
//
// Runner abstracts process execution so pipeline stages can be tested
// without Nix installed. ExecRunner is the os/exec implementation; it
// separates failures to spawn (StartError) from failures after spawning
// (WaitError) and reports exit codes without treating them as errors.
package nix
