// Package deploy contains the core types of the build-and-push pipeline.
//
// Target names the node profile being pushed and Settings carries the merged
// per-node configuration. Artifact is the sealed result of a build: either a
// store path known in advance or the realized output of a content-addressed
// derivation. Error is the single phase-tagged error type returned by every
// pipeline stage.
package deploy
