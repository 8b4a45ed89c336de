// Package push builds a node profile and copies it to the node's store.
//
// A push runs strictly in order: the profile is built (a content-addressed
// profile from its flake attribute, a store path from the derivation found
// with `nix show-derivation`), its activation scripts are verified, it is
// optionally signed with a local key, and finally copied with `nix copy`
// over ssh. The first failing stage aborts the push with a *deploy.Error
// tagged by phase; nothing is retried or rolled back here.
package push
