// Package buildca realizes a content-addressed profile without pushing it.
// It is the build-only counterpart of package push and reports failures with
// the same *deploy.Error kinds.
package buildca
