// Package metrics records the outcome of a push for the node exporter
// textfile collector. A push is a short-lived process, so metrics are written
// to a file once at exit instead of being scraped.
package metrics
