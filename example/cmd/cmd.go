// Package cmd holds build information shared by the service binaries.
package cmd

// Overridden at build time with -ldflags.
var (
	Version = "dev"
	Date    = "unknown"
)
