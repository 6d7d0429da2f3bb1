// Package config provides configuration structures and utilities for
// strainkit. It defines the run configuration for the build pipeline,
// XDG directory helpers, and the loader for per-project .strainkit
// profile files.
package config
