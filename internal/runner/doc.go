// Package runner executes external bioinformatics tools as subprocesses.
// It wraps os/exec with context cancellation, output streaming, and typed
// exit-code errors so the pipeline can distinguish "tool failed" from
// "tool could not be started" and "run was interrupted".
package runner
