// Package model defines the core data structures used throughout strainkit.
//
// This package contains the following main types:
//   - BuildReport: The aggregate result of one pipeline run
//   - StageResult: The outcome of a single pipeline stage
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (pipeline, report, database) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
