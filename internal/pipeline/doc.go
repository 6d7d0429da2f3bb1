// Package pipeline drives the fixed chain of augur and nextstrain
// invocations that turns raw sequences, a reference, and metadata into a
// time-resolved annotated phylogeny served by auspice.
//
// The plan is a sequence of stages (index, filter, align, tree, refine,
// traits, ancestral, export, view). Each stage builds its command line from
// the run configuration and from the artifacts earlier stages recorded in
// the RunState, so data flows through declared file paths rather than shell
// conventions. Stages execute strictly in order; the first failure aborts
// the run, and every attempted stage leaves a StageResult in the build
// report. The final viewer stage is terminal: its failure is reported but
// does not invalidate the exported dataset.
package pipeline
