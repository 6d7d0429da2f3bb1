package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/strainkit/strainkit/internal/config"
	"github.com/strainkit/strainkit/internal/runner"
)

// Stage names in plan order. Stages are addressed by name in the run state
// and in build reports.
const (
	StageIndex     = "index"
	StageFilter    = "filter"
	StageAlign     = "align"
	StageTree      = "tree"
	StageRefine    = "refine"
	StageTraits    = "traits"
	StageAncestral = "ancestral"
	StageExport    = "export"
	StageView      = "view"
)

// Artifact filenames within the results directory.
const (
	fileSequenceIndex = "sequence_index.tsv"
	fileFiltered      = "filtered.fasta"
	fileFilteredMeta  = "meta.tsv"
	fileStrains       = "strains.tsv"
	fileFilterLog     = "output.log"
	fileAligned       = "aligned.fasta"
	fileRawTree       = "tree_raw.nwk"
	fileTimeTree      = "tree.nwk"
	fileBranchLengths = "branch_lengths.json"
	fileTraits        = "traits.json"
	fileNTMuts        = "nt_muts.json"
)

// Stage is one step of the build plan. Stages are stateless values: all
// inputs come from the run configuration and from artifacts earlier stages
// recorded in the run state.
type Stage interface {
	// Name returns the short stage name.
	Name() string

	// Description returns the human-readable description shown in
	// progress banners and reports.
	Description() string

	// Command builds the stage's full argv. It returns an error only
	// when a required artifact from an earlier stage is missing from the
	// run state.
	Command(cfg *config.Config, state *RunState) (runner.Command, error)

	// Outputs lists the artifact paths the stage produces, in a stable
	// order that later stages rely on.
	Outputs(cfg *config.Config) []string
}

// DefaultPlan returns the fixed build plan in execution order: index,
// filter, align, tree, refine, traits, ancestral, export, view.
func DefaultPlan() []Stage {
	return []Stage{
		indexStage{},
		filterStage{},
		alignStage{},
		treeStage{},
		refineStage{},
		traitsStage{},
		ancestralStage{},
		exportStage{},
		viewStage{},
	}
}

func resultPath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.ResultsDir, name)
}

func missingArtifact(what, stage string) error {
	return fmt.Errorf("%w: %s (from stage %s)", ErrMissingArtifact, what, stage)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// indexStage runs `augur index` to precompute sequence composition, which
// the filter stage uses to subsample without re-reading every sequence.
type indexStage struct{}

func (indexStage) Name() string        { return StageIndex }
func (indexStage) Description() string { return "Indexing sequences" }

func (indexStage) Command(cfg *config.Config, _ *RunState) (runner.Command, error) {
	return runner.Command{
		Program: "augur",
		Args: []string{
			"index",
			"--sequences", cfg.Sequences,
			"--output", resultPath(cfg, fileSequenceIndex),
		},
	}, nil
}

func (indexStage) Outputs(cfg *config.Config) []string {
	return []string{resultPath(cfg, fileSequenceIndex)}
}

// filterStage runs `augur filter` to subsample sequences by metadata group.
// Force-include options appear in the argv only when configured.
type filterStage struct{}

func (filterStage) Name() string        { return StageFilter }
func (filterStage) Description() string { return "Filtering metadata and sequences" }

func (filterStage) Command(cfg *config.Config, state *RunState) (runner.Command, error) {
	index := state.First(StageIndex)
	if index == "" {
		return runner.Command{}, missingArtifact("sequence index", StageIndex)
	}

	args := []string{
		"filter",
		"--metadata", cfg.Metadata,
		"--sequences", cfg.Sequences,
		"--sequence-index", index,
		"--group-by",
	}
	args = append(args, cfg.GroupBy...)
	args = append(args,
		"--output", resultPath(cfg, fileFiltered),
		"--output-metadata", resultPath(cfg, fileFilteredMeta),
		"--output-strains", resultPath(cfg, fileStrains),
		"--output-log", resultPath(cfg, fileFilterLog),
	)
	if cfg.IncludeStrains != "" {
		args = append(args, "--include", cfg.IncludeStrains)
	}
	if cfg.IncludeWhere != "" {
		args = append(args, "--include-where", cfg.IncludeWhere)
	}
	args = append(args, "--sequences-per-group", strconv.Itoa(cfg.SequencesPerGroup))

	return runner.Command{Program: "augur", Args: args}, nil
}

// Outputs order is load-bearing: meta.tsv (index 1) is read by the refine
// and traits stages.
func (filterStage) Outputs(cfg *config.Config) []string {
	return []string{
		resultPath(cfg, fileFiltered),
		resultPath(cfg, fileFilteredMeta),
		resultPath(cfg, fileStrains),
		resultPath(cfg, fileFilterLog),
	}
}

// alignStage runs `augur align` against the reference. It consumes the raw
// sequence archive, not the filtered subset; downstream stages operate on
// the filtered strain list via metadata.
type alignStage struct{}

func (alignStage) Name() string        { return StageAlign }
func (alignStage) Description() string { return "Aligning sequences to the reference" }

func (alignStage) Command(cfg *config.Config, _ *RunState) (runner.Command, error) {
	return runner.Command{
		Program: "augur",
		Args: []string{
			"align",
			"--sequences", cfg.Sequences,
			"--output", resultPath(cfg, fileAligned),
			"--nthreads", strconv.Itoa(cfg.Threads),
			"--reference-sequence", cfg.Reference,
		},
	}, nil
}

func (alignStage) Outputs(cfg *config.Config) []string {
	return []string{resultPath(cfg, fileAligned)}
}

// treeStage runs `augur tree` to build the raw divergence phylogeny.
type treeStage struct{}

func (treeStage) Name() string        { return StageTree }
func (treeStage) Description() string { return "Constructing the phylogeny" }

func (treeStage) Command(cfg *config.Config, state *RunState) (runner.Command, error) {
	alignment := state.First(StageAlign)
	if alignment == "" {
		return runner.Command{}, missingArtifact("alignment", StageAlign)
	}

	return runner.Command{
		Program: "augur",
		Args: []string{
			"tree",
			"--alignment", alignment,
			"--output", resultPath(cfg, fileRawTree),
			"--nthreads", strconv.Itoa(cfg.Threads),
		},
	}, nil
}

func (treeStage) Outputs(cfg *config.Config) []string {
	return []string{resultPath(cfg, fileRawTree)}
}

// refineStage runs `augur refine` to produce the time-resolved tree under a
// fixed molecular clock.
type refineStage struct{}

func (refineStage) Name() string        { return StageRefine }
func (refineStage) Description() string { return "Constructing the time-resolved tree" }

func (refineStage) Command(cfg *config.Config, state *RunState) (runner.Command, error) {
	alignment := state.First(StageAlign)
	if alignment == "" {
		return runner.Command{}, missingArtifact("alignment", StageAlign)
	}
	rawTree := state.First(StageTree)
	if rawTree == "" {
		return runner.Command{}, missingArtifact("raw tree", StageTree)
	}
	metadata := state.Path(StageFilter, 1)
	if metadata == "" {
		return runner.Command{}, missingArtifact("filtered metadata", StageFilter)
	}

	return runner.Command{
		Program: "augur",
		Args: []string{
			"refine",
			"--alignment", alignment,
			"--tree", rawTree,
			"--metadata", metadata,
			"--output-tree", resultPath(cfg, fileTimeTree),
			"--output-node-data", resultPath(cfg, fileBranchLengths),
			"--timetree",
			"--coalescent", "opt",
			"--date-inference", "joint",
			"--stochastic-resolve",
			"--clock-std-dev", formatFloat(cfg.ClockStdDev),
			"--clock-rate", formatFloat(cfg.ClockRate),
			"--date-confidence",
		},
	}, nil
}

// Outputs order is load-bearing: tree.nwk (index 0) feeds traits, ancestral,
// and export; branch_lengths.json (index 1) feeds export.
func (refineStage) Outputs(cfg *config.Config) []string {
	return []string{
		resultPath(cfg, fileTimeTree),
		resultPath(cfg, fileBranchLengths),
	}
}

// traitsStage runs `augur traits` to reconstruct ancestral metadata states
// for the configured columns.
type traitsStage struct{}

func (traitsStage) Name() string        { return StageTraits }
func (traitsStage) Description() string { return "Inferring ancestral traits" }

func (traitsStage) Command(cfg *config.Config, state *RunState) (runner.Command, error) {
	tree := state.First(StageRefine)
	if tree == "" {
		return runner.Command{}, missingArtifact("time-resolved tree", StageRefine)
	}
	metadata := state.Path(StageFilter, 1)
	if metadata == "" {
		return runner.Command{}, missingArtifact("filtered metadata", StageFilter)
	}

	args := []string{
		"traits",
		"--tree", tree,
		"--metadata", metadata,
		"--columns",
	}
	args = append(args, cfg.TraitColumns...)
	args = append(args,
		"--confidence",
		"--output-node-data", resultPath(cfg, fileTraits),
	)

	return runner.Command{Program: "augur", Args: args}, nil
}

func (traitsStage) Outputs(cfg *config.Config) []string {
	return []string{resultPath(cfg, fileTraits)}
}

// ancestralStage runs `augur ancestral` to infer nucleotide states at
// internal nodes.
type ancestralStage struct{}

func (ancestralStage) Name() string        { return StageAncestral }
func (ancestralStage) Description() string { return "Inferring ancestral sequence states" }

func (ancestralStage) Command(cfg *config.Config, state *RunState) (runner.Command, error) {
	tree := state.First(StageRefine)
	if tree == "" {
		return runner.Command{}, missingArtifact("time-resolved tree", StageRefine)
	}
	alignment := state.First(StageAlign)
	if alignment == "" {
		return runner.Command{}, missingArtifact("alignment", StageAlign)
	}

	return runner.Command{
		Program: "augur",
		Args: []string{
			"ancestral",
			"--tree", tree,
			"--alignment", alignment,
			"--output-node-data", resultPath(cfg, fileNTMuts),
		},
	}, nil
}

func (ancestralStage) Outputs(cfg *config.Config) []string {
	return []string{resultPath(cfg, fileNTMuts)}
}

// exportStage runs `augur export v2` to assemble the auspice dataset from
// the tree and every node-data file. Attribution flags appear in the argv
// only when configured.
type exportStage struct{}

func (exportStage) Name() string        { return StageExport }
func (exportStage) Description() string { return "Exporting the auspice dataset" }

func (exportStage) Command(cfg *config.Config, state *RunState) (runner.Command, error) {
	tree := state.First(StageRefine)
	if tree == "" {
		return runner.Command{}, missingArtifact("time-resolved tree", StageRefine)
	}
	branchLengths := state.Path(StageRefine, 1)
	if branchLengths == "" {
		return runner.Command{}, missingArtifact("branch lengths", StageRefine)
	}
	traits := state.First(StageTraits)
	if traits == "" {
		return runner.Command{}, missingArtifact("trait node data", StageTraits)
	}
	ntMuts := state.First(StageAncestral)
	if ntMuts == "" {
		return runner.Command{}, missingArtifact("nucleotide mutations", StageAncestral)
	}

	args := []string{
		"export", "v2",
		"--auspice-config", cfg.AuspiceConfigPath(),
		"--title", cfg.Title,
	}
	if cfg.Maintainers != "" {
		args = append(args, "--maintainers", cfg.Maintainers)
	}
	if cfg.BuildURL != "" {
		args = append(args, "--build-url", cfg.BuildURL)
	}
	args = append(args,
		"--node-data", branchLengths, traits, ntMuts,
		"--colors", cfg.Colors,
		"--lat-longs", cfg.LatLongs,
		"--tree", tree,
		"--output", cfg.DatasetPath(),
		"--color-by-metadata",
	)
	args = append(args, cfg.ColorByMetadata...)

	return runner.Command{Program: "augur", Args: args}, nil
}

func (exportStage) Outputs(cfg *config.Config) []string {
	return []string{cfg.DatasetPath()}
}

// viewStage runs `nextstrain view` on the auspice directory. It is the only
// terminal stage: every artifact already exists when it starts, so its
// failure does not invalidate the build.
type viewStage struct{}

func (viewStage) Name() string        { return StageView }
func (viewStage) Description() string { return "Launching the auspice viewer" }

func (viewStage) Command(cfg *config.Config, _ *RunState) (runner.Command, error) {
	return runner.Command{
		Program: "nextstrain",
		Args:    []string{"view", cfg.AuspiceDir + "/"},
	}, nil
}

func (viewStage) Outputs(_ *config.Config) []string {
	return nil
}

// Terminal marks the viewer stage as non-artifact-producing.
func (viewStage) Terminal() bool {
	return true
}
