package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Directory defaults match the layout a Nextstrain build conventionally uses;
// analysis tunables mirror the parameters the augur stages were calibrated with.
const (
	// DefaultResultsDir is where intermediate stage artifacts are written.
	// The directory is created before the first stage runs if it does not
	// already exist.
	DefaultResultsDir = "results"

	// DefaultConfigsDir holds the auspice export configuration, the color
	// table, and the lat/long table. It is not created automatically;
	// `strainkit init` scaffolds it.
	DefaultConfigsDir = "configs"

	// DefaultAuspiceDir receives the final visualization dataset and is
	// the directory served by `nextstrain view`.
	DefaultAuspiceDir = "auspice"

	// DefaultThreads is forwarded to the external aligner and tree builder
	// via their --nthreads flags. It only bounds parallelism inside those
	// tools; the stages themselves always run strictly in sequence.
	DefaultThreads = 8

	// DefaultTitle is the auspice build title when none is given. The
	// dataset filename is derived from the title, so the default build
	// exports to auspice/nextstrain-analysis.json.
	DefaultTitle = "Nextstrain Analysis"

	// DefaultSequencesPerGroup caps subsampling per metadata group during
	// the filter stage.
	DefaultSequencesPerGroup = 2

	// DefaultClockRate and DefaultClockStdDev fix the molecular clock for
	// the refine stage. The defaults suit fast-evolving RNA viruses such
	// as West Nile virus; override them in a profile for other organisms.
	DefaultClockRate   = 0.0008
	DefaultClockStdDev = 0.0002

	// ConfigsPlaceholder is the token users may embed in the lat/long and
	// color table paths. It is substituted with the configs directory by
	// ResolvePaths before the pipeline starts, so overriding --configs
	// moves the default tables along with it.
	ConfigsPlaceholder = "${configs}"

	// AppName is the application name used for XDG directory paths.
	AppName = "strainkit"
)

// Default lookup table paths, expressed with the configs placeholder.
const (
	DefaultLatLongs = ConfigsPlaceholder + "/lat_longs.tsv"
	DefaultColors   = ConfigsPlaceholder + "/colors.tsv"
)

// Default grouping and trait parameters for the filter, traits, and export
// stages. These are functions because slices cannot be constants; each call
// returns a fresh slice so callers may freely modify their copy.
func defaultGroupBy() []string         { return []string{"country", "year", "month"} }
func defaultTraitColumns() []string    { return []string{"country", "region", "host", "year"} }
func defaultColorByMetadata() []string { return []string{"country", "region", "host"} }

// Config holds all configuration for one build run.
// It is populated from CLI flags and an optional profile file, resolved once
// with ResolvePaths, validated once with Validate, and passed through the
// application via dependency injection rather than global state. The pipeline
// treats it as read-only.
type Config struct {
	// ResultsDir is the directory for intermediate stage outputs such as
	// the alignment, the trees, and the node-data JSON files.
	ResultsDir string

	// ConfigsDir contains the auspice export configuration and the lookup
	// tables referenced through the ${configs} placeholder.
	ConfigsDir string

	// AuspiceDir receives the exported visualization dataset.
	AuspiceDir string

	// Threads is passed to the alignment and tree stages as --nthreads.
	// Must be positive.
	Threads int

	// Sequences is the path to the raw FASTA sequence archive.
	// Required; must exist and be non-empty before any stage runs.
	Sequences string

	// Reference is the path to the reference sequence (FASTA or GenBank
	// format, consumed by the aligner). Required.
	Reference string

	// Metadata is the path to the per-strain metadata TSV. Required.
	Metadata string

	// LatLongs is the latitude/longitude lookup table for the export
	// stage. May contain the ${configs} placeholder.
	LatLongs string

	// Colors is the color lookup table for the export stage.
	// May contain the ${configs} placeholder.
	Colors string

	// Maintainers is the "maintained by" attribution shown in the auspice
	// footer. Optional; omitted from the export command when empty.
	Maintainers string

	// BuildURL is the build repository URL shown by auspice. Optional.
	BuildURL string

	// IncludeWhere is a metadata condition (e.g. "host=rat") whose
	// matching sequences bypass subsampling in the filter stage. Optional.
	IncludeWhere string

	// IncludeStrains is the path to a file listing strain names to
	// force-include in the filter stage regardless of subsampling.
	// Optional.
	IncludeStrains string

	// Title is the auspice build title. It also determines the exported
	// dataset filename via DatasetName.
	Title string

	// GroupBy lists the metadata columns used to group sequences for
	// subsampling in the filter stage.
	GroupBy []string

	// SequencesPerGroup caps how many sequences survive subsampling in
	// each group. Must be positive.
	SequencesPerGroup int

	// ClockRate and ClockStdDev parameterize the molecular clock used by
	// the refine stage. Both must be positive.
	ClockRate   float64
	ClockStdDev float64

	// TraitColumns lists the metadata columns whose ancestral states the
	// trait inference stage reconstructs.
	TraitColumns []string

	// ColorByMetadata lists the metadata columns exported as colorings in
	// the visualization dataset.
	ColorByMetadata []string

	// StageTimeout bounds each external tool invocation. Zero means no
	// per-stage timeout; a hung tool then blocks the run until the user
	// interrupts it.
	StageTimeout time.Duration

	// DryRun prints each stage's fully resolved command line without
	// executing anything. No directories are created and no run is
	// recorded in the history database.
	DryRun bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only informational messages and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the build report.
	// When set, the report is written to this file instead of stdout.
	// Parent directories are created automatically if they don't exist.
	ReportFile string

	// SaveToDB indicates whether to record the run in the history
	// database. Disabled by the --no-save flag and for dry runs.
	SaveToDB bool

	// DBDir is the directory path for storing the SQLite history
	// database. Defaults to the XDG data directory
	// (~/.local/share/strainkit on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
// Required input paths (Sequences, Reference, Metadata) start empty and must
// be set by the caller before Validate.
func NewConfig() *Config {
	return &Config{
		ResultsDir:        DefaultResultsDir,
		ConfigsDir:        DefaultConfigsDir,
		AuspiceDir:        DefaultAuspiceDir,
		Threads:           DefaultThreads,
		LatLongs:          DefaultLatLongs,
		Colors:            DefaultColors,
		Title:             DefaultTitle,
		GroupBy:           defaultGroupBy(),
		SequencesPerGroup: DefaultSequencesPerGroup,
		ClockRate:         DefaultClockRate,
		ClockStdDev:       DefaultClockStdDev,
		TraitColumns:      defaultTraitColumns(),
		ColorByMetadata:   defaultColorByMetadata(),
		SaveToDB:          true,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for strainkit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/strainkit
// On macOS: ~/Library/Application Support/strainkit
// On Windows: %LOCALAPPDATA%\strainkit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ResolvePaths substitutes the ${configs} placeholder in the lat/long and
// color table paths with the configured configs directory. It must be called
// after all flag and profile values are merged and before Validate.
func (c *Config) ResolvePaths() {
	c.LatLongs = strings.ReplaceAll(c.LatLongs, ConfigsPlaceholder, c.ConfigsDir)
	c.Colors = strings.ReplaceAll(c.Colors, ConfigsPlaceholder, c.ConfigsDir)
}

// DatasetName returns the auspice dataset name derived from the build title:
// lowercased, with every run of non-alphanumeric characters collapsed to a
// single hyphen. "Nextstrain Analysis" becomes "nextstrain-analysis".
// A title with no usable characters falls back to "analysis" so the export
// stage always has a filename.
func (c *Config) DatasetName() string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(c.Title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		return "analysis"
	}
	return name
}

// DatasetPath returns the path of the exported visualization dataset,
// e.g. "auspice/nextstrain-analysis.json".
func (c *Config) DatasetPath() string {
	return filepath.Join(c.AuspiceDir, c.DatasetName()+".json")
}

// AuspiceConfigPath returns the path of the auspice export configuration
// inside the configs directory.
func (c *Config) AuspiceConfigPath() string {
	return filepath.Join(c.ConfigsDir, "auspice_config.json")
}

// Validate checks if the configuration can drive a complete run.
// It returns the first error found rather than collecting all errors,
// because fixing one error often makes others irrelevant. This is called
// once after CLI parsing and profile merging, before any stage begins.
//
// The three required inputs are checked for existence and non-emptiness here
// so a doomed run fails before the first external tool starts rather than
// partway through the chain. Lookup tables and stage outputs are left to the
// tools that consume them.
func (c *Config) Validate() error {
	if c.Sequences == "" {
		return ErrNoSequences
	}
	if c.Reference == "" {
		return ErrNoReference
	}
	if c.Metadata == "" {
		return ErrNoMetadata
	}

	for _, path := range []string{c.Sequences, c.Reference, c.Metadata} {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%w: %s", ErrInputEmpty, path)
		}
	}

	// Threads feeds --nthreads on external tools; zero or negative values
	// would be rejected by them anyway, but failing here is clearer.
	if c.Threads <= 0 {
		return ErrInvalidThreads
	}
	if c.SequencesPerGroup <= 0 {
		return ErrInvalidSequencesPerGroup
	}
	if c.ClockRate <= 0 || c.ClockStdDev <= 0 {
		return ErrInvalidClock
	}
	if c.StageTimeout < 0 {
		return ErrInvalidStageTimeout
	}

	// JSONReport and MarkdownReport are mutually exclusive.
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
