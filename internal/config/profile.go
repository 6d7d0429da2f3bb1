package config

import (
	"fmt"
	"time"
)

// Profile holds per-project configuration loaded from a .strainkit YAML
// file. Every field is optional; zero values mean "keep the current
// setting". This lets a project pin its input paths and analysis parameters
// once instead of repeating them on every invocation, while CLI flags still
// override anything in the file.
type Profile struct {
	// Results overrides the intermediate results directory.
	Results string `yaml:"results,omitempty"`

	// Configs overrides the configs directory.
	Configs string `yaml:"configs,omitempty"`

	// Auspice overrides the visualization output directory.
	Auspice string `yaml:"auspice,omitempty"`

	// Threads overrides the thread count passed to external tools.
	Threads int `yaml:"threads,omitempty"`

	// Sequences, Reference, and Metadata pin the project's input files.
	Sequences string `yaml:"sequences,omitempty"`
	Reference string `yaml:"reference,omitempty"`
	Metadata  string `yaml:"metadata,omitempty"`

	// LatLongs and Colors override the export lookup tables.
	// Both may use the ${configs} placeholder.
	LatLongs string `yaml:"latLongs,omitempty"`
	Colors   string `yaml:"colors,omitempty"`

	// Maintainers and BuildURL set the auspice attribution fields.
	Maintainers string `yaml:"maintainers,omitempty"`
	BuildURL    string `yaml:"buildUrl,omitempty"`

	// IncludeWhere and IncludeStrains control forced inclusion during
	// subsampling.
	IncludeWhere   string `yaml:"includeWhere,omitempty"`
	IncludeStrains string `yaml:"includeStrains,omitempty"`

	// Title sets the auspice build title.
	Title string `yaml:"title,omitempty"`

	// GroupBy overrides the subsampling group columns.
	GroupBy []string `yaml:"groupBy,omitempty"`

	// SequencesPerGroup overrides the subsampling cap.
	SequencesPerGroup int `yaml:"sequencesPerGroup,omitempty"`

	// ClockRate and ClockStdDev override the molecular clock parameters.
	ClockRate   float64 `yaml:"clockRate,omitempty"`
	ClockStdDev float64 `yaml:"clockStdDev,omitempty"`

	// TraitColumns overrides the trait inference columns.
	TraitColumns []string `yaml:"traitColumns,omitempty"`

	// ColorByMetadata overrides the exported coloring columns.
	ColorByMetadata []string `yaml:"colorByMetadata,omitempty"`

	// StageTimeout bounds each external tool invocation, in Go duration
	// syntax (e.g. "30m", "1h"). Parsed during Apply.
	StageTimeout string `yaml:"stageTimeout,omitempty"`
}

// Apply overlays the profile's non-zero fields onto cfg. Fields the profile
// leaves unset keep their current value, so the layering is
// flag > profile > default when the caller applies the profile before
// explicitly set flags.
func (p *Profile) Apply(cfg *Config) error {
	if p.Results != "" {
		cfg.ResultsDir = p.Results
	}
	if p.Configs != "" {
		cfg.ConfigsDir = p.Configs
	}
	if p.Auspice != "" {
		cfg.AuspiceDir = p.Auspice
	}
	if p.Threads != 0 {
		cfg.Threads = p.Threads
	}
	if p.Sequences != "" {
		cfg.Sequences = p.Sequences
	}
	if p.Reference != "" {
		cfg.Reference = p.Reference
	}
	if p.Metadata != "" {
		cfg.Metadata = p.Metadata
	}
	if p.LatLongs != "" {
		cfg.LatLongs = p.LatLongs
	}
	if p.Colors != "" {
		cfg.Colors = p.Colors
	}
	if p.Maintainers != "" {
		cfg.Maintainers = p.Maintainers
	}
	if p.BuildURL != "" {
		cfg.BuildURL = p.BuildURL
	}
	if p.IncludeWhere != "" {
		cfg.IncludeWhere = p.IncludeWhere
	}
	if p.IncludeStrains != "" {
		cfg.IncludeStrains = p.IncludeStrains
	}
	if p.Title != "" {
		cfg.Title = p.Title
	}
	if len(p.GroupBy) > 0 {
		cfg.GroupBy = p.GroupBy
	}
	if p.SequencesPerGroup != 0 {
		cfg.SequencesPerGroup = p.SequencesPerGroup
	}
	if p.ClockRate != 0 {
		cfg.ClockRate = p.ClockRate
	}
	if p.ClockStdDev != 0 {
		cfg.ClockStdDev = p.ClockStdDev
	}
	if len(p.TraitColumns) > 0 {
		cfg.TraitColumns = p.TraitColumns
	}
	if len(p.ColorByMetadata) > 0 {
		cfg.ColorByMetadata = p.ColorByMetadata
	}
	if p.StageTimeout != "" {
		d, err := time.ParseDuration(p.StageTimeout)
		if err != nil {
			return fmt.Errorf("parse stageTimeout %q: %w", p.StageTimeout, err)
		}
		cfg.StageTimeout = d
	}
	return nil
}
