package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and by the profile loader,
// and provide specific information about what is wrong with the
// configuration. They are package-level sentinels so callers can use
// errors.Is() for programmatic handling while still getting human-readable
// messages.
var (
	// ErrNoSequences is returned when no sequence archive is specified.
	ErrNoSequences = errors.New("no sequence archive specified: --sequences is required")

	// ErrNoReference is returned when no reference sequence is specified.
	ErrNoReference = errors.New("no reference sequence specified: --reference is required")

	// ErrNoMetadata is returned when no metadata table is specified.
	ErrNoMetadata = errors.New("no metadata table specified: --metadata is required")

	// ErrInputNotFound is returned when a required input file does not
	// exist. The offending path is attached via error wrapping.
	ErrInputNotFound = errors.New("required input file not found")

	// ErrInputEmpty is returned when a required input file exists but has
	// zero size. The offending path is attached via error wrapping.
	ErrInputEmpty = errors.New("required input file is empty")

	// ErrInvalidThreads is returned when the thread count is not positive.
	// The count is forwarded to the alignment and tree tools.
	ErrInvalidThreads = errors.New("invalid thread count: must be positive")

	// ErrInvalidSequencesPerGroup is returned when the subsampling cap is
	// not positive. A cap of zero would filter out every sequence.
	ErrInvalidSequencesPerGroup = errors.New("invalid sequences per group: must be positive")

	// ErrInvalidClock is returned when the clock rate or its standard
	// deviation is not positive. The refine stage cannot run a timetree
	// with a non-positive clock.
	ErrInvalidClock = errors.New("invalid molecular clock: rate and standard deviation must be positive")

	// ErrInvalidStageTimeout is returned when the per-stage timeout is
	// negative. Use 0 for no timeout.
	ErrInvalidStageTimeout = errors.New("invalid stage timeout: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a
	// time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrProfileNotFound is returned when an explicitly requested profile
	// file does not exist.
	ErrProfileNotFound = errors.New("profile file not found")
)
