package extract

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/strainkit/strainkit/internal/fasta"
	"github.com/strainkit/strainkit/internal/idlist"
)

// Options describes a single extraction.
type Options struct {
	// IDFile is the path of the identifier list, one sequence ID per line.
	IDFile string

	// Input is the path of the FASTA archive to filter.
	Input string

	// Output is the path the matching records are written to. An existing
	// file is overwritten.
	Output string
}

// Extractor filters FASTA archives against identifier lists.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-match progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs an extraction with default settings.
func Extract(ctx context.Context, opts Options) (int, error) {
	return New().Extract(ctx, opts)
}

// Extract streams opts.Input and writes every record whose ID appears in
// opts.IDFile to opts.Output. It returns the number of records written.
func (e *Extractor) Extract(ctx context.Context, opts Options) (int, error) {
	if err := validate(opts); err != nil {
		return 0, err
	}

	ids, err := idlist.LoadSet(opts.IDFile)
	if err != nil {
		return 0, err
	}
	e.logger.Debug("loaded id list", "path", opts.IDFile, "unique_ids", ids.Len())

	in, err := os.Open(opts.Input)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}

	kept, err := e.copyMatches(ctx, in, out, ids)
	if err != nil {
		out.Close()
		return kept, err
	}
	if err := out.Close(); err != nil {
		return kept, fmt.Errorf("close output: %w", err)
	}

	e.logger.Info("extraction complete",
		"input", opts.Input,
		"output", opts.Output,
		"matched", kept,
	)
	return kept, nil
}

// copyMatches streams records from in and writes the matching subset to out.
func (e *Extractor) copyMatches(ctx context.Context, in io.Reader, out io.Writer, ids idlist.Set) (int, error) {
	bw := bufio.NewWriter(out)
	reader := fasta.NewReader(in)
	writer := fasta.NewWriter(bw)

	kept := 0
	for {
		select {
		case <-ctx.Done():
			return kept, ctx.Err()
		default:
		}

		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return kept, fmt.Errorf("parse input: %w", err)
		}
		if !ids.Contains(rec.ID) {
			continue
		}

		e.logger.Info("matched sequence", "id", rec.ID)
		if err := writer.Write(*rec); err != nil {
			return kept, fmt.Errorf("write output: %w", err)
		}
		kept++
	}

	if err := bw.Flush(); err != nil {
		return kept, fmt.Errorf("write output: %w", err)
	}
	return kept, nil
}

// validate checks the extraction inputs in the order a user would fix them.
func validate(opts Options) error {
	info, err := os.Stat(opts.Input)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, opts.Input)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrInputEmpty, opts.Input)
	}
	if _, err := os.Stat(opts.IDFile); err != nil {
		return fmt.Errorf("%w: %s", ErrIDListNotFound, opts.IDFile)
	}
	return nil
}
