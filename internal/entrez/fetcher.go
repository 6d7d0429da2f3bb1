package entrez

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultDelay is the pause between consecutive requests. It keeps a
// keyless client under the three-requests-per-second ceiling NCBI grants.
const DefaultDelay = 350 * time.Millisecond

// Failure records a single accession that could not be downloaded.
type Failure struct {
	// Accession is the accession that failed.
	Accession string

	// Err is the reason for the failure.
	Err error
}

// Summary aggregates the outcome of a batch download.
type Summary struct {
	// Requested is the number of accessions the batch was given.
	Requested int

	// Succeeded is the number of accessions written to disk.
	Succeeded int

	// Failed is the number of accessions that could not be downloaded.
	Failed int

	// Failures holds the failed accessions and their errors.
	Failures []Failure
}

// AllSucceeded reports whether every requested accession was downloaded.
func (s *Summary) AllSucceeded() bool {
	return s.Failed == 0
}

// Fetcher downloads batches of accessions, one FASTA file each.
type Fetcher struct {
	// client performs the individual EFetch requests.
	client *Client

	// concurrency is the maximum number of in-flight downloads.
	concurrency int

	// delay is the pause observed before every request after the first.
	delay time.Duration

	// logger is used for per-accession progress output.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithConcurrency sets the maximum number of concurrent downloads.
// The default of 1 downloads sequentially in list order.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithDelay sets the pause between requests.
func WithDelay(delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.delay = delay
	}
}

// WithLogger sets the logger for download progress.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher on top of client.
func NewFetcher(client *Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		concurrency: 1,
		delay:       DefaultDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll downloads every accession to outDir as {accession}.fasta.
//
// A failed accession is logged, recorded in the summary, and does not stop
// the rest of the batch. The error return is reserved for conditions that
// invalidate the whole batch: an output directory that cannot be created
// or a canceled context. The summary is valid in both cases.
func (f *Fetcher) FetchAll(ctx context.Context, accessions []string, outDir string) (*Summary, error) {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	summary := &Summary{Requested: len(accessions)}
	var mu sync.Mutex

	f.logger.Info("starting batch download",
		"accessions", len(accessions),
		"output_dir", outDir,
		"concurrency", f.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, accession := range accessions {
		g.Go(func() error {
			if i > 0 && f.delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(f.delay):
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			path := filepath.Join(outDir, accession+".fasta")
			if err := f.fetchOne(ctx, accession, path); err != nil {
				mu.Lock()
				summary.Failed++
				summary.Failures = append(summary.Failures, Failure{Accession: accession, Err: err})
				mu.Unlock()

				f.logger.Warn("download failed",
					"accession", accession,
					"error", err,
				)
				// Recorded in the summary; the batch continues.
				return nil
			}

			mu.Lock()
			summary.Succeeded++
			mu.Unlock()

			f.logger.Info("downloaded accession",
				"accession", accession,
				"path", path,
			)
			return nil
		})
	}

	err := g.Wait()

	f.logger.Info("batch download complete",
		"requested", summary.Requested,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, err
}

// fetchOne downloads a single accession and writes it to path.
func (f *Fetcher) fetchOne(ctx context.Context, accession, path string) error {
	data, err := f.client.Fetch(ctx, accession)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
