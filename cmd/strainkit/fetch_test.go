package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strainkit/strainkit/internal/entrez"
)

// TestNewFetchCmd tests the fetch command creation.
func TestNewFetchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewFetchCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "fetch" {
			t.Errorf("expected use 'fetch', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has accessions flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("accessions")
		if flag == nil {
			t.Fatal("expected accessions flag")
		}
		if flag.Shorthand != "a" {
			t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has politeness flags with defaults", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			defValue string
		}{
			{"email", ""},
			{"api-key", ""},
			{"delay", "350ms"},
			{"concurrency", "1"},
			{"timeout", "30s"},
		}
		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})
}

// TestRunFetchCmdValidation tests the fetch command's input validation.
func TestRunFetchCmdValidation(t *testing.T) {
	// Note: Not using t.Parallel() because executing commands swaps the
	// default logger

	t.Run("requires accession list", func(t *testing.T) {
		cmd := NewFetchCmd()
		cmd.SetArgs([]string{"--output", t.TempDir()})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error without --accessions")
		}
		if !strings.Contains(err.Error(), "--accessions is required") {
			t.Errorf("expected accessions error, got %v", err)
		}
	})

	t.Run("requires output folder", func(t *testing.T) {
		cmd := NewFetchCmd()
		cmd.SetArgs([]string{"--accessions", "acc.txt"})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error without --output")
		}
		if !strings.Contains(err.Error(), "--output is required") {
			t.Errorf("expected output error, got %v", err)
		}
	})

	t.Run("fails for missing accession file", func(t *testing.T) {
		tmpDir := t.TempDir()

		cmd := NewFetchCmd()
		cmd.SetArgs([]string{
			"--accessions", filepath.Join(tmpDir, "missing.txt"),
			"--output", tmpDir,
		})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing accession file")
		}
		if !strings.Contains(err.Error(), "failed to read accession list") {
			t.Errorf("expected read error, got %v", err)
		}
	})

	t.Run("fails for empty accession file", func(t *testing.T) {
		tmpDir := t.TempDir()
		accFile := writeTestInput(t, tmpDir, "acc.txt", "\n\n")

		cmd := NewFetchCmd()
		cmd.SetArgs([]string{"--accessions", accFile, "--output", tmpDir})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error for empty accession file")
		}
		if !strings.Contains(err.Error(), "accession list is empty") {
			t.Errorf("expected empty list error, got %v", err)
		}
	})
}

// TestBuildFetcher tests fetcher assembly from flags.
func TestBuildFetcher(t *testing.T) {
	t.Run("builds fetcher with defaults", func(t *testing.T) {
		cmd := NewFetchCmd()
		logger := setupLogger(false)

		fetcher, err := buildFetcher(cmd, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fetcher == nil {
			t.Fatal("expected non-nil fetcher")
		}
	})

	t.Run("reads API key from environment", func(t *testing.T) {
		t.Setenv("NCBI_API_KEY", "from-environment")

		cmd := NewFetchCmd()
		fetcher, err := buildFetcher(cmd, setupLogger(false))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fetcher == nil {
			t.Fatal("expected non-nil fetcher")
		}
	})

	t.Run("accepts custom politeness settings", func(t *testing.T) {
		cmd := NewFetchCmd()
		_ = cmd.Flags().Set("email", "user@example.org")
		_ = cmd.Flags().Set("api-key", "key123")
		_ = cmd.Flags().Set("delay", "1s")
		_ = cmd.Flags().Set("concurrency", "4")
		_ = cmd.Flags().Set("timeout", "5s")

		fetcher, err := buildFetcher(cmd, setupLogger(false))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fetcher == nil {
			t.Fatal("expected non-nil fetcher")
		}
	})
}

// TestPrintFetchSummary tests the batch outcome rendering.
func TestPrintFetchSummary(t *testing.T) {
	// Note: Not using t.Parallel() because these tests capture os.Stdout

	t.Run("reports full success", func(t *testing.T) {
		summary := &entrez.Summary{Requested: 3, Succeeded: 3}

		output := captureOutput(t, func() {
			printFetchSummary(summary, "genomes")
		})

		if !strings.Contains(output, "All 3 sequences downloaded to genomes") {
			t.Errorf("expected success line, got %q", output)
		}
	})

	t.Run("lists failed accessions", func(t *testing.T) {
		summary := &entrez.Summary{
			Requested: 3,
			Succeeded: 2,
			Failed:    1,
			Failures: []entrez.Failure{
				{Accession: "MH157092.1", Err: errors.New("unexpected status 404")},
			},
		}

		output := captureOutput(t, func() {
			printFetchSummary(summary, "genomes")
		})

		if !strings.Contains(output, "Downloaded 2 of 3 sequences") {
			t.Errorf("expected partial success line, got %q", output)
		}
		if !strings.Contains(output, "1 download(s) failed") {
			t.Errorf("expected failure count, got %q", output)
		}
		if !strings.Contains(output, "MH157092.1") {
			t.Errorf("expected failed accession listed, got %q", output)
		}
		if strings.Contains(output, "All 3 sequences downloaded") {
			t.Errorf("partial failure must not report full success, got %q", output)
		}
	})
}
