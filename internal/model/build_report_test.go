package model

import (
	"encoding/json"
	"testing"
	"time"
)

// TestNewBuildReport tests report construction.
func TestNewBuildReport(t *testing.T) {
	t.Parallel()

	t.Run("sets identity fields", func(t *testing.T) {
		t.Parallel()

		r := NewBuildReport("West Nile 2024", "auspice/west-nile-2024.json")
		if r.RunID == "" {
			t.Error("expected non-empty run ID")
		}
		if r.Title != "West Nile 2024" {
			t.Errorf("expected title to be set, got %q", r.Title)
		}
		if r.DatasetPath != "auspice/west-nile-2024.json" {
			t.Errorf("expected dataset path to be set, got %q", r.DatasetPath)
		}
		if r.StartedAt.IsZero() {
			t.Error("expected StartedAt to be set")
		}
		if r.Success {
			t.Error("expected Success to start false")
		}
	})

	t.Run("run IDs are unique", func(t *testing.T) {
		t.Parallel()

		a := NewBuildReport("a", "auspice/a.json")
		b := NewBuildReport("b", "auspice/b.json")
		if a.RunID == b.RunID {
			t.Errorf("expected distinct run IDs, both were %s", a.RunID)
		}
	})
}

// TestBuildReportAddStage tests stage accumulation.
func TestBuildReportAddStage(t *testing.T) {
	t.Parallel()

	r := NewBuildReport("t", "auspice/t.json")
	r.AddStage(StageResult{Name: "index", Command: "augur index"})
	r.AddStage(StageResult{Name: "filter", Command: "augur filter"})

	if len(r.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(r.Stages))
	}
	if r.Stages[0].Name != "index" || r.Stages[1].Name != "filter" {
		t.Errorf("stages out of order: %v", r.Stages)
	}
}

// TestBuildReportFinish tests outcome recording.
func TestBuildReportFinish(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		r := NewBuildReport("t", "auspice/t.json")
		r.Finish(true)

		if !r.Success {
			t.Error("expected Success true")
		}
		if r.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		r := NewBuildReport("t", "auspice/t.json")
		r.FailedStage = "align"
		r.ErrorMessage = "exit 2"
		r.Finish(false)

		if r.Success {
			t.Error("expected Success false")
		}
	})
}

// TestBuildReportElapsed tests wall-clock duration computation.
func TestBuildReportElapsed(t *testing.T) {
	t.Parallel()

	r := NewBuildReport("t", "auspice/t.json")
	r.StartedAt = time.Now().Add(-2 * time.Second)
	r.FinishedAt = r.StartedAt.Add(1500 * time.Millisecond)

	if got := r.Elapsed(); got != 1500*time.Millisecond {
		t.Errorf("expected elapsed 1.5s, got %v", got)
	}

	// In-progress report measures against now.
	inProgress := NewBuildReport("t", "auspice/t.json")
	inProgress.StartedAt = time.Now().Add(-time.Second)
	if got := inProgress.Elapsed(); got < time.Second {
		t.Errorf("expected at least 1s elapsed, got %v", got)
	}
}

// TestStageResultSucceeded tests the success predicate.
func TestStageResultSucceeded(t *testing.T) {
	t.Parallel()

	ok := StageResult{Name: "index"}
	if !ok.Succeeded() {
		t.Error("expected stage without error to have succeeded")
	}

	failed := StageResult{Name: "align", Err: "exit 2", ExitCode: 2}
	if failed.Succeeded() {
		t.Error("expected stage with error to have failed")
	}
}

// TestBuildReportJSONRoundTrip verifies the report serializes with stable
// field names, since both the database and the JSON report writer depend on
// this shape.
func TestBuildReportJSONRoundTrip(t *testing.T) {
	t.Parallel()

	r := NewBuildReport("West Nile", "auspice/west-nile.json")
	r.AddStage(StageResult{
		Name:        "index",
		Description: "Index sequence composition",
		Command:     "augur index --sequences data/sequences.fasta --output results/sequence_index.tsv",
		Outputs:     []string{"results/sequence_index.tsv"},
		StartedAt:   time.Now(),
		Duration:    3 * time.Second,
	})
	r.ArtifactsComplete = true
	r.Finish(true)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded BuildReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.RunID != r.RunID {
		t.Errorf("run ID mismatch: %s vs %s", decoded.RunID, r.RunID)
	}
	if !decoded.ArtifactsComplete {
		t.Error("expected artifacts_complete to survive round trip")
	}
	if len(decoded.Stages) != 1 || decoded.Stages[0].Name != "index" {
		t.Errorf("stages did not survive round trip: %+v", decoded.Stages)
	}
}
