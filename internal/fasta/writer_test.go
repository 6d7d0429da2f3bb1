package fasta

import (
	"bytes"
	"strings"
	"testing"
)

// TestWriterWrite tests record emission and sequence wrapping.
func TestWriterWrite(t *testing.T) {
	t.Parallel()

	t.Run("wraps at the default width", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewWriter(&buf)

		seq := strings.Repeat("A", 61)
		if err := w.Write(Record{ID: "X", Seq: []byte(seq)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := ">X\n" + strings.Repeat("A", 60) + "\nA\n"
		if buf.String() != want {
			t.Errorf("got %q, expected %q", buf.String(), want)
		}
	})

	t.Run("includes the description in the header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewWriter(&buf)

		rec := Record{ID: "NC_009942.1", Description: "West Nile virus", Seq: []byte("ATGC")}
		if err := w.Write(rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := ">NC_009942.1 West Nile virus\nATGC\n"
		if buf.String() != want {
			t.Errorf("got %q, expected %q", buf.String(), want)
		}
	})

	t.Run("custom width", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewWriter(&buf, WithLineWidth(4))

		if err := w.Write(Record{ID: "X", Seq: []byte("ATGCATGCAT")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := ">X\nATGC\nATGC\nAT\n"
		if buf.String() != want {
			t.Errorf("got %q, expected %q", buf.String(), want)
		}
	})

	t.Run("zero width disables wrapping", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewWriter(&buf, WithLineWidth(0))

		seq := strings.Repeat("G", 120)
		if err := w.Write(Record{ID: "X", Seq: []byte(seq)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := ">X\n" + seq + "\n"
		if buf.String() != want {
			t.Errorf("got %q, expected %q", buf.String(), want)
		}
	})

	t.Run("empty sequence emits the header only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewWriter(&buf)

		if err := w.Write(Record{ID: "X"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != ">X\n" {
			t.Errorf("got %q, expected %q", buf.String(), ">X\n")
		}
	})
}

// TestWriterWriteAll tests sequential emission.
func TestWriterWriteAll(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)

	records := []Record{
		{ID: "A", Seq: []byte("AAAA")},
		{ID: "B", Seq: []byte("CCCC")},
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ">A\nAAAA\n>B\nCCCC\n"
	if buf.String() != want {
		t.Errorf("got %q, expected %q", buf.String(), want)
	}
}

// TestRoundTrip tests that parsed records re-serialize to equivalent output.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	input := ">A first record\nATGCATGC\n>B\nTTTT\n"
	records, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteAll(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != input {
		t.Errorf("round trip mismatch: got %q, expected %q", buf.String(), input)
	}
}
