package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTraceWriterWriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-123"

	writer, err := NewTraceWriter(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{
		{Iteration: 1, Cost: 1.0, Timestamp: time.Now()},
		{Iteration: 2, Cost: 0.8, Timestamp: time.Now()},
		{Iteration: 3, Cost: 0.6, Timestamp: time.Now()},
		{Iteration: 4, Cost: 0.4, Timestamp: time.Now()},
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	tracePath := filepath.Join(tmpDir, "jobs", jobID, "trace.jsonl")
	if _, err := os.Stat(tracePath); os.IsNotExist(err) {
		t.Fatalf("Trace file not created: %s", tracePath)
	}

	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	readEntries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(readEntries) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(readEntries))
	}
	for i, entry := range readEntries {
		if entry.Iteration != entries[i].Iteration {
			t.Errorf("Entry %d: iteration %d, want %d", i, entry.Iteration, entries[i].Iteration)
		}
		if entry.Cost != entries[i].Cost {
			t.Errorf("Entry %d: cost %v, want %v", i, entry.Cost, entries[i].Cost)
		}
	}
}

func TestTraceReaderMissing(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "no-such-job")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTraceWriterTruncates(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "job-a"

	w1, err := NewTraceWriter(tmpDir, jobID)
	if err != nil {
		t.Fatal(err)
	}
	w1.Write(TraceEntry{Iteration: 1, Cost: 9, Timestamp: time.Now()})
	w1.Close()

	w2, err := NewTraceWriter(tmpDir, jobID)
	if err != nil {
		t.Fatal(err)
	}
	w2.Write(TraceEntry{Iteration: 1, Cost: 2, Timestamp: time.Now()})
	w2.Close()

	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Cost != 2 {
		t.Errorf("expected single fresh entry with cost 2, got %+v", entries)
	}
}
