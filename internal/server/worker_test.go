package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/avollmer/transitfit/internal/config"
	"github.com/avollmer/transitfit/internal/store"
)

func newWorkerFixture(t *testing.T) (*JobManager, store.Store, config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	results, err := store.NewFSStore(cfg.DataDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return NewJobManager(), results, cfg
}

func TestRunJob_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping full fit in short mode")
	}

	jm, results, cfg := newWorkerFixture(t)
	job := jm.CreateJob(syntheticJobConfig())

	if err := runJob(context.Background(), jm, results, cfg, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, _ := jm.GetJob(job.ID)
	if done.State != StateCompleted {
		t.Fatalf("State = %s, want completed (error: %s)", done.State, done.Error)
	}
	if done.RMS <= 0 {
		t.Errorf("RMS = %v, want positive", done.RMS)
	}
	if done.FunEvals <= 0 {
		t.Errorf("FunEvals = %d, want positive", done.FunEvals)
	}
	if done.EndTime == nil {
		t.Error("EndTime not set")
	}

	// Result must be persisted
	record, err := results.LoadResult(job.ID)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}
	if record.Result.RMS != done.RMS {
		t.Errorf("Persisted RMS %v != job RMS %v", record.Result.RMS, done.RMS)
	}

	// Trace must exist and show nonincreasing cost
	reader, err := store.NewTraceReader(cfg.DataDir, job.ID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Trace is empty")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Cost > entries[i-1].Cost {
			t.Errorf("Trace cost increased at entry %d: %v -> %v", i, entries[i-1].Cost, entries[i].Cost)
		}
	}
}

func TestRunJob_FromCSV(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping full fit in short mode")
	}

	jm, results, cfg := newWorkerFixture(t)

	inline := syntheticJobConfig()
	csvPath := filepath.Join(t.TempDir(), "lc.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintln(f, "time,flux")
	for i := range inline.Time {
		fmt.Fprintf(f, "%.10f,%.10f\n", inline.Time[i], inline.Flux[i])
	}
	f.Close()

	jobCfg := inline
	jobCfg.Time = nil
	jobCfg.Flux = nil
	jobCfg.CSVPath = csvPath

	job := jm.CreateJob(jobCfg)
	if err := runJob(context.Background(), jm, results, cfg, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, _ := jm.GetJob(job.ID)
	if done.State != StateCompleted {
		t.Fatalf("State = %s, want completed (error: %s)", done.State, done.Error)
	}
	if done.RpRs < 0.09 || done.RpRs > 0.11 {
		t.Errorf("Recovered Rp/Rs = %v, want near 0.1", done.RpRs)
	}
}

func TestRunJob_MissingCSV(t *testing.T) {
	jm, results, cfg := newWorkerFixture(t)

	job := jm.CreateJob(JobConfig{
		CSVPath:  "/nonexistent/lc.csv",
		Duration: 0.12,
		Period:   3.5,
		RefT0:    5,
		AGuess:   10,
		RpGuess:  0.1,
		IncGuess: 89,
	})

	if err := runJob(context.Background(), jm, results, cfg, job.ID); err == nil {
		t.Fatal("Expected error for missing CSV")
	}

	done, _ := jm.GetJob(job.ID)
	if done.State != StateFailed {
		t.Errorf("State = %s, want failed", done.State)
	}
	if done.Error == "" {
		t.Error("Error message not recorded")
	}
}

func TestRunJob_FitFailure(t *testing.T) {
	jm, results, cfg := newWorkerFixture(t)

	// Too few samples: the fit rejects the series before solving.
	job := jm.CreateJob(JobConfig{
		Time:     []float64{1, 2, 3, 4, 5},
		Flux:     []float64{1, 1, 1, 1, 1},
		Duration: 0.12,
		Period:   3.5,
		RefT0:    1,
		AGuess:   10,
		RpGuess:  0.1,
		IncGuess: 89,
	})

	if err := runJob(context.Background(), jm, results, cfg, job.ID); err == nil {
		t.Fatal("Expected error for degenerate series")
	}

	done, _ := jm.GetJob(job.ID)
	if done.State != StateFailed {
		t.Errorf("State = %s, want failed", done.State)
	}
}

func TestRunJob_UnknownJob(t *testing.T) {
	jm, results, cfg := newWorkerFixture(t)

	if err := runJob(context.Background(), jm, results, cfg, "nope"); err == nil {
		t.Fatal("Expected error for unknown job")
	}
}
