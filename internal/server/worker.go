package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avollmer/transitfit/internal/config"
	"github.com/avollmer/transitfit/internal/fit"
	"github.com/avollmer/transitfit/internal/opt"
	"github.com/avollmer/transitfit/internal/store"
)

// runJob executes a fit job in the background. The solver's iteration
// trace is streamed to subscribed clients and to the job's trace file;
// the completed fit is persisted through the result store.
func runJob(ctx context.Context, jm *JobManager, results store.Store, cfg config.Config, jobID string) error {
	// Get the job
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Update state to running
	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "csv", job.Config.CSVPath, "period", job.Config.Period)

	// Load the light curve
	series, err := loadSeries(job.Config)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to load light curve: %w", err))
		return err
	}

	slog.Info("Loaded light curve", "job_id", jobID, "points", series.Len())

	// Check for cancellation before starting the expensive part
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// The trace file records one line per accepted solver iteration.
	trace, err := store.NewTraceWriter(cfg.DataDir, jobID)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to open trace: %w", err))
		return err
	}
	defer trace.Close()

	solver := &opt.LevMar{
		MaxFunEvals: cfg.MaxFunEvals,
		CostTol:     cfg.CostTol,
		Trace: func(iter int, cost float64) {
			jm.UpdateJob(jobID, func(j *Job) {
				j.Iterations = iter
				j.Cost = cost
			})
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     StateRunning,
				Iteration: iter,
				Cost:      cost,
				Timestamp: time.Now(),
			})
			if err := trace.Write(store.TraceEntry{Iteration: iter, Cost: cost, Timestamp: time.Now()}); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		},
	}

	fitter := &fit.Fitter{Solver: solver}
	if job.Config.Global && cfg.Global.Enabled {
		fitter.Global = opt.NewMayfly(cfg.Global.MaxIters, cfg.Global.PopSize, cfg.Global.Seed)
	}

	start := time.Now()
	result, err := fitter.Fit(fit.Request{
		Time:     series.Time,
		Flux:     series.Flux,
		Duration: job.Config.Duration,
		Period:   job.Config.Period,
		RefT0:    job.Config.RefT0,
		AGuess:   job.Config.AGuess,
		RpGuess:  job.Config.RpGuess,
		IncGuess: job.Config.IncGuess,
	})
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	elapsed := time.Since(start)

	// Check for cancellation after the fit
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	if err := trace.Flush(); err != nil {
		slog.Warn("Failed to flush trace", "job_id", jobID, "error", err)
	}

	// Persist the result before announcing completion, so a client
	// seeing the completed event can fetch it immediately.
	record := store.NewResultRecord(jobID, result, job.Config)
	if err := results.SaveResult(jobID, record); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to persist result: %w", err))
		return err
	}

	// Update job with results
	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.FunEvals = result.FunEvals
		j.RMS = result.RMS
		j.T0 = result.Params.T0
		j.RpRs = result.Params.RpRs
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"t0", result.Params.T0,
		"rp_rs", result.Params.RpRs,
		"rms", result.RMS,
		"fun_evals", result.FunEvals,
	)

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Iteration: job.Iterations,
		Cost:      job.Cost,
		RMS:       result.RMS,
		Timestamp: time.Now(),
	})

	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Timestamp: time.Now(),
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
