package store

import (
	"fmt"
	"time"

	"github.com/avollmer/transitfit/internal/fit"
)

// JobConfig holds the input of one fit job. Either CSVPath or the inline
// Time/Flux arrays supply the light curve.
type JobConfig struct {
	CSVPath string    `json:"csvPath,omitempty"`
	Time    []float64 `json:"time,omitempty"`
	Flux    []float64 `json:"flux,omitempty"`

	Duration float64 `json:"duration"` // known transit duration, days
	Period   float64 `json:"period"`   // known orbital period, days
	RefT0    float64 `json:"refT0"`    // reference transit epoch, BJD

	AGuess   float64 `json:"aGuess"`
	RpGuess  float64 `json:"rpGuess"`
	IncGuess float64 `json:"incGuess"`

	// Global enables the mayfly pre-search for this job.
	Global bool `json:"global,omitempty"`
}

// ResultRecord is the persisted form of a completed fit. A fit has no
// resumable optimizer state (it completes in one shot), so the store
// keeps terminal results only.
type ResultRecord struct {
	// JobID is the unique identifier of the fit job.
	JobID string `json:"jobId"`

	// Result is the full fit output: parameters, uncertainties,
	// covariance, model, residuals, RMS.
	Result fit.Result `json:"result"`

	// Timestamp records when the fit completed.
	Timestamp time.Time `json:"timestamp"`

	// Config is the job input, kept so a result can be re-run or
	// audited.
	Config JobConfig `json:"config"`
}

// ResultInfo is the listing view of a record, without the bulky flux and
// covariance arrays.
type ResultInfo struct {
	JobID     string    `json:"jobId"`
	T0        float64   `json:"t0"`
	Period    float64   `json:"period"`
	RpRs      float64   `json:"rpRs"`
	RMS       float64   `json:"rms"`
	NPoints   int       `json:"nPoints"`
	Timestamp time.Time `json:"timestamp"`
}

// NewResultRecord assembles a persistable record from a completed fit.
func NewResultRecord(jobID string, res *fit.Result, config JobConfig) *ResultRecord {
	return &ResultRecord{
		JobID:     jobID,
		Result:    *res,
		Timestamp: time.Now(),
		Config:    config,
	}
}

// ToInfo converts a full record to its listing view.
func (r *ResultRecord) ToInfo() ResultInfo {
	return ResultInfo{
		JobID:     r.JobID,
		T0:        r.Result.Params.T0,
		Period:    r.Result.Params.Period,
		RpRs:      r.Result.Params.RpRs,
		RMS:       r.Result.RMS,
		NPoints:   r.Result.NPoints,
		Timestamp: r.Timestamp,
	}
}

// Validate checks that the record is complete enough to persist.
func (r *ResultRecord) Validate() error {
	if r.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if r.Result.NPoints < fit.MinPoints {
		return &ValidationError{Field: "Result.NPoints", Reason: fmt.Sprintf("must be at least %d", fit.MinPoints)}
	}
	if len(r.Result.Covariance) != fit.NumParams {
		return &ValidationError{Field: "Result.Covariance", Reason: fmt.Sprintf("must be %dx%d", fit.NumParams, fit.NumParams)}
	}
	if r.Result.RMS < 0 {
		return &ValidationError{Field: "Result.RMS", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Period <= 0 {
		return &ValidationError{Field: "Config.Period", Reason: "must be positive"}
	}
	if r.Config.Duration <= 0 {
		return &ValidationError{Field: "Config.Duration", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a result record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
