package store

import (
	"testing"
	"time"

	"github.com/avollmer/transitfit/internal/fit"
)

func TestResultRecordValidate(t *testing.T) {
	valid := testRecord("job-1")
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ResultRecord)
	}{
		{"empty job id", func(r *ResultRecord) { r.JobID = "" }},
		{"too few points", func(r *ResultRecord) { r.Result.NPoints = 5 }},
		{"bad covariance shape", func(r *ResultRecord) { r.Result.Covariance = r.Result.Covariance[:3] }},
		{"negative rms", func(r *ResultRecord) { r.Result.RMS = -1 }},
		{"zero timestamp", func(r *ResultRecord) { r.Timestamp = time.Time{} }},
		{"non-positive period", func(r *ResultRecord) { r.Config.Period = 0 }},
		{"non-positive duration", func(r *ResultRecord) { r.Config.Duration = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRecord("job-1")
			tt.mutate(r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestResultRecordToInfo(t *testing.T) {
	r := testRecord("job-42")
	info := r.ToInfo()

	if info.JobID != "job-42" {
		t.Errorf("JobID = %q", info.JobID)
	}
	if info.T0 != r.Result.Params.T0 || info.Period != r.Result.Params.Period || info.RpRs != r.Result.Params.RpRs {
		t.Errorf("info lost parameters: %+v", info)
	}
	if info.RMS != r.Result.RMS || info.NPoints != r.Result.NPoints {
		t.Errorf("info lost statistics: %+v", info)
	}
}

func TestNewResultRecord(t *testing.T) {
	res := &fit.Result{NPoints: 100, RMS: 0.001}
	record := NewResultRecord("job-7", res, JobConfig{Period: 3.5, Duration: 0.1})

	if record.JobID != "job-7" {
		t.Errorf("JobID = %q", record.JobID)
	}
	if record.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if record.Result.NPoints != 100 {
		t.Errorf("result not copied: %+v", record.Result)
	}
}
