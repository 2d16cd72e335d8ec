package main

import (
	"testing"
	"time"

	"github.com/avollmer/transitfit/internal/store"
)

func makeInfos(ages ...time.Duration) []store.ResultInfo {
	now := time.Now()
	infos := make([]store.ResultInfo, len(ages))
	for i, age := range ages {
		infos[i] = store.ResultInfo{
			JobID:     string(rune('a' + i)),
			Timestamp: now.Add(-age),
		}
	}
	return infos
}

func TestSelectResultsForDeletion_OlderThan(t *testing.T) {
	infos := makeInfos(1*time.Hour, 48*time.Hour, 100*24*time.Hour)

	toDelete := selectResultsForDeletion(infos, 0, 30)
	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 result to delete, got %d", len(toDelete))
	}
	if toDelete[0].JobID != "c" {
		t.Errorf("Expected oldest result selected, got %s", toDelete[0].JobID)
	}
}

func TestSelectResultsForDeletion_KeepLast(t *testing.T) {
	infos := makeInfos(1*time.Hour, 2*time.Hour, 3*time.Hour, 4*time.Hour)

	toDelete := selectResultsForDeletion(infos, 2, 0)
	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 results to delete, got %d", len(toDelete))
	}
	// Oldest two must be selected
	for _, info := range toDelete {
		if info.JobID != "c" && info.JobID != "d" {
			t.Errorf("Unexpected result selected: %s", info.JobID)
		}
	}
}

func TestSelectResultsForDeletion_NoPolicy(t *testing.T) {
	infos := makeInfos(1*time.Hour, 2*time.Hour)

	if toDelete := selectResultsForDeletion(infos, 0, 0); len(toDelete) != 0 {
		t.Errorf("Expected no deletions without a policy, got %d", len(toDelete))
	}
}

func TestSelectResultsForDeletion_NoDuplicates(t *testing.T) {
	infos := makeInfos(1*time.Hour, 100*24*time.Hour)

	// The old result matches both the age cutoff and the keep-last
	// overflow; it must appear once.
	toDelete := selectResultsForDeletion(infos, 1, 30)
	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 result to delete, got %d", len(toDelete))
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
