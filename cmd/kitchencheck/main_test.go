package main

import (
	"testing"
	"time"
)

func TestExportFilter(t *testing.T) {
	filter, err := exportFilter("2026-10-01", "2026-10-31", " task-1 ", true, time.UTC)
	if err != nil {
		t.Fatalf("export filter: %v", err)
	}
	if !filter.Start.Equal(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", filter.Start)
	}
	if !filter.End.Equal(time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected end to include the last day, got %v", filter.End)
	}
	if filter.TaskID != "task-1" || !filter.FlaggedOnly {
		t.Fatalf("unexpected filter %+v", filter)
	}

	tests := []struct {
		name       string
		start, end string
	}{
		{name: "bad start", start: "01/10/2026"},
		{name: "bad end", end: "tomorrow"},
		{name: "reversed", start: "2026-10-02", end: "2026-10-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := exportFilter(tt.start, tt.end, "", false, time.UTC); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	filter, err = exportFilter("2026-10-14", "2026-10-14", "", false, time.UTC)
	if err != nil {
		t.Fatalf("single day: %v", err)
	}
	if filter.End.Sub(*filter.Start) != 24*time.Hour {
		t.Fatalf("expected a one day window")
	}
}

func TestResolveConfigPath(t *testing.T) {
	path, err := resolveConfigPath("/tmp/kc.json")
	if err != nil || path != "/tmp/kc.json" {
		t.Fatalf("expected flag value, got %q %v", path, err)
	}
}
