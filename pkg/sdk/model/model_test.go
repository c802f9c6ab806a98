package model

import (
	"encoding/json"
	"testing"
)

func intp(v int) *int { return &v }

// Items drained in order [a, b, c] must produce index-aligned parallel arrays
// in the same order.
func TestNewBulkLogPayload_PreservesOrderAndAlignment(t *testing.T) {
	items := []LogItem{
		{Metrics: map[string]any{"loss": 0.9}, Step: intp(0), Timestamp: "2026-01-01T00:00:00Z"},
		{Metrics: map[string]any{"loss": 0.5}, Step: intp(1)},
		{Metrics: map[string]any{"loss": 0.2}, Timestamp: "2026-01-01T00:00:02Z"},
	}

	p := NewBulkLogPayload("demo", "run-1", items)

	if !p.Aligned() {
		t.Fatalf("payload arrays misaligned: %d/%d/%d",
			len(p.MetricsList), len(p.Steps), len(p.Timestamps))
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", p.Len())
	}
	if p.Project != "demo" || p.Run != "run-1" {
		t.Errorf("project/run = %q/%q", p.Project, p.Run)
	}

	for i, it := range items {
		if p.MetricsList[i]["loss"] != it.Metrics["loss"] {
			t.Errorf("metrics_list[%d] = %v, want %v", i, p.MetricsList[i], it.Metrics)
		}
	}
	wantSteps := []int{0, 1, StepUnset}
	for i, s := range wantSteps {
		if p.Steps[i] != s {
			t.Errorf("steps[%d] = %d, want %d", i, p.Steps[i], s)
		}
	}
	wantTS := []string{"2026-01-01T00:00:00Z", "", "2026-01-01T00:00:02Z"}
	for i, ts := range wantTS {
		if p.Timestamps[i] != ts {
			t.Errorf("timestamps[%d] = %q, want %q", i, p.Timestamps[i], ts)
		}
	}
}

func TestNewBulkLogPayload_NilMetricsNormalized(t *testing.T) {
	p := NewBulkLogPayload("demo", "run-1", []LogItem{{}})

	if p.MetricsList[0] == nil {
		t.Fatal("nil metrics should be normalized to an empty map")
	}

	// nil maps marshal to null, which the server rejects
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	list := decoded["metrics_list"].([]any)
	if list[0] == nil {
		t.Error("metrics_list[0] serialized as null")
	}
	if decoded["config"] != nil {
		t.Errorf("config should serialize as null, got %v", decoded["config"])
	}
}

func TestNewBulkLogPayload_Empty(t *testing.T) {
	p := NewBulkLogPayload("demo", "run-1", nil)
	if p.Len() != 0 || !p.Aligned() {
		t.Fatalf("empty payload: len=%d aligned=%v", p.Len(), p.Aligned())
	}
}
