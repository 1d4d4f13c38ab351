package stats

import (
	"testing"
	"time"

	"github.com/relloyd/stageload/logger"
)

func TestStepWatcher(t *testing.T) {
	log := logger.NewLogger("stageload", "info", true)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sw := NewStepWatcher(log, "load")
	sw.now = func() time.Time { return clock }

	// Test 1, running stats.
	sw.StartWatching()
	sw.AddRows(100)
	sw.AddRows(50)
	clock = clock.Add(3 * time.Second)
	s := sw.RenderStats()
	if s.StatusText != "running" || s.TotalRowsProcessed != 150 || s.ElapsedTimeMillis != 3000 {
		t.Fatalf("Test 1, unexpected stats: %+v", s)
	}
	if s.RowsPerSecondAvg != 50 {
		t.Fatal("Test 1, expected 50 rows per sec; got ", s.RowsPerSecondAvg)
	}

	// Test 2, stopped stats do not move with the clock.
	sw.StopWatching()
	clock = clock.Add(time.Minute)
	s = sw.RenderStats()
	if s.StatusText != "complete" || s.ElapsedTimeMillis != 3000 {
		t.Fatalf("Test 2, unexpected stats: %+v", s)
	}

	// Test 3, restarting resets the row count.
	sw.StartWatching()
	if sw.RenderStats().TotalRowsProcessed != 0 {
		t.Fatal("Test 3, expected row count reset on restart")
	}
}

func TestPipelineStatsManager(t *testing.T) {
	log := logger.NewLogger("stageload", "info", true)
	m := NewPipelineStats(log)
	steps := []string{"read", "normalize", "coerce", "load"}
	for _, name := range steps {
		sw := m.AddStepWatcher(name)
		sw.StartWatching()
		sw.AddRows(1)
		sw.StopWatching()
	}
	if m.AddStepWatcher("read") != m.AddStepWatcher("read") {
		t.Fatal("expected the same watcher for a repeated step name")
	}
	got := m.GetStats()
	if len(got) != len(steps) {
		t.Fatalf("expected %v stats; got %v", len(steps), len(got))
	}
	for idx, s := range got {
		if s.StepName != steps[idx] {
			t.Fatalf("expected step %v at position %v; got %v", steps[idx], idx, s.StepName)
		}
	}
	m.LogStats()
}
