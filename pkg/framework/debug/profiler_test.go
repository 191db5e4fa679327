package debug

import (
	"strings"
	"testing"
	"time"
)

func TestProfiler(t *testing.T) {
	t.Run("BasicProfiling", func(t *testing.T) {
		p := NewProfiler()

		stop := p.Start("test")
		time.Sleep(10 * time.Millisecond)
		elapsed := stop()

		m, exists := p.GetMeasurement("test")
		if !exists {
			t.Fatal("Measurement not found")
		}
		if m.Count() != 1 {
			t.Errorf("Expected count 1, got %d", m.Count())
		}
		if m.Last() < 10*time.Millisecond {
			t.Error("Timing seems too short")
		}
		if elapsed != m.Last() {
			t.Errorf("Returned %v, recorded %v", elapsed, m.Last())
		}
	})

	t.Run("MultipleRuns", func(t *testing.T) {
		p := NewProfiler()

		for i := 0; i < 5; i++ {
			p.Time("multi", func() { time.Sleep(time.Millisecond) })
		}

		m, _ := p.GetMeasurement("multi")
		if m.Count() != 5 {
			t.Errorf("Expected count 5, got %d", m.Count())
		}
		if m.Average() < time.Millisecond {
			t.Errorf("Average too short: %v", m.Average())
		}
		if m.minTime > m.maxTime {
			t.Error("Min greater than max")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		p := NewProfiler()
		p.SetEnabled(false)

		if d := p.Time("off", func() {}); d != 0 {
			t.Errorf("Disabled profiler returned %v", d)
		}
		if _, exists := p.GetMeasurement("off"); exists {
			t.Error("Disabled profiler should not record")
		}
		if p.IsEnabled() {
			t.Error("Profiler should report disabled")
		}
	})

	t.Run("Report", func(t *testing.T) {
		p := NewProfiler()
		if p.Report() != "No measurements recorded" {
			t.Error("Unexpected empty report")
		}

		p.Time("b-section", func() {})
		p.Time("a-section", func() {})

		report := p.Report()
		if strings.Index(report, "a-section") > strings.Index(report, "b-section") {
			t.Error("Report should be sorted by name")
		}

		p.Reset()
		if len(p.Names()) != 0 {
			t.Error("Reset should clear measurements")
		}
	})
}

func TestCPULoad(t *testing.T) {
	// 480 frames at 48 kHz is 10ms of audio
	if got := CPULoad(time.Millisecond, 480, 48000); got < 9.99 || got > 10.01 {
		t.Errorf("CPULoad = %f, want 10", got)
	}
	if CPULoad(time.Millisecond, 0, 48000) != 0 {
		t.Error("Zero frames should yield zero load")
	}
}
