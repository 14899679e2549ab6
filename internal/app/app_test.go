package app

import (
	"os"
	"strings"
	"testing"
)

func TestDemoGeneratorFramesAreWellFormed(t *testing.T) {
	d := newDemoGenerator(192)

	seenNonZero := false
	for i := 0; i < 200; i++ {
		frame := d.Next(1.0 / 60.0)
		if len(frame) != 192 {
			t.Fatalf("frame length %d want 192", len(frame))
		}
		for _, v := range frame {
			if v > 0 {
				seenNonZero = true
			}
		}
	}
	if !seenNonZero {
		t.Fatalf("demo generator produced only silence")
	}
}

func TestDemoGeneratorLandsBeats(t *testing.T) {
	d := newDemoGenerator(100)

	// Over ~5 seconds at 60fps the periodic bass hit must saturate the low
	// bins at least once.
	sawHit := false
	for i := 0; i < 300; i++ {
		frame := d.Next(1.0 / 60.0)
		if frame[0] >= 250 {
			sawHit = true
		}
	}
	if !sawHit {
		t.Fatalf("no bass hit in 5 seconds of demo output")
	}
}

func TestNextColorModeCycles(t *testing.T) {
	start := "ember"
	seen := map[string]bool{start: true}
	mode := start
	for i := 0; i < 8; i++ {
		mode = nextColorMode(mode)
		seen[mode] = true
		if mode == start {
			break
		}
	}
	if len(seen) < 4 {
		t.Fatalf("cycle visited %d modes, want all 4", len(seen))
	}
}

func TestNextColorModeUnknownFallsBack(t *testing.T) {
	if mode := nextColorMode("not-a-mode"); mode == "" || mode == "not-a-mode" {
		t.Fatalf("unknown mode should fall back to a real one, got %q", mode)
	}
}

func TestStatusBarPadsAndTruncates(t *testing.T) {
	if got := statusBar("abc", 5); got != "abc  " {
		t.Fatalf("pad: %q", got)
	}
	if got := statusBar("abcdef", 4); got != "abcd" {
		t.Fatalf("truncate: %q", got)
	}
	if got := statusBar("x", 0); got != "x" {
		t.Fatalf("zero width: %q", got)
	}
}

func TestNilProfilerIsNoOp(t *testing.T) {
	var p *profiler
	p.beginFrame()
	p.markSection("analyze")
	p.endFrame()
	if err := p.Close(); err != nil {
		t.Fatalf("nil profiler close: %v", err)
	}
}

func TestProfilerWritesCSV(t *testing.T) {
	path := t.TempDir() + "/frames.csv"
	p := newProfiler(path, nil)
	if p == nil {
		t.Fatalf("profiler not created")
	}

	p.beginFrame()
	p.markSection("analyze")
	p.markSection("simulate")
	p.endFrame()
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	data := string(raw)
	if !strings.Contains(data, "timestamp") || !strings.Contains(data, "frame_total") {
		t.Fatalf("csv missing expected content:\n%s", data)
	}
	if !strings.Contains(data, "simulate") {
		t.Fatalf("csv missing section rows:\n%s", data)
	}
}
