package app

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
)

// sectionRecord is one timed section of one frame.
type sectionRecord struct {
	Timestamp string  `csv:"timestamp"`
	Section   string  `csv:"section"`
	DeltaMs   float64 `csv:"delta_ms"`
}

const profilerFlushEvery = 256

// profiler accumulates per-frame section timings and flushes them to a CSV
// file in batches. A nil profiler is a no-op so call sites stay unguarded.
type profiler struct {
	mu      sync.Mutex
	file    *os.File
	records []sectionRecord
	wrote   bool
	start   time.Time
	last    time.Time
}

func newProfiler(path string, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("profiler disabled: %v", err)
		}
		return nil
	}
	return &profiler{
		file:    f,
		records: make([]sectionRecord, 0, profilerFlushEvery),
	}
}

func (p *profiler) beginFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	p.start = now
	p.last = now
}

func (p *profiler) markSection(name string) {
	if p == nil {
		return
	}
	now := time.Now()
	p.record(name, now.Sub(p.last).Seconds()*1000)
	p.last = now
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	p.record("frame_total", time.Since(p.start).Seconds()*1000)
}

func (p *profiler) record(section string, deltaMs float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, sectionRecord{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Section:   section,
		DeltaMs:   deltaMs,
	})
	if len(p.records) >= profilerFlushEvery {
		p.flushLocked()
	}
}

func (p *profiler) flushLocked() {
	if p.file == nil || len(p.records) == 0 {
		return
	}
	var err error
	if p.wrote {
		err = gocsv.MarshalWithoutHeaders(&p.records, p.file)
	} else {
		err = gocsv.Marshal(&p.records, p.file)
		p.wrote = true
	}
	if err == nil {
		p.records = p.records[:0]
	}
}

func (p *profiler) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	p.flushLocked()
	p.mu.Unlock()
	return p.file.Close()
}
