package exporter

import (
	"testing"
	"time"
)

func TestProcStatsRegistersGauges(t *testing.T) {
	e := newTestExporter(t, nil)
	if _, err := NewProcStats(e, time.Second); err != nil {
		t.Fatal(err)
	}

	if expected, got := 5, e.Len(); expected != got {
		t.Fatalf("Expected %d gauge(s), got %d.", expected, got)
	}
	for _, name := range []string{
		"process_cpu_percent",
		"process_memory_percent",
		"process_resident_memory_bytes",
		"process_num_threads",
		"process_open_fds",
	} {
		m, err := e.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		if expected, got := Gauge, m.Type(); expected != got {
			t.Errorf("Expected %q to be a %q, got %q.", name, expected, got)
		}
	}
}

func TestProcStatsSample(t *testing.T) {
	e := newTestExporter(t, nil)
	p, err := NewProcStats(e, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.sample(); err != nil {
		t.Fatal(err)
	}
	if got := p.rss.Value(); got <= 0 {
		t.Errorf("Expected a positive resident set size, got %v.", got)
	}
	if got := p.threads.Value(); got <= 0 {
		t.Errorf("Expected a positive thread count, got %v.", got)
	}
}

func TestProcStatsStartStop(t *testing.T) {
	e := newTestExporter(t, nil)
	p, err := NewProcStats(e, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	p.Start()
	p.Start() // idempotent
	time.Sleep(50 * time.Millisecond)
	p.Stop()
	p.Stop() // idempotent

	if got := p.rss.Value(); got <= 0 {
		t.Errorf("Expected the sampler to have populated rss, got %v.", got)
	}
}

func TestProcStatsBadInterval(t *testing.T) {
	e := newTestExporter(t, nil)
	if _, err := NewProcStats(e, 0); err == nil {
		t.Error("Expected an error for a zero interval.")
	}
}

func TestProcStatsDoubleRegistration(t *testing.T) {
	e := newTestExporter(t, nil)
	if _, err := NewProcStats(e, time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := NewProcStats(e, time.Second); err == nil {
		t.Error("Expected duplicate gauge registration to fail.")
	}
}
