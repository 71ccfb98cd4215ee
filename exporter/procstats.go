package exporter

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcStats samples the exporter's own process on a ticker and feeds
// the readings into a set of gauges, so every scrape carries the
// exporter's resource usage alongside the application metrics.
//
// Start and Stop are idempotent; sampling errors are logged and the
// next tick tries again.
type ProcStats struct {
	proc     *process.Process
	interval time.Duration

	cpu     *Metric
	mem     *Metric
	rss     *Metric
	threads *Metric
	fds     *Metric

	mtx    sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// NewProcStats registers the process gauges on exp and returns a
// sampler that refreshes them every interval once started.
func NewProcStats(exp *Exporter, interval time.Duration) (*ProcStats, error) {
	if interval <= 0 {
		return nil, errors.Errorf("procstats interval must be positive, got %v", interval)
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errors.Wrap(err, "open own process")
	}

	p := &ProcStats{
		proc:     proc,
		interval: interval,
		closed:   true,
	}
	for _, g := range []struct {
		dst  **Metric
		name string
		help string
	}{
		{&p.cpu, "process_cpu_percent", "CPU usage of the exporter process."},
		{&p.mem, "process_memory_percent", "Memory usage of the exporter process."},
		{&p.rss, "process_resident_memory_bytes", "Resident set size of the exporter process."},
		{&p.threads, "process_num_threads", "Thread count of the exporter process."},
		{&p.fds, "process_open_fds", "Open file descriptors of the exporter process."},
	} {
		m, err := exp.Register(MetricOpts{Name: g.name, Type: Gauge, Help: g.help})
		if err != nil {
			return nil, errors.Wrapf(err, "register %q", g.name)
		}
		*g.dst = m
	}
	return p, nil
}

// Start launches the sampling goroutine. It returns immediately if the
// sampler is already running.
func (p *ProcStats) Start() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if !p.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx)
	p.closed = false
}

// Stop cancels the sampling goroutine. The gauges keep their last
// sampled values.
func (p *ProcStats) Stop() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return
	}
	p.cancel()
	p.closed = true
}

func (p *ProcStats) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := p.sample(); err != nil {
				glog.Error(err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// sample reads the process stats once. Each gauge is updated
// independently so one unavailable reading does not stall the others.
func (p *ProcStats) sample() error {
	errs := MultiError{}

	if cpu, err := p.proc.CPUPercent(); err != nil {
		errs.Append(errors.Wrap(err, "cpu percent"))
	} else {
		p.cpu.Set(cpu)
	}
	if mem, err := p.proc.MemoryPercent(); err != nil {
		errs.Append(errors.Wrap(err, "memory percent"))
	} else {
		p.mem.Set(float64(mem))
	}
	if mi, err := p.proc.MemoryInfo(); err != nil {
		errs.Append(errors.Wrap(err, "memory info"))
	} else {
		p.rss.Set(float64(mi.RSS))
	}
	if nt, err := p.proc.NumThreads(); err != nil {
		errs.Append(errors.Wrap(err, "num threads"))
	} else {
		p.threads.Set(float64(nt))
	}
	if fds, err := p.proc.NumFDs(); err != nil {
		errs.Append(errors.Wrap(err, "num fds"))
	} else {
		p.fds.Set(float64(fds))
	}
	return errs.ErrorOrNil()
}
