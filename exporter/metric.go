package exporter

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// MetricType is the type tag emitted on a metric's # TYPE line. It
// carries no computational behavior, the value cell is a plain float64
// either way.
type MetricType string

const (
	Untyped   MetricType = "untyped"
	Gauge     MetricType = "gauge"
	Counter   MetricType = "counter"
	Histogram MetricType = "histogram"
	Summary   MetricType = "summary"
)

func (t MetricType) valid() bool {
	switch t {
	case Untyped, Gauge, Counter, Histogram, Summary:
		return true
	}
	return false
}

var metricNameRE = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// MetricOpts bundles the options for creating a Metric.
//
// It is mandatory to set Name to a non-empty string. All other fields
// are optional and can safely be left at their zero value, although it
// is strongly encouraged to set a Help string. A zero Type means
// Untyped.
type MetricOpts struct {
	Name   string     `yaml:"name"`
	Type   MetricType `yaml:"type"`
	Help   string     `yaml:"help"`
	Value  float64    `yaml:"value"`
	Labels Labels     `yaml:"labels"`
}

// Metric is a named, typed, optionally labeled sample value. Name,
// type, and help are immutable after construction; the value and the
// owned label set are mutable under the metric's lock, so updates and
// concurrent renders never observe torn state.
type Metric struct {
	name  string
	mtype MetricType
	help  string

	mtx    sync.RWMutex // guards value and labels against concurrent renders
	value  float64
	labels *LabelSet
}

// NewMetric constructs a Metric from opts. Spaces in the name are
// normalized to underscores before validation; names that still
// violate the exposition grammar are rejected. Labels given in opts are
// copied into a set owned exclusively by the metric.
func NewMetric(opts MetricOpts) (*Metric, error) {
	labels, err := LabelSetFrom(opts.Labels)
	if err != nil {
		return nil, errors.Wrapf(err, "metric %q", opts.Name)
	}
	return newMetric(opts, labels)
}

// newMetric builds a Metric around an already prepared label set. The
// set is taken over, not copied; callers must not retain it.
func newMetric(opts MetricOpts, labels *LabelSet) (*Metric, error) {
	name := strings.ReplaceAll(opts.Name, " ", "_")
	if !metricNameRE.MatchString(name) {
		return nil, errors.Wrapf(ErrInvalidMetricName, "metric %q", opts.Name)
	}
	mtype := opts.Type
	if mtype == "" {
		mtype = Untyped
	}
	if !mtype.valid() {
		return nil, errors.Wrapf(ErrInvalidMetricType, "metric %q has type %q", name, mtype)
	}
	return &Metric{
		name:   name,
		mtype:  mtype,
		help:   opts.Help,
		value:  opts.Value,
		labels: labels,
	}, nil
}

// Name returns the metric name after normalization.
func (m *Metric) Name() string { return m.name }

// Type returns the metric's type tag.
func (m *Metric) Type() MetricType { return m.mtype }

// Help returns the help text, empty if none was given.
func (m *Metric) Help() string { return m.help }

// Value returns the current sample value.
func (m *Metric) Value() float64 {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.value
}

// Set replaces the sample value.
func (m *Metric) Set(v float64) {
	m.mtx.Lock()
	m.value = v
	m.mtx.Unlock()
}

// Add adds delta to the sample value. Delta may be negative; overflow
// and precision follow float64 semantics.
func (m *Metric) Add(delta float64) {
	m.mtx.Lock()
	m.value += delta
	m.mtx.Unlock()
}

// Inc increments the sample value by 1.
func (m *Metric) Inc() {
	m.mtx.Lock()
	m.value++
	m.mtx.Unlock()
}

// SetLabel inserts or overwrites a label on the owned set.
func (m *Metric) SetLabel(name string, value interface{}) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.labels.Set(name, value)
}

// RemoveLabel deletes a label from the owned set if present.
func (m *Metric) RemoveLabel(name string) {
	m.mtx.Lock()
	m.labels.Remove(name)
	m.mtx.Unlock()
}

// Labels returns a copy of the owned label set.
func (m *Metric) Labels() *LabelSet {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.labels.Copy()
}

// CheckFilter reports whether the metric's labels satisfy the filter
// and the metric should therefore appear in a filtered scrape.
func (m *Metric) CheckFilter(f Filter) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.labels.Matches(f)
}

// Render produces the metric's full text block:
//
//	# HELP requests_total Total requests
//	# TYPE requests_total counter
//	requests_total{method="GET"} 5
//
// The HELP line is present only if help text was given, and the label
// block is omitted entirely when the set is empty. Render may be
// called concurrently with value updates.
func (m *Metric) Render() (string, error) {
	if m.name == "" {
		// Zero-value Metrics cannot describe themselves; reject
		// instead of emitting a malformed block.
		return "", errors.Wrap(ErrInvalidMetricName, "metric has no name")
	}

	m.mtx.RLock()
	value := m.value
	labelBlock := m.labels.Render()
	m.mtx.RUnlock()

	var b strings.Builder
	if m.help != "" {
		b.WriteString("# HELP ")
		b.WriteString(m.name)
		b.WriteByte(' ')
		b.WriteString(m.help)
		b.WriteByte('\n')
	}
	b.WriteString("# TYPE ")
	b.WriteString(m.name)
	b.WriteByte(' ')
	b.WriteString(string(m.mtype))
	b.WriteByte('\n')
	b.WriteString(m.name)
	b.WriteString(labelBlock)
	b.WriteByte(' ')
	b.WriteString(formatValue(value))
	return b.String(), nil
}
