// Package exporter implements an in-memory metric model and the
// collection cycle that turns registered metrics into a Prometheus
// text exposition scrape response.
//
// The Exporter owns a set of Metrics and a default label set applied
// to every metric registered through it. Application code updates
// metric values concurrently while the HTTP layer renders scrapes;
// structural changes to the registry are rare and serialized.
package exporter

import (
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Exporter registers Metrics and renders them into one scrape body.
// The zero value is not usable, create instances with New. An Exporter
// is intended to live for the process lifetime but is an explicitly
// constructed value, not a global, so tests can run many independent
// ones.
type Exporter struct {
	// mtx guards the name map and registration order. Value updates
	// take the per-metric lock instead, so scrapes do not serialize
	// against unrelated metric writes.
	mtx      sync.RWMutex
	defaults *LabelSet
	byName   map[string]*Metric
	order    []string
}

// New returns an Exporter whose default labels are attached to every
// metric registered through it.
func New(defaults Labels) (*Exporter, error) {
	set, err := LabelSetFrom(defaults)
	if err != nil {
		return nil, errors.Wrap(err, "default labels")
	}
	return &Exporter{
		defaults: set,
		byName:   map[string]*Metric{},
		order:    []string{},
	}, nil
}

// Register creates a Metric from opts, merges the exporter's default
// labels under the metric's own (metric labels win on name collision)
// and stores it. Re-registration of an existing name is treated as a
// programming error and fails with DuplicateMetricError; callers that
// want to update a value use Get(name).Set(...) instead.
func (e *Exporter) Register(opts MetricOpts) (*Metric, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	labels := e.defaults.Copy()
	merged, err := LabelSetFrom(opts.Labels)
	if err != nil {
		return nil, errors.Wrapf(err, "metric %q", opts.Name)
	}
	for _, name := range merged.keys {
		if err := labels.Set(name, merged.vals[name]); err != nil {
			return nil, errors.Wrapf(err, "metric %q", opts.Name)
		}
	}

	m, err := newMetric(opts, labels)
	if err != nil {
		return nil, err
	}
	if existing, ok := e.byName[m.Name()]; ok {
		return nil, DuplicateMetricError{Name: m.Name(), Existing: existing}
	}
	e.byName[m.Name()] = m
	e.order = append(e.order, m.Name())
	return m, nil
}

// Defaults returns a copy of the exporter's default label set.
func (e *Exporter) Defaults() *LabelSet {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.defaults.Copy()
}

// Get returns the registered Metric for update.
func (e *Exporter) Get(name string) (*Metric, error) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	m, ok := e.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrMetricNotFound, "metric %q", name)
	}
	return m, nil
}

// Unregister removes a metric and reports whether one was removed.
func (e *Exporter) Unregister(name string) bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if _, ok := e.byName[name]; !ok {
		return false
	}
	delete(e.byName, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered metrics.
func (e *Exporter) Len() int {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return len(e.order)
}

// Render serializes all registered metrics, in registration order, into
// one scrape body with metric blocks separated by newlines. Metrics
// whose labels do not satisfy the filter are skipped.
//
// Even if an error occurs, Render returns as complete a body as it
// could produce: a metric that fails to render is skipped and the
// failure reported through the returned MultiError, since a scraping
// system polls continuously and one misbehaving metric must not
// register as exporter downtime.
func (e *Exporter) Render(f Filter) (string, error) {
	e.mtx.RLock()
	metrics := make([]*Metric, 0, len(e.order))
	for _, name := range e.order {
		metrics = append(metrics, e.byName[name])
	}
	e.mtx.RUnlock()

	errs := MultiError{}
	blocks := make([]string, 0, len(metrics))
	for _, m := range metrics {
		if !m.CheckFilter(f) {
			continue
		}
		block, err := m.Render()
		if err != nil {
			glog.Warningf("Skipping metric %q in scrape: %v", m.Name(), err)
			errs.Append(err)
			continue
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n"), errs.ErrorOrNil()
}
