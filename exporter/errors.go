package exporter

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds surfaced by the core. Identifier problems are programming
// errors and are reported at the call site instead of being silently
// corrected, so they never reach the scrape output.
var (
	ErrInvalidLabelName  = errors.New("invalid label name")
	ErrInvalidLabelValue = errors.New("invalid label value")
	ErrInvalidMetricName = errors.New("invalid metric name")
	ErrInvalidMetricType = errors.New("invalid metric type")
	ErrMetricNotFound    = errors.New("metric not found")
)

// DuplicateMetricError is returned by Register when a metric with the
// same name already exists. Registration fails in that case, but the
// error carries the previously registered Metric so the caller can
// detect what happened and switch over to the existing one.
type DuplicateMetricError struct {
	Name     string
	Existing *Metric
}

func (e DuplicateMetricError) Error() string {
	return fmt.Sprintf("duplicate registration of metric %q", e.Name)
}

// MultiError is a slice of errors implementing the error interface. It
// is used to report multiple failures from config loading and from
// rendering, where one bad entry must not abort the rest.
type MultiError []error

func (errs MultiError) Error() string {
	if len(errs) == 0 {
		return ""
	}
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%d error(s) occurred:", len(errs))
	for _, err := range errs {
		fmt.Fprintf(buf, "\n\t* %s", err)
	}
	return buf.String()
}

func (errs *MultiError) Append(err error) {
	if err != nil {
		*errs = append(*errs, err)
	}
}

// ErrorOrNil returns nil if no errors were collected, so callers can
// hand the result straight back as their own error value.
func (errs MultiError) ErrorOrNil() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
