package exporter

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Labels represents a plain collection of label name -> value mappings.
// It is the convenience type used to hand label pairs to constructors,
// e.g.:
//
//	exp.Register(MetricOpts{Name: "requests_total", Labels: Labels{"method": "GET"}})
//
// Because map iteration order is undefined, a Labels map is always
// inserted into a LabelSet in sorted key order so that rendered output
// stays deterministic.
type Labels map[string]string

var labelNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// labelEscaper escapes a label value for the exposition format, where
// values are enclosed in double quotes on the value line.
var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// LabelSet is an insertion-ordered mapping from label name to string
// value. Every Metric exclusively owns one LabelSet; an Exporter owns
// another holding its default labels. A LabelSet is not safe for
// concurrent use, callers that share one must serialize access (Metric
// does so under its own lock).
type LabelSet struct {
	keys []string
	vals map[string]string
}

// NewLabelSet returns an empty LabelSet.
func NewLabelSet() *LabelSet {
	return &LabelSet{
		keys: []string{},
		vals: map[string]string{},
	}
}

// LabelSetFrom builds a LabelSet from a plain Labels map, inserting
// keys in sorted order. It returns an error if any name or value is
// invalid.
func LabelSetFrom(labels Labels) (*LabelSet, error) {
	s := NewLabelSet()
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.Set(name, labels[name]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Set inserts or overwrites a label. The value may be any scalar
// (bool, integer, float or string) and is stored in its string form.
func (s *LabelSet) Set(name string, value interface{}) error {
	if !labelNameRE.MatchString(name) {
		return errors.Wrapf(ErrInvalidLabelName, "label %q", name)
	}
	v, err := labelValue(value)
	if err != nil {
		return errors.Wrapf(err, "label %q", name)
	}
	if v == "" {
		return errors.Wrapf(ErrInvalidLabelValue, "label %q has empty value", name)
	}
	if _, ok := s.vals[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.vals[name] = v
	return nil
}

// Remove deletes a label if present and is a no-op otherwise.
func (s *LabelSet) Remove(name string) {
	if _, ok := s.vals[name]; !ok {
		return
	}
	delete(s.vals, name)
	for i, k := range s.keys {
		if k == name {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Get returns the value stored under name.
func (s *LabelSet) Get(name string) (string, bool) {
	v, ok := s.vals[name]
	return v, ok
}

// Len returns the number of labels in the set.
func (s *LabelSet) Len() int {
	return len(s.keys)
}

// Render produces the canonical label block, e.g.
//
//	{method="GET",status="200"}
//
// in insertion order, with values escaped for backslashes, quotes and
// newlines. An empty set renders as the empty string so callers can
// omit the whole block.
func (s *LabelSet) Render() string {
	if len(s.keys) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(s.keys))
	for _, name := range s.keys {
		pairs = append(pairs, name+`="`+labelEscaper.Replace(s.vals[name])+`"`)
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// Matches reports whether the set satisfies the filter: every filter
// key must be present with a value among the filter's accepted values.
// Labels the filter does not name impose no constraint, so an empty
// filter matches any set.
func (s *LabelSet) Matches(f Filter) bool {
	for name, accepted := range f {
		v, ok := s.vals[name]
		if !ok {
			return false
		}
		found := false
		for _, a := range accepted {
			if v == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Copy returns an independent LabelSet with identical entries. The
// copy shares no mutable state with the original.
func (s *LabelSet) Copy() *LabelSet {
	c := &LabelSet{
		keys: make([]string, len(s.keys)),
		vals: make(map[string]string, len(s.vals)),
	}
	copy(c.keys, s.keys)
	for k, v := range s.vals {
		c.vals[k] = v
	}
	return c
}

// labelValue converts a scalar into its label-value string form. The
// conversion table is explicit: anything outside it is rejected rather
// than falling back to reflection-based stringification.
func labelValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatValue(float64(v)), nil
	case float64:
		return formatValue(v), nil
	default:
		return "", errors.Wrapf(ErrInvalidLabelValue, "unsupported value type %T", value)
	}
}
