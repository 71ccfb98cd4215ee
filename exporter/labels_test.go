package exporter

import (
	"testing"

	"github.com/pkg/errors"
)

func TestLabelSetRender(t *testing.T) {
	s := NewLabelSet()
	if err := s.Set("method", "GET"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("status", 200); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("cached", true); err != nil {
		t.Fatal(err)
	}

	expected := `{method="GET",status="200",cached="true"}`
	if got := s.Render(); expected != got {
		t.Errorf("Expected %q, got %q.", expected, got)
	}
	// Repeated calls must be identical given no mutation.
	if first, second := s.Render(), s.Render(); first != second {
		t.Errorf("Render not deterministic: %q then %q.", first, second)
	}

	if err := s.Set("status", 404); err != nil {
		t.Fatal(err)
	}
	expected = `{method="GET",status="404",cached="true"}`
	if got := s.Render(); expected != got {
		t.Errorf("Overwrite must keep insertion order, expected %q, got %q.", expected, got)
	}
}

func TestLabelSetRenderEmpty(t *testing.T) {
	if expected, got := "", NewLabelSet().Render(); expected != got {
		t.Errorf("Expected %q, got %q.", expected, got)
	}
}

func TestLabelSetEscaping(t *testing.T) {
	s := NewLabelSet()
	if err := s.Set("path", `a"b\c`+"\n"); err != nil {
		t.Fatal(err)
	}
	expected := `{path="a\"b\\c\n"}`
	if got := s.Render(); expected != got {
		t.Errorf("Expected %q, got %q.", expected, got)
	}
}

func TestLabelSetCoercion(t *testing.T) {
	cases := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"string", "v", "v"},
		{"bool_true", true, "true"},
		{"bool_false", false, "false"},
		{"int", 42, "42"},
		{"int64_negative", int64(-7), "-7"},
		{"uint", uint(9), "9"},
		{"float_integral", 3.0, "3"},
		{"float_fractional", 1.5, "1.5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewLabelSet()
			if err := s.Set("l", c.value); err != nil {
				t.Fatal(err)
			}
			got, _ := s.Get("l")
			if c.expected != got {
				t.Errorf("Expected %q, got %q.", c.expected, got)
			}
		})
	}

	s := NewLabelSet()
	if err := s.Set("l", struct{}{}); !errors.Is(err, ErrInvalidLabelValue) {
		t.Errorf("Expected ErrInvalidLabelValue for a struct value, got %v.", err)
	}
}

func TestLabelSetInvalidNames(t *testing.T) {
	s := NewLabelSet()
	for _, name := range []string{"", "1a", "a-b", "a b"} {
		if err := s.Set(name, "v"); !errors.Is(err, ErrInvalidLabelName) {
			t.Errorf("Expected ErrInvalidLabelName for %q, got %v.", name, err)
		}
	}
	if err := s.Set("_a", "v"); err != nil {
		t.Errorf("Underscore-prefixed name must be valid, got %v.", err)
	}
}

func TestLabelSetEmptyValue(t *testing.T) {
	s := NewLabelSet()
	if err := s.Set("a", ""); !errors.Is(err, ErrInvalidLabelValue) {
		t.Errorf("Expected ErrInvalidLabelValue, got %v.", err)
	}
}

func TestLabelSetRemove(t *testing.T) {
	s := NewLabelSet()
	for _, name := range []string{"a", "b", "c"} {
		if err := s.Set(name, "1"); err != nil {
			t.Fatal(err)
		}
	}
	s.Remove("b")
	expected := `{a="1",c="1"}`
	if got := s.Render(); expected != got {
		t.Errorf("Expected %q, got %q.", expected, got)
	}
	// Removing an absent label is a no-op.
	s.Remove("missing")
	if got := s.Render(); expected != got {
		t.Errorf("Expected %q, got %q.", expected, got)
	}
}

func TestLabelSetCopy(t *testing.T) {
	s := NewLabelSet()
	if err := s.Set("a", "1234"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("b", "5678"); err != nil {
		t.Fatal(err)
	}

	c := s.Copy()
	c.Remove("a")
	c.Remove("b")

	expected := `{a="1234",b="5678"}`
	if got := s.Render(); expected != got {
		t.Errorf("Original must not be affected by the copy, expected %q, got %q.", expected, got)
	}
}

func TestLabelSetFromSortsKeys(t *testing.T) {
	s, err := LabelSetFrom(Labels{"b": "2", "a": "1", "c": "3"})
	if err != nil {
		t.Fatal(err)
	}
	expected := `{a="1",b="2",c="3"}`
	if got := s.Render(); expected != got {
		t.Errorf("Expected %q, got %q.", expected, got)
	}
}

func TestLabelSetMatches(t *testing.T) {
	s, err := LabelSetFrom(Labels{"method": "GET", "status": "200"})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name     string
		filter   Filter
		expected bool
	}{
		{"empty", Filter{}, true},
		{"nil", nil, true},
		{"exact", Filter{"method": {"GET"}}, true},
		{"mismatch", Filter{"method": {"POST"}}, false},
		{"membership", Filter{"method": {"POST", "GET"}}, true},
		{"absent_key", Filter{"zone": {"eu"}}, false},
		{"all_keys", Filter{"method": {"GET"}, "status": {"200"}}, true},
		{"one_key_fails", Filter{"method": {"GET"}, "status": {"500"}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := s.Matches(c.filter); c.expected != got {
				t.Errorf("Expected %v, got %v.", c.expected, got)
			}
		})
	}
}
