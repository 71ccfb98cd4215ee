package exporter

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Filter restricts a scrape to metrics whose label sets carry the given
// values. Each key maps a label name to its accepted values; a label
// matches when its value equals any of them. A nil or empty Filter
// matches every metric.
type Filter map[string][]string

// FilterFromQuery derives a Filter from request query parameters. Each
// parameter names a label and repeated parameters form the accepted
// value set. Filtering is best effort: keys that are not valid label
// names and empty values are dropped rather than failing the scrape.
func FilterFromQuery(q url.Values) Filter {
	f := Filter{}
	for name, values := range q {
		if !labelNameRE.MatchString(name) {
			continue
		}
		accepted := make([]string, 0, len(values))
		for _, v := range values {
			if v != "" {
				accepted = append(accepted, v)
			}
		}
		if len(accepted) > 0 {
			f[name] = accepted
		}
	}
	return f
}

// canonical returns a stable serialization of the filter, independent
// of map iteration and value order. It is the identity used for cache
// keys, so it must be injective: every token is quoted, keeping
// separators inside values distinct from the separators between them.
func (f Filter) canonical() string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		accepted := append([]string(nil), f[name]...)
		sort.Strings(accepted)
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		for i, v := range accepted {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(v))
		}
		b.WriteByte(';')
	}
	return b.String()
}
