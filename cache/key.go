package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cache slot for a logical read. Keys are ordered tuples:
// a key is a descendant of any key that is a strict prefix of it, so
// invalidating ("inspections") also invalidates ("inspections", "list", ...)
// and ("inspections", "detail", "42").
type Key []string

// NewKey builds a key from a resource kind and optional segments. Empty
// segments are dropped so optional scope parts collapse cleanly.
func NewKey(kind string, segments ...string) Key {
	k := Key{kind}
	for _, s := range segments {
		if s != "" {
			k = append(k, s)
		}
	}
	return k
}

// Filters is an unordered filter set. Two deeply equal filter maps produce
// the same segment regardless of insertion order.
type Filters map[string]string

// Segment canonicalizes the filter set into a stable key segment: fields are
// sorted by name and empty values dropped.
func (f Filters) Segment() string {
	if len(f) == 0 {
		return "all"
	}
	names := make([]string, 0, len(f))
	for name, value := range f {
		if value != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "all"
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f[name]))
	}
	return b.String()
}

// String renders the key for map lookup and logging.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether p is an ancestor of (or equal to) k.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Equal reports structural equality.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}
