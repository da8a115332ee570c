// Package query is the gateway's read cache: structured keys, per-resource
// staleness, retrying fetches, and the mutation→invalidation map that keeps
// related views consistent after a write.
package query

import (
	"net/url"
	"strings"
)

// Namespace is the first segment of every key. Invalidating a namespace
// invalidates every operation and filter variant beneath it.
type Namespace string

const (
	NSAuth             Namespace = "auth"
	NSUser             Namespace = "user"
	NSDashboard        Namespace = "dashboard"
	NSTransactions     Namespace = "transactions"
	NSCashBills        Namespace = "cash-bills"
	NSFundApplications Namespace = "fund-applications"
	NSBendahara        Namespace = "bendahara"
)

const keySep = ":"

// Key is a structured tuple [resource, operation, filters...].
type Key []string

// NewKey builds a key. Filters are encoded canonically (sorted, escaped) so
// equal filter sets produce equal keys; empty filters add no segment.
func NewKey(ns Namespace, op string, filters url.Values) Key {
	k := Key{string(ns), op}
	if enc := filters.Encode(); enc != "" {
		k = append(k, enc)
	}
	return k
}

// DetailKey builds [resource, "detail", id].
func DetailKey(ns Namespace, id string) Key {
	return Key{string(ns), "detail", url.PathEscape(id)}
}

func (k Key) String() string {
	return strings.Join(k, keySep)
}

// Namespace returns the key's resource segment.
func (k Key) Namespace() Namespace {
	if len(k) == 0 {
		return ""
	}
	return Namespace(k[0])
}

// HasPrefix reports whether k starts with every segment of p.
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

// ParseKey is the inverse of Key.String. Segments never contain the
// separator: resource and operation names are fixed and filters are
// query-escaped.
func ParseKey(s string) Key {
	if s == "" {
		return nil
	}
	return Key(strings.Split(s, keySep))
}
