// Package cache is the read-through cache used by the catalog services.
//
// Entries are written only for side-effect-free reads and carry a fixed
// TTL. Every entry is registered under one or more tags; a write to an
// entity family invalidates the whole tag. Over-invalidation is fine,
// under-invalidation is not.
package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// DefaultTTL bounds how stale a cached read may be.
const DefaultTTL = 5 * time.Minute

// Store is constructed once per application session and injected into
// services; there is no package-level instance.
type Store interface {
	// Get returns the cached value and whether the key was present and
	// not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl and registers it with tags.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	// Invalidate removes every entry registered under any of the tags.
	Invalidate(ctx context.Context, tags ...string) error
}

// Key builds a deterministic cache key from an operation name and its
// parameters. Parameters are serialized in sorted-key order so two
// logically identical lookups always hit the same entry.
func Key(op string, params map[string]string) string {
	if len(params) == 0 {
		return op
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(op)
	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}

// CompanyTag covers all company-level reads.
const CompanyTag = "companies"

// ReportTag covers report and comment reads for one company.
func ReportTag(companyID string) string {
	return "reports:" + companyID
}
