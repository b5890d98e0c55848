package registry

import (
	"fmt"
	"slices"
	"strings"
)

// Stats is a point-in-time copy of a registry's creation counters.
type Stats struct {
	// Created counts successful Create calls.
	Created int
	// Failed counts Create calls that returned an error (unknown key included).
	Failed int
	// ByKey counts successful Create calls per key.
	ByKey map[string]int
}

// Stats returns a copy of the creation counters.
func (r *Registry[T]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	byKey := make(map[string]int, len(r.created))
	for k, v := range r.created {
		byKey[k] = v
	}
	return Stats{Created: r.total, Failed: r.failed, ByKey: byKey}
}

// String renders the counters deterministically, e.g.
// "created=3 failed=1 {circle=1, point=2}".
func (s Stats) String() string {
	parts := make([]string, 0, len(s.ByKey))
	for k, v := range s.ByKey {
		parts = append(parts, fmt.Sprintf("%s=%d", k, v))
	}
	slices.Sort(parts)
	return fmt.Sprintf("created=%d failed=%d {%s}", s.Created, s.Failed, strings.Join(parts, ", "))
}
