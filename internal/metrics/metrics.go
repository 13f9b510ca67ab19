// Package metrics keeps in-process request counters per endpoint and renders them as
// Prometheus-style text.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// endpoint accumulates counters for one "METHOD path" key.
type endpoint struct {
	method        string
	path          string
	requests      int64
	errors        int64
	totalDuration time.Duration
}

// Registry is safe for concurrent use. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu        sync.Mutex
	endpoints map[string]*endpoint
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]*endpoint)}
}

// Record counts one finished request. Statuses of 400 and above count as errors.
func (r *Registry) Record(method, path string, d time.Duration, status int) {
	method = strings.ToUpper(method)
	key := method + " " + path

	r.mu.Lock()
	defer r.mu.Unlock()

	ep, ok := r.endpoints[key]
	if !ok {
		ep = &endpoint{method: method, path: path}
		r.endpoints[key] = ep
	}
	ep.requests++
	if status >= 400 {
		ep.errors++
	}
	ep.totalDuration += d
}

// Snapshot is a point-in-time copy of one endpoint's counters.
type Snapshot struct {
	Method          string
	Path            string
	Requests        int64
	Errors          int64
	AverageDuration time.Duration
}

// Snapshots returns all endpoints sorted by "METHOD path".
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	keys := make([]string, 0, len(r.endpoints))
	for k := range r.endpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Snapshot, 0, len(keys))
	for _, k := range keys {
		ep := r.endpoints[k]
		var avg time.Duration
		if ep.requests > 0 {
			avg = ep.totalDuration / time.Duration(ep.requests)
		}
		out = append(out, Snapshot{
			Method:          ep.method,
			Path:            ep.path,
			Requests:        ep.requests,
			Errors:          ep.errors,
			AverageDuration: avg,
		})
	}
	r.mu.Unlock()
	return out
}

// Render writes three lines per endpoint. An empty registry renders a single newline.
func (r *Registry) Render() string {
	var b strings.Builder
	for _, s := range r.Snapshots() {
		labels := fmt.Sprintf(`{method=%q,path=%q}`, s.Method, s.Path)
		fmt.Fprintf(&b, "requests_total%s %d\n", labels, s.Requests)
		fmt.Fprintf(&b, "errors_total%s %d\n", labels, s.Errors)
		fmt.Fprintf(&b, "request_duration_seconds_average%s %.6f\n", labels, s.AverageDuration.Seconds())
	}
	if b.Len() == 0 {
		return "\n"
	}
	return b.String()
}
