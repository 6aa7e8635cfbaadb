// Package insights derives the short narrative statements of an entity
// analysis from its computed statistics.
package insights

import (
	"sort"
	"strings"
	"sync"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
)

// StatusKey is the reserved insight key for pipeline status messages.
const StatusKey = "status"

// Status messages set by the analyzer around generator runs.
const (
	StatusNoData = "No data available for analysis."
	StatusError  = "Error during data analysis."
)

// Params carries the per-entity knobs insight generators consult.
type Params struct {
	Hints frame.Hints
}

// Func derives one named group of insights from the frame and its stats.
type Func func(f *frame.Frame, st map[string]any, p Params) (map[string]string, error)

var (
	mu       sync.RWMutex
	registry = map[string]Func{}
)

func register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = fn
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Func, bool) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := registry[name]
	return fn, ok
}

type countStat struct {
	key    string
	column string
	counts domain.Counts
}

// countStats extracts the counts_* blocks from a stats map, ordered by
// priority: columns naming name/title/type first, then fewer categories,
// then alphabetically.
func countStats(st map[string]any) []countStat {
	var out []countStat
	for key, v := range st {
		counts, ok := v.(domain.Counts)
		if !ok || !strings.HasPrefix(key, "counts_") {
			continue
		}
		out = append(out, countStat{key: key, column: strings.TrimPrefix(key, "counts_"), counts: counts})
	}
	named := func(col string) bool {
		return strings.Contains(col, "name") || strings.Contains(col, "title") || strings.Contains(col, "type")
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := named(out[i].column), named(out[j].column)
		if ni != nj {
			return ni
		}
		if len(out[i].counts) != len(out[j].counts) {
			return len(out[i].counts) < len(out[j].counts)
		}
		return out[i].column < out[j].column
	})
	return out
}
