// Package charts renders the chart block of an entity analysis. Generators
// are looked up by configured name; each returns PNG images keyed by chart
// name. Explicitly requested charts render first and count toward the
// generic cap.
package charts

import (
	"sync"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/services/report/stats"
)

// MaxGenericCharts caps how many generic charts one entity produces,
// requested charts included.
const MaxGenericCharts = 3

// Params carries the per-entity knobs chart generators consult.
type Params struct {
	Hints     frame.Hints
	Requested []domain.ChartRequest
	TopN      int
}

func (p Params) topN() int {
	if p.TopN > 0 {
		return p.TopN
	}
	return stats.DefaultTopN
}

// Func renders one named group of charts. Stats computed earlier in the
// pipeline are available read-only.
type Func func(f *frame.Frame, st map[string]any, p Params) (map[string][]byte, error)

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
