// Package stats computes the summary statistics block of an entity
// analysis. Generators are looked up by the names listed in the entity
// configuration; unknown names are skipped by the analyzer.
package stats

import (
	"math"
	"strings"
	"sync"

	"github.com/de-tools/form-atlas/pkg/frame"
)

// DefaultTopN caps categorical breakdowns when the request does not set one.
const DefaultTopN = 10

// MaxCategoricalCardinality is the upper bound of the cardinality window
// for generic categorical stats. Kept independent of the chart cap: tables
// stay readable at twice the category count a chart can carry.
const MaxCategoricalCardinality = 2 * frame.MaxUniqueGenericChart

// MaxGenericCategorical caps how many columns the generic categorical
// generator summarizes.
const MaxGenericCategorical = 5

// Params carries the per-entity knobs a generator may consult.
// QuestionTypes maps question text to its question type for entities that
// carry dynamic answer columns.
type Params struct {
	Hints         frame.Hints
	Columns       []string
	TopN          int
	QuestionTypes map[string]string
}

func (p Params) topN() int {
	if p.TopN > 0 {
		return p.TopN
	}
	return DefaultTopN
}

// Func computes one named group of statistics.
type Func func(f *frame.Frame, p Params) (map[string]any, error)

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

// Key sanitizes a column path into a stat key suffix: lowercase, runs of
// non-alphanumerics collapsed to underscores, truncated to 30 bytes.
func Key(col string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(col) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	key := strings.Trim(sb.String(), "_")
	if len(key) > 30 {
		key = key[:30]
	}
	return key
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
