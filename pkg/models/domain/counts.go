package domain

// CountPair is one category and its frequency.
type CountPair struct {
	Value string
	Count int
}

// Counts holds value counts ordered by descending frequency, ties broken by
// first appearance. Order is significant for charts and tables, which is why
// this is a slice rather than a map.
type Counts []CountPair

// Get returns the count for a value, zero if absent.
func (c Counts) Get(value string) int {
	for _, p := range c {
		if p.Value == value {
			return p.Count
		}
	}
	return 0
}

// Top returns at most n leading pairs.
func (c Counts) Top(n int) Counts {
	if n < 0 || n >= len(c) {
		return c
	}
	return c[:n]
}

// Keys returns the values in order.
func (c Counts) Keys() []string {
	keys := make([]string, len(c))
	for i, p := range c {
		keys[i] = p.Value
	}
	return keys
}

// Sum returns the total of all counts.
func (c Counts) Sum() int {
	total := 0
	for _, p := range c {
		total += p.Count
	}
	return total
}

// DateRange reports the first and last timestamp seen in a column,
// formatted as ISO-8601 strings.
type DateRange struct {
	First string
	Last  string
}
