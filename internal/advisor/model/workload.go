package model

// Workload is an ordered sequence of queries loaded once for a run and
// never mutated afterward.
type Workload struct {
	Queries []Query
}

// NewWorkload builds a Workload from the given queries, preserving order.
func NewWorkload(queries ...Query) Workload {
	qs := make([]Query, len(queries))
	copy(qs, queries)
	return Workload{Queries: qs}
}

// PotentialIndexes returns the set of single-column indexes over every
// column referenced by any query in the workload, one Index per distinct
// column, in first-seen order.
func (w Workload) PotentialIndexes() []Index {
	seen := make(map[Column]bool)
	var indexes []Index
	for _, q := range w.Queries {
		for _, c := range q.Columns {
			if seen[c] {
				continue
			}
			seen[c] = true
			indexes = append(indexes, NewIndex(c))
		}
	}
	return indexes
}

// TotalFrequency sums the frequency weight across every query.
func (w Workload) TotalFrequency() float64 {
	var total float64
	for _, q := range w.Queries {
		total += q.Frequency
	}
	return total
}
