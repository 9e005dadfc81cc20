package model

// Query is a single workload statement. Columns lists every column the
// query references (used to determine which candidate indexes are relevant
// to it); Frequency is a positive weight applied to its cost when summing
// workload cost.
type Query struct {
	ID        string
	Text      string
	Columns   []Column
	Frequency float64
}

// NewQuery builds a Query with the given frequency weight.
func NewQuery(id, text string, columns []Column, frequency float64) Query {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return Query{ID: id, Text: text, Columns: cols, Frequency: frequency}
}

// ReferencesTable reports whether any of the query's columns belong to table.
func (q Query) ReferencesTable(table string) bool {
	for _, c := range q.Columns {
		if c.Table == table {
			return true
		}
	}
	return false
}
