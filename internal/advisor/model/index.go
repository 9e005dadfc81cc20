package model

import (
	"sort"
	"strings"
)

// Index is an ordered, non-empty sequence of columns from a single table.
// Column order is significant to identity: Index{A, B} and Index{B, A} are
// different indexes even though they cover the same columns. EstimatedSize,
// HypoOID and HypoName are side-table fields owned by the cost evaluator,
// not by the search: the search only ever reads them back.
type Index struct {
	Columns []Column

	// EstimatedSize is filled lazily by the evaluator's size estimation.
	// nil means "not yet known", distinct from a known-zero size.
	EstimatedSize *int64

	// HypoName is set by the cost evaluator to the handle the connector
	// returned when it simulated the index. HypoOID is not populated by the
	// evaluator.
	HypoOID  string
	HypoName string
}

// NewIndex builds an Index over the given columns, all assumed to be on the
// same table. A nil EstimatedSize and empty hypo identifiers are the zero
// value, matching a freshly constructed candidate.
func NewIndex(columns ...Column) Index {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return Index{Columns: cols}
}

// Table returns the table the index is defined on, or "" for an empty index.
func (ix Index) Table() string {
	if len(ix.Columns) == 0 {
		return ""
	}
	return ix.Columns[0].Table
}

// IsSingleColumn reports whether the index covers exactly one column.
func (ix Index) IsSingleColumn() bool {
	return len(ix.Columns) == 1
}

// AppendableBy reports whether col can be appended to ix: it must be on the
// same table and must not already appear in ix's columns.
func (ix Index) AppendableBy(col Column) bool {
	if len(ix.Columns) == 0 {
		return true
	}
	if col.Table != ix.Table() {
		return false
	}
	for _, c := range ix.Columns {
		if c == col {
			return false
		}
	}
	return true
}

// Appended returns a new Index with col's columns appended to ix's. It does
// not mutate ix, and it does not copy EstimatedSize/hypo identifiers — the
// result is a new candidate the evaluator has not seen yet.
func (ix Index) Appended(col Column) Index {
	cols := make([]Column, 0, len(ix.Columns)+1)
	cols = append(cols, ix.Columns...)
	cols = append(cols, col)
	return Index{Columns: cols}
}

// Equal reports whether ix and other cover the same columns in the same
// order. EstimatedSize and hypo identifiers are not part of identity.
func (ix Index) Equal(other Index) bool {
	if len(ix.Columns) != len(other.Columns) {
		return false
	}
	for i, c := range ix.Columns {
		if other.Columns[i] != c {
			return false
		}
	}
	return true
}

// Key returns a string uniquely identifying the column sequence, suitable
// for use as a map key where Index's slice field would not be comparable.
func (ix Index) Key() string {
	var b strings.Builder
	for i, c := range ix.Columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// ContainsAny reports whether any of ix's columns appear in cols.
func (ix Index) ContainsAny(cols []Column) bool {
	for _, c := range ix.Columns {
		for _, q := range cols {
			if c == q {
				return true
			}
		}
	}
	return false
}

// String renders the index as "table(col1, col2)".
func (ix Index) String() string {
	if len(ix.Columns) == 0 {
		return "()"
	}
	names := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		names[i] = c.Name
	}
	return ix.Table() + "(" + strings.Join(names, ", ") + ")"
}

// Combination is an ordered sequence of Indexes. Order records insertion
// history for debuggability (and for the Extend append semantics, which
// move an extended index to the end); identity for caching purposes treats
// a Combination as a set — see Set.
type Combination []Index

// Clone returns a shallow copy of the combination's index slice. Indexes
// themselves are small value-ish handles; cloning the slice is enough to
// let the search branch without the two branches aliasing one another's
// backing array.
func (c Combination) Clone() Combination {
	out := make(Combination, len(c))
	copy(out, c)
	return out
}

// Contains reports whether ix (by column-sequence equality) is present in c.
func (c Combination) Contains(ix Index) bool {
	for _, x := range c {
		if x.Equal(ix) {
			return true
		}
	}
	return false
}

// TotalSize sums EstimatedSize across the combination, treating an unknown
// size as zero.
func (c Combination) TotalSize() int64 {
	var total int64
	for _, ix := range c {
		if ix.EstimatedSize != nil {
			total += *ix.EstimatedSize
		}
	}
	return total
}

// Set returns c as a key usable for set-identity comparisons: the sorted,
// deduplicated set of index Keys, independent of insertion order.
func (c Combination) Set() string {
	keys := make([]string, len(c))
	for i, ix := range c {
		keys[i] = ix.Key()
	}
	sort.Strings(keys)
	deduped := keys[:0]
	for _, k := range keys {
		if len(deduped) > 0 && deduped[len(deduped)-1] == k {
			continue
		}
		deduped = append(deduped, k)
	}
	return strings.Join(deduped, "|")
}
