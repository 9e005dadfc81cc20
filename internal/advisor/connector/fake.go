package connector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
)

// CostFunc computes the cost of a query given the indexes currently
// simulated on a Fake connector, keyed by their synthetic handles. Tests supply this to describe
// exactly how a recommendation scenario should score.
type CostFunc func(query model.Query, simulated map[string]model.Index) float64

// SizeFunc computes the size, in bytes, of a candidate index. Tests supply
// this to control size-budget behavior deterministically.
type SizeFunc func(index model.Index) int64

// Fake is an in-memory Connector for unit tests: it has no real query
// planner, just the CostFunc/SizeFunc the test wires in, and tracks which
// indexes are currently simulated so CostFunc can see them.
type Fake struct {
	mu        sync.Mutex
	simulated map[string]model.Index
	nextID    atomic.Uint64

	CostFn CostFunc
	SizeFn SizeFunc

	// Calls records every Cost invocation's query ID, in order, so tests
	// can assert on caching behavior (i.e. how many times the connector was
	// actually asked, as opposed to how many times the cache was asked).
	Calls []string
}

// NewFake builds a Fake connector with the given cost and size functions. A
// nil SizeFunc defaults to a constant 1000 bytes per index.
func NewFake(costFn CostFunc, sizeFn SizeFunc) *Fake {
	if sizeFn == nil {
		sizeFn = func(model.Index) int64 { return 1000 }
	}
	return &Fake{
		simulated: make(map[string]model.Index),
		CostFn:    costFn,
		SizeFn:    sizeFn,
	}
}

// Cost implements Connector.
func (f *Fake) Cost(ctx context.Context, query model.Query) (float64, error) {
	f.mu.Lock()
	snapshot := make(map[string]model.Index, len(f.simulated))
	for k, v := range f.simulated {
		snapshot[k] = v
	}
	f.Calls = append(f.Calls, query.ID)
	f.mu.Unlock()

	return f.CostFn(query, snapshot), nil
}

// Plan implements Connector with a single synthetic node; Fake is meant for
// costeval/extend unit tests, which never inspect plan shape.
func (f *Fake) Plan(ctx context.Context, query model.Query) (Plan, error) {
	cost, err := f.Cost(ctx, query)
	if err != nil {
		return Plan{}, err
	}
	f.mu.Lock()
	var indexName string
	for name := range f.simulated {
		indexName = name
		break
	}
	f.mu.Unlock()
	return Plan{NodeType: "Fake", TotalCost: cost, IndexName: indexName}, nil
}

// SimulateIndex implements Connector, assigning each simulated index a
// unique synthetic handle.
func (f *Fake) SimulateIndex(ctx context.Context, index model.Index) (int64, string, error) {
	handle := fmt.Sprintf("fake_idx_%d", f.nextID.Add(1))

	f.mu.Lock()
	f.simulated[handle] = index
	f.mu.Unlock()

	return f.SizeFn(index), handle, nil
}

// DropSimulatedIndex implements Connector.
func (f *Fake) DropSimulatedIndex(ctx context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.simulated[handle]; !ok {
		return fmt.Errorf("fake connector: unknown handle %q", handle)
	}
	delete(f.simulated, handle)
	return nil
}

// Close implements Connector.
func (f *Fake) Close(ctx context.Context) error {
	return nil
}

// SimulatedCount returns how many indexes are currently simulated, for test
// assertions about reconciliation behavior.
func (f *Fake) SimulatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.simulated)
}
