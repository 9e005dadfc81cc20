// Package costeval implements the caching proxy over a what-if cost oracle:
// it keeps a database connector's simulated-index set synchronized with
// whatever combination the search is currently evaluating, memoizes
// per-query costs keyed by the indexes actually relevant to each query, and
// tracks the request/hit counters the search uses to judge cache
// effectiveness.
package costeval

import (
	"context"
	"fmt"

	"github.com/conduit-lang/indexadvisor/internal/advisor/advisorerr"
	"github.com/conduit-lang/indexadvisor/internal/advisor/connector"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
)

// CostEvaluation is the evaluator every search step goes through. One
// instance is owned by exactly one run; it is not safe for concurrent use,
// matching the single-threaded cooperative model the search itself assumes.
type CostEvaluation struct {
	conn  connector.Connector
	cache CacheStore

	// currentIndexes mirrors what is actually simulated on the connector
	// right now, keyed by Index.Key(). Each stored Index carries the
	// EstimatedSize and HypoName the simulation produced.
	currentIndexes map[string]model.Index

	// relevantIndexesCache amortizes relevance filtering: recomputing which
	// indexes in a combination are relevant to a query is pure given
	// (query.Text, combination.Set()), so it is memoized the same way
	// costs are.
	relevantIndexesCache map[string]model.Combination

	costRequests int64
	cacheHits    int64
	completed    bool
}

// New builds a CostEvaluation over conn, using cache for per-query cost
// memoization. A nil cache defaults to an unbounded in-memory store, which
// is appropriate for short-lived runs and for tests.
func New(conn connector.Connector, cache CacheStore) *CostEvaluation {
	if cache == nil {
		cache = NewMemoryCacheStore()
	}
	return &CostEvaluation{
		conn:                 conn,
		cache:                cache,
		currentIndexes:       make(map[string]model.Index),
		relevantIndexesCache: make(map[string]model.Combination),
	}
}

// CostRequests returns how many per-query cost lookups have been made so
// far, hit or miss.
func (e *CostEvaluation) CostRequests() int64 { return e.costRequests }

// CacheHits returns how many of those lookups were served from cache.
func (e *CostEvaluation) CacheHits() int64 { return e.cacheHits }

// Completed reports whether Complete has already been called.
func (e *CostEvaluation) Completed() bool { return e.completed }

// CurrentIndexes returns the indexes currently simulated on the connector,
// in an unspecified order; callers that need set comparisons should compare
// via model.Combination.Set.
func (e *CostEvaluation) CurrentIndexes() model.Combination {
	out := make(model.Combination, 0, len(e.currentIndexes))
	for _, ix := range e.currentIndexes {
		out = append(out, ix)
	}
	return out
}

// CalculateCost reconciles the simulated-index set to combination, then
// returns the workload's total weighted estimated cost under it, along with
// combination re-expressed with each index's EstimatedSize and HypoName as
// populated by simulation. Callers that keep building on the combination
// (the Extend search, in particular) must carry forward the returned
// combination rather than their original slice, since size and hypo
// identifiers live only on the evaluator's side table.
func (e *CostEvaluation) CalculateCost(ctx context.Context, workload model.Workload, combination model.Combination) (float64, model.Combination, error) {
	if e.completed {
		return 0, nil, fmt.Errorf("calculate_cost after complete: %w", advisorerr.ErrEvaluatorSealed)
	}

	if err := e.reconcile(ctx, combination); err != nil {
		return 0, nil, err
	}
	enriched := e.enrich(combination)

	combinationKey := combination.Set()
	var total float64
	for _, q := range workload.Queries {
		cost, err := e.costForQuery(ctx, q, combination, combinationKey)
		if err != nil {
			return 0, nil, err
		}
		total += cost * q.Frequency
	}
	return total, enriched, nil
}

// enrich returns combination with each index replaced by its simulated
// counterpart from current_indexes, which carries EstimatedSize and
// HypoName. Every index in combination is expected to already be simulated
// by the time enrich is called (reconcile having just run); a missing entry
// falls back to the input index unchanged, which should only happen for a
// genuinely empty combination.
func (e *CostEvaluation) enrich(combination model.Combination) model.Combination {
	out := make(model.Combination, len(combination))
	for i, ix := range combination {
		if simulated, ok := e.currentIndexes[ix.Key()]; ok {
			out[i] = simulated
			continue
		}
		out[i] = ix
	}
	return out
}

// costForQuery looks up (or computes and caches) a single query's cost
// under combination's relevant-indexes subset.
func (e *CostEvaluation) costForQuery(ctx context.Context, q model.Query, combination model.Combination, combinationKey string) (float64, error) {
	relevant := e.relevantIndexes(q, combination, combinationKey)
	cacheKey := q.Text + "\x00" + relevant.Set()

	e.costRequests++
	if cost, ok := e.cache.Get(cacheKey); ok {
		e.cacheHits++
		return cost, nil
	}

	cost, err := e.conn.Cost(ctx, q)
	if err != nil {
		return 0, advisorerr.ConnectorFailure("cost query: "+q.ID, err)
	}
	e.cache.Set(cacheKey, cost)
	return cost, nil
}

// relevantIndexes returns the subset of combination whose columns intersect
// q's referenced columns, memoized per (query text, combination set).
func (e *CostEvaluation) relevantIndexes(q model.Query, combination model.Combination, combinationKey string) model.Combination {
	key := q.Text + "\x00" + combinationKey
	if cached, ok := e.relevantIndexesCache[key]; ok {
		return cached
	}

	var relevant model.Combination
	for _, ix := range combination {
		if ix.ContainsAny(q.Columns) {
			relevant = append(relevant, ix)
		}
	}
	e.relevantIndexesCache[key] = relevant
	return relevant
}

// reconcile simulates every index in combination not yet simulated, and
// drops every simulated index no longer in combination, so that afterward
// e.currentIndexes exactly mirrors combination (by set identity).
func (e *CostEvaluation) reconcile(ctx context.Context, combination model.Combination) error {
	wanted := make(map[string]model.Index, len(combination))
	for _, ix := range combination {
		wanted[ix.Key()] = ix
	}

	for key, ix := range e.currentIndexes {
		if _, ok := wanted[key]; ok {
			continue
		}
		if err := e.conn.DropSimulatedIndex(ctx, ix.HypoName); err != nil {
			return advisorerr.ConnectorFailure("drop index: "+ix.String(), err)
		}
		delete(e.currentIndexes, key)
	}

	for key, ix := range wanted {
		if _, ok := e.currentIndexes[key]; ok {
			continue
		}
		simulated, err := e.simulate(ctx, ix)
		if err != nil {
			return err
		}
		e.currentIndexes[key] = simulated
	}

	return nil
}

// simulate asks the connector to create ix and returns a copy of ix with
// EstimatedSize and HypoName populated from the result.
func (e *CostEvaluation) simulate(ctx context.Context, ix model.Index) (model.Index, error) {
	size, handle, err := e.conn.SimulateIndex(ctx, ix)
	if err != nil {
		return model.Index{}, advisorerr.ConnectorFailure("simulate index: "+ix.String(), err)
	}
	if size <= 0 {
		// A zero or negative size is a data error from the simulator, not a
		// real zero-byte index; floor it so downstream ratio math never
		// divides by zero. See EstimateSize for the equivalent path when
		// size is requested directly.
		size = 1
	}
	ix.EstimatedSize = &size
	ix.HypoName = handle
	return ix, nil
}

// EstimateSize returns ix's estimated size in bytes, simulating it first if
// it is not already part of the currently simulated set. The simulated
// index (if newly created) is left in current_indexes; callers that don't
// want it part of the next reconciliation must pass it through
// CalculateCost with a combination that omits it.
func (e *CostEvaluation) EstimateSize(ctx context.Context, ix model.Index) (int64, error) {
	if existing, ok := e.currentIndexes[ix.Key()]; ok && existing.EstimatedSize != nil {
		return *existing.EstimatedSize, nil
	}

	simulated, err := e.simulate(ctx, ix)
	if err != nil {
		return 0, err
	}
	e.currentIndexes[ix.Key()] = simulated
	return *simulated.EstimatedSize, nil
}

// WhichIndexesUtilizedAndCost reconciles combination, obtains query's plan,
// and returns the subset of combination the plan actually used (matched by
// hypothetical index name) along with the evaluator-computed weighted cost
// for a workload containing only this one query.
func (e *CostEvaluation) WhichIndexesUtilizedAndCost(ctx context.Context, query model.Query, combination model.Combination) (model.Combination, float64, error) {
	if e.completed {
		return nil, 0, fmt.Errorf("which_indexes_utilized_and_cost after complete: %w", advisorerr.ErrEvaluatorSealed)
	}
	if err := e.reconcile(ctx, combination); err != nil {
		return nil, 0, err
	}

	plan, err := e.conn.Plan(ctx, query)
	if err != nil {
		return nil, 0, advisorerr.ConnectorFailure("plan query: "+query.ID, err)
	}

	var used model.Combination
	for _, ix := range combination {
		simulated, ok := e.currentIndexes[ix.Key()]
		if !ok || simulated.HypoName == "" {
			continue
		}
		if plan.UsesIndex(simulated.HypoName) {
			used = append(used, simulated)
		}
	}

	singleQueryWorkload := model.NewWorkload(query)
	cost, _, err := e.CalculateCost(ctx, singleQueryWorkload, combination)
	if err != nil {
		return nil, 0, err
	}

	return used, cost, nil
}

// Complete drops every currently simulated index, clears current_indexes,
// and seals the evaluator against further calls. It is idempotent: calling
// it again after it has already completed is a no-op.
func (e *CostEvaluation) Complete(ctx context.Context) error {
	if e.completed {
		return nil
	}
	for key, ix := range e.currentIndexes {
		if err := e.conn.DropSimulatedIndex(ctx, ix.HypoName); err != nil {
			return advisorerr.ConnectorFailure("drop index on complete: "+ix.String(), err)
		}
		delete(e.currentIndexes, key)
	}
	e.completed = true
	return nil
}
