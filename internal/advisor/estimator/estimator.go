// Package estimator selects and composes the cost-estimator backend a run
// uses. The uniform capability every backend exposes — cost(query) and
// plan(query) — is exactly connector.Connector, so a backend here is simply
// a connector.Connector, optionally decorated with a learned multiplier.
// Selection happens once, at construction, and is immutable for the life of
// the run.
package estimator

import (
	"context"
	"fmt"

	"github.com/conduit-lang/indexadvisor/internal/advisor/connector"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
)

// Mode names the cost-estimation strategy a run is configured to use.
type Mode string

const (
	// ModeWhatIf uses the optimizer's own cost estimate under hypothetical
	// indexes (the default, and the only mode with no physical cost).
	ModeWhatIf Mode = "whatif"
	// ModeActualRuntimes executes queries and real indexes and times them.
	ModeActualRuntimes Mode = "actual_runtimes"
	// ModeLearned rescales a what-if plan's raw cost through a Multiplier.
	ModeLearned Mode = "learned"
)

// New builds the connector.Connector a CostEvaluation should be constructed
// with, given the selected mode. ModeWhatIf and ModeActualRuntimes pass
// base through unchanged — the mode is really just a statement about which
// concrete connector was dialed, not a wrapper — while ModeLearned wraps
// base with a LearnedMultiplierEstimator.
func New(mode Mode, base connector.Connector, multiplier Multiplier) (connector.Connector, error) {
	switch mode {
	case ModeWhatIf, ModeActualRuntimes:
		return base, nil
	case ModeLearned:
		if multiplier == nil {
			return nil, fmt.Errorf("estimator: mode %q requires a non-nil Multiplier", mode)
		}
		return &LearnedMultiplierEstimator{base: base, multiplier: multiplier}, nil
	default:
		return nil, fmt.Errorf("estimator: unknown mode %q", mode)
	}
}

// Multiplier rescales a raw what-if plan cost into a learned-model
// estimate. Implementations range from a single global scalar (a stand-in
// for a simple regression) to per-table lookup tables (a stand-in for a
// gradient-boosted tree or a small library-based model) to, in principle, a
// call out to a transformer-based scoring service.
type Multiplier interface {
	Multiply(ctx context.Context, query model.Query, rawCost float64) (float64, error)
}

// ConstantMultiplier scales every query's cost by the same factor.
type ConstantMultiplier float64

// Multiply implements Multiplier.
func (m ConstantMultiplier) Multiply(ctx context.Context, query model.Query, rawCost float64) (float64, error) {
	return rawCost * float64(m), nil
}

// TableMultiplier scales cost by a factor looked up by the query's primary
// table (the table of its first referenced column), falling back to 1.0
// for tables with no entry.
type TableMultiplier map[string]float64

// Multiply implements Multiplier.
func (m TableMultiplier) Multiply(ctx context.Context, query model.Query, rawCost float64) (float64, error) {
	if len(query.Columns) == 0 {
		return rawCost, nil
	}
	factor, ok := m[query.Columns[0].Table]
	if !ok {
		factor = 1.0
	}
	return rawCost * factor, nil
}

// LearnedMultiplierEstimator decorates a base connector, rescaling the cost
// it reports through a Multiplier. It implements connector.Connector so it
// can be handed to costeval.New in place of the base connector directly.
type LearnedMultiplierEstimator struct {
	base       connector.Connector
	multiplier Multiplier
}

// Cost implements connector.Connector.
func (e *LearnedMultiplierEstimator) Cost(ctx context.Context, query model.Query) (float64, error) {
	raw, err := e.base.Cost(ctx, query)
	if err != nil {
		return 0, err
	}
	return e.multiplier.Multiply(ctx, query, raw)
}

// Plan implements connector.Connector, rescaling the root node's TotalCost
// and leaving the plan's shape (used for index-utilization detection)
// untouched.
func (e *LearnedMultiplierEstimator) Plan(ctx context.Context, query model.Query) (connector.Plan, error) {
	plan, err := e.base.Plan(ctx, query)
	if err != nil {
		return connector.Plan{}, err
	}
	scaled, err := e.multiplier.Multiply(ctx, query, plan.TotalCost)
	if err != nil {
		return connector.Plan{}, err
	}
	plan.TotalCost = scaled
	return plan, nil
}

// SimulateIndex implements connector.Connector by delegating to base; a
// learned multiplier only changes cost arithmetic, not index lifecycle.
func (e *LearnedMultiplierEstimator) SimulateIndex(ctx context.Context, index model.Index) (int64, string, error) {
	return e.base.SimulateIndex(ctx, index)
}

// DropSimulatedIndex implements connector.Connector.
func (e *LearnedMultiplierEstimator) DropSimulatedIndex(ctx context.Context, handle string) error {
	return e.base.DropSimulatedIndex(ctx, handle)
}

// Close implements connector.Connector.
func (e *LearnedMultiplierEstimator) Close(ctx context.Context) error {
	return e.base.Close(ctx)
}
