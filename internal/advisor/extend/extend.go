// Package extend implements the Extend greedy index-selection heuristic: at
// each step it considers every single-column candidate not yet chosen and
// every column that could extend an index already in the combination, picks
// whichever produces the best benefit-to-size ratio, and repeats until no
// candidate clears the improvement gate or a resource limit is hit.
//
// The algorithm is pure with respect to everything except the cost
// evaluator: it does no I/O of its own, which is what lets it be unit
// tested against a fake evaluator with scripted costs.
package extend

import (
	"context"
	"fmt"

	"github.com/conduit-lang/indexadvisor/internal/advisor/advisorerr"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
)

// Constraint selects which resource limit bounds the final combination.
type Constraint int

const (
	// ConstraintStorage bounds the combination's total estimated size by
	// Config.BudgetMB; the index count is unlimited.
	ConstraintStorage Constraint = iota
	// ConstraintNumber bounds the combination's index count by
	// Config.MaxIndexes; storage is unlimited.
	ConstraintNumber
)

// bytesPerMB is the conversion the spec fixes for budget accounting:
// 1 MB = 1,000,000 bytes, not the binary 1,048,576.
const bytesPerMB = 1_000_000

// Evaluator is the capability Extend needs from the cost evaluation layer.
// costeval.CostEvaluation satisfies this; tests can substitute a
// hand-scripted fake. The returned combination carries each index's
// EstimatedSize/HypoName as populated by simulation and must be what the
// caller continues to build on, since size data lives only on the
// evaluator's side table.
type Evaluator interface {
	CalculateCost(ctx context.Context, workload model.Workload, combination model.Combination) (float64, model.Combination, error)
}

// Config holds the tunable parameters of a single Extend run.
type Config struct {
	// BudgetMB is the storage budget in megabytes; only consulted when
	// Constraint is ConstraintStorage.
	BudgetMB int64
	// MaxIndexWidth caps how many columns any one index in the result may
	// have.
	MaxIndexWidth int
	// MinCostImprovement is the relative improvement a candidate must
	// clear: new_cost * MinCostImprovement < current_cost. Zero defaults to
	// DefaultMinCostImprovement.
	MinCostImprovement float64
	// MaxIndexes caps the combination's index count; only consulted when
	// Constraint is ConstraintNumber.
	MaxIndexes int
	Constraint Constraint
	// ScoreFunc selects the benefit-to-size ratio; nil defaults to
	// BenefitPerSTO.
	ScoreFunc ScoreFunc
}

// DefaultMinCostImprovement is the improvement gate applied when a Config
// leaves MinCostImprovement unset.
const DefaultMinCostImprovement = 1.003

// budgetBytes returns the storage budget in bytes.
func (c Config) budgetBytes() int64 {
	return c.BudgetMB * bytesPerMB
}

func (c Config) minCostImprovement() float64 {
	if c.MinCostImprovement == 0 {
		return DefaultMinCostImprovement
	}
	return c.MinCostImprovement
}

func (c Config) scoreFunc() ScoreFunc {
	if c.ScoreFunc == nil {
		return BenefitPerSTO
	}
	return c.ScoreFunc
}

// Run executes the Extend algorithm against workload using eval as the cost
// oracle, returning the selected index combination.
func Run(ctx context.Context, eval Evaluator, workload model.Workload, cfg Config) (model.Combination, error) {
	if cfg.Constraint == ConstraintNumber && cfg.MaxIndexes == 0 {
		return nil, nil
	}
	if cfg.Constraint == ConstraintStorage && cfg.BudgetMB == 0 {
		return nil, nil
	}

	singleCandidates := workload.PotentialIndexes()
	if len(singleCandidates) == 0 {
		return nil, nil
	}
	extensionCandidates := make([]model.Column, 0, len(singleCandidates))
	for _, ix := range singleCandidates {
		extensionCandidates = append(extensionCandidates, ix.Columns[0])
	}

	var combination model.Combination
	currentCost, combination, err := eval.CalculateCost(ctx, workload, combination)
	if err != nil {
		return nil, err
	}

	for {
		best := searchState{}

		// Under a number constraint, once the cap is reached no further
		// single-column index may be added — but an append below still may,
		// since it extends an index already counted rather than adding a
		// new one.
		atCap := cfg.Constraint == ConstraintNumber && len(combination) >= cfg.MaxIndexes
		if !atCap {
			filtered := pruneByBudget(singleCandidates, cfg, combination.TotalSize())
			for _, candidate := range filtered {
				if combination.Contains(candidate) {
					continue
				}
				next := append(combination.Clone(), candidate)
				if err := evaluate(ctx, eval, workload, next, currentCost, 0, cfg, &best); err != nil {
					return nil, err
				}
			}
		}

		for _, col := range extensionCandidates {
			for position, idx := range combination {
				if len(idx.Columns) >= cfg.MaxIndexWidth {
					continue
				}
				if !idx.AppendableBy(col) {
					continue
				}
				extended := idx.Appended(col)
				if combination.Contains(extended) {
					continue
				}

				next := appendedCombination(combination, position, extended)
				var oldSize int64
				if idx.EstimatedSize != nil {
					oldSize = *idx.EstimatedSize
				}
				if err := evaluate(ctx, eval, workload, next, currentCost, oldSize, cfg, &best); err != nil {
					return nil, err
				}
			}
		}

		if best.ratio <= 0 {
			break
		}
		combination = best.combination
		currentCost = best.cost
	}

	return combination, nil
}

// searchState tracks the best candidate found in one layer of the search.
type searchState struct {
	combination model.Combination
	ratio       float64
	cost        float64
}

// evaluate scores combination against currentCost and, if it is both an
// improvement and the best seen this layer, records it in best. It mirrors
// the algorithm's evaluate() helper: reject on the improvement gate, compute
// benefit and size_delta, score via the configured ScoreFunc, and only keep
// the candidate if it both beats the running best ratio and fits the
// storage budget.
func evaluate(
	ctx context.Context,
	eval Evaluator,
	workload model.Workload,
	combination model.Combination,
	currentCost float64,
	oldSize int64,
	cfg Config,
	best *searchState,
) error {
	cost, enriched, err := eval.CalculateCost(ctx, workload, combination)
	if err != nil {
		return err
	}

	if cost*cfg.minCostImprovement() >= currentCost {
		return nil
	}

	benefit := currentCost - cost

	if len(enriched) == 0 {
		return advisorerr.Internal("extend evaluate", fmt.Errorf("empty combination"))
	}
	last := enriched[len(enriched)-1]
	var newSize int64
	if last.EstimatedSize != nil {
		newSize = *last.EstimatedSize
	}
	sizeDelta := newSize - oldSize
	if sizeDelta <= 0 {
		// A zero or negative delta means the simulator reported no usable
		// size difference; floor it so the ratio never divides by zero or
		// rewards a candidate for appearing to cost nothing.
		sizeDelta = 1
	}

	ratio := cfg.scoreFunc()(benefit, cost, sizeDelta)

	totalSize := enriched.TotalSize()
	if ratio > best.ratio && (cfg.Constraint != ConstraintStorage || totalSize <= cfg.budgetBytes()) {
		best.combination = enriched
		best.ratio = ratio
		best.cost = cost
	}
	return nil
}

// appendedCombination returns a copy of combination with the index at
// position replaced by extended, moved to the end: remove-then-append. This
// preserves set identity (extended replaces idx) while recording the
// extension as the most recent insertion.
func appendedCombination(combination model.Combination, position int, extended model.Index) model.Combination {
	out := make(model.Combination, 0, len(combination))
	for i, ix := range combination {
		if i == position {
			continue
		}
		out = append(out, ix)
	}
	out = append(out, extended)
	return out
}

// pruneByBudget filters candidates to those that could still fit the
// budget: an unknown size is kept (it will be sized during evaluation), and
// under ConstraintNumber no pruning happens at all since storage is
// unbounded in that mode.
func pruneByBudget(candidates []model.Index, cfg Config, sizeSoFar int64) []model.Index {
	if cfg.Constraint != ConstraintStorage {
		return candidates
	}
	remaining := cfg.budgetBytes() - sizeSoFar

	filtered := make([]model.Index, 0, len(candidates))
	for _, c := range candidates {
		if c.EstimatedSize == nil || *c.EstimatedSize <= remaining {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
