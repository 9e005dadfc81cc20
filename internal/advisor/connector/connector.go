// Package connector talks to the database that hosts a workload: it plans
// and costs queries, simulates and drops hypothetical indexes, and (for the
// actual-runtime estimator) executes real DDL and queries. Every method is
// context-aware so a run can be cancelled mid-search.
package connector

import (
	"context"

	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
)

// Plan is a single node of a query's execution plan, enough of the
// optimizer's tree to drive the "which indexes were used" reporting in
// CostEvaluation.WhichIndexesUtilizedAndCost.
type Plan struct {
	NodeType  string
	IndexName string
	TotalCost float64
	Children  []Plan
}

// UsesIndex reports whether this plan node or any descendant scans using
// the named index.
func (p Plan) UsesIndex(name string) bool {
	if p.IndexName == name {
		return true
	}
	for _, c := range p.Children {
		if c.UsesIndex(name) {
			return true
		}
	}
	return false
}

// Connector is the capability every cost-estimator backend is built on: cost
// and plan a query under whatever indexes are currently simulated/created,
// and manage the lifecycle of hypothetical or real indexes.
type Connector interface {
	// Cost returns the optimizer's estimated cost for query under the
	// indexes currently simulated (or created) on the connector.
	Cost(ctx context.Context, query model.Query) (float64, error)

	// Plan returns the query's execution plan, used to determine which of
	// the simulated indexes the optimizer actually chose to use.
	Plan(ctx context.Context, query model.Query) (Plan, error)

	// SimulateIndex creates a catalog-only (what-if) or real index,
	// depending on the connector, and returns its estimated size in bytes
	// plus an opaque handle string used to drop it later.
	SimulateIndex(ctx context.Context, index model.Index) (sizeBytes int64, handle string, err error)

	// DropSimulatedIndex removes an index previously created by
	// SimulateIndex, identified by the handle it returned.
	DropSimulatedIndex(ctx context.Context, handle string) error

	// Close releases any connection resources held by the connector.
	Close(ctx context.Context) error
}

// DDLConnector is implemented by connectors that can also apply indexes for
// real, rather than only hypothetically. The advisor's search never calls
// this — it exists for demo/test connectors and for tooling built on top of
// a recommendation, not for the recommendation itself.
type DDLConnector interface {
	Connector
	CreateIndex(ctx context.Context, index model.Index) error
	DropIndex(ctx context.Context, index model.Index) error
	ExecQuery(ctx context.Context, query model.Query) error
}
