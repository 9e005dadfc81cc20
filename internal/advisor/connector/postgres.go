package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conduit-lang/indexadvisor/internal/advisor/advisorerr"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
)

// Postgres is a Connector backed by a live PostgreSQL connection with the
// hypopg extension installed. Indexes are "simulated" as catalog-only
// entries: the optimizer costs plans as if they existed, but no storage is
// ever written and no table is locked.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and verifies hypopg is available.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, advisorerr.ConnectorFailure("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, advisorerr.ConnectorFailure("ping", err)
	}
	if err := pingHypopg(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func pingHypopg(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	err := pool.QueryRow(ctx, `select exists(select 1 from pg_extension where extname = 'hypopg')`).Scan(&exists)
	if err != nil {
		return advisorerr.ConnectorFailure("check hypopg extension", err)
	}
	if !exists {
		return advisorerr.ConnectorFailure("hypopg extension not installed", fmt.Errorf("run CREATE EXTENSION hypopg"))
	}
	return nil
}

// Cost implements Connector.
func (p *Postgres) Cost(ctx context.Context, query model.Query) (float64, error) {
	plan, err := p.Plan(ctx, query)
	if err != nil {
		return 0, err
	}
	return plan.TotalCost, nil
}

// Plan implements Connector by running EXPLAIN (FORMAT JSON) and parsing the
// optimizer's chosen plan, including whichever hypothetical indexes it
// decided to use.
func (p *Postgres) Plan(ctx context.Context, query model.Query) (Plan, error) {
	var raw string
	err := WithRetry(ctx, DefaultRetryConfig(), func(ctx context.Context) error {
		row := p.pool.QueryRow(ctx, "EXPLAIN (FORMAT JSON) "+query.Text)
		return row.Scan(&raw)
	})
	if err != nil {
		return Plan{}, advisorerr.ConnectorFailure("explain query: "+query.ID, err)
	}

	var parsed []explainOutput
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Plan{}, advisorerr.Internal("parse explain output", err)
	}
	if len(parsed) == 0 {
		return Plan{}, advisorerr.Internal("parse explain output", fmt.Errorf("empty plan"))
	}
	return parsed[0].Plan.toPlan(), nil
}

// explainOutput mirrors the shape of postgres's EXPLAIN (FORMAT JSON) output,
// only as deep as the fields the advisor cares about.
type explainOutput struct {
	Plan explainNode `json:"Plan"`
}

type explainNode struct {
	NodeType  string        `json:"Node Type"`
	IndexName string        `json:"Index Name"`
	TotalCost float64       `json:"Total Cost"`
	Plans     []explainNode `json:"Plans"`
}

func (n explainNode) toPlan() Plan {
	children := make([]Plan, len(n.Plans))
	for i, c := range n.Plans {
		children[i] = c.toPlan()
	}
	return Plan{
		NodeType:  n.NodeType,
		IndexName: n.IndexName,
		TotalCost: n.TotalCost,
		Children:  children,
	}
}

// SimulateIndex implements Connector using hypopg_create_index. The returned
// handle is the hypopg-assigned index name, used later to drop it and to
// match it against EXPLAIN output's "Index Name" field.
func (p *Postgres) SimulateIndex(ctx context.Context, index model.Index) (int64, string, error) {
	ddl := hypotheticalCreateIndexDDL(index)

	var indexName string
	var indexOID int64
	err := WithRetry(ctx, DefaultRetryConfig(), func(ctx context.Context) error {
		return p.pool.QueryRow(ctx, `select indexname, indexrelid from hypopg_create_index($1)`, ddl).
			Scan(&indexName, &indexOID)
	})
	if err != nil {
		return 0, "", advisorerr.ConnectorFailure("hypopg_create_index: "+index.String(), err)
	}

	var sizeBytes int64
	err = p.pool.QueryRow(ctx, `select hypopg_relation_size($1)`, indexOID).Scan(&sizeBytes)
	if err != nil {
		return 0, "", advisorerr.ConnectorFailure("hypopg_relation_size: "+index.String(), err)
	}
	if sizeBytes <= 0 {
		// hypopg_relation_size falls back to a conservative estimate when
		// the planner's selectivity data can't produce a real one; treat a
		// non-positive result the same way to avoid a zero-size candidate.
		sizeBytes = 1
	}

	return sizeBytes, indexName, nil
}

// DropSimulatedIndex implements Connector using hypopg_drop_index, looking
// up the index's relid by name since hypopg indexes live entirely in a
// session-local catalog table.
func (p *Postgres) DropSimulatedIndex(ctx context.Context, handle string) error {
	var oid int64
	err := p.pool.QueryRow(ctx, `select indexrelid from hypopg_list_indexes() where indexname = $1`, handle).Scan(&oid)
	if err != nil {
		return advisorerr.ConnectorFailure("resolve hypopg index: "+handle, err)
	}
	var ok bool
	if err := p.pool.QueryRow(ctx, `select hypopg_drop_index($1)`, oid).Scan(&ok); err != nil {
		return advisorerr.ConnectorFailure("hypopg_drop_index: "+handle, err)
	}
	if !ok {
		return advisorerr.ConnectorFailure("hypopg_drop_index: "+handle, fmt.Errorf("index not found"))
	}
	return nil
}

// Close implements Connector.
func (p *Postgres) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}

func hypotheticalCreateIndexDDL(index model.Index) string {
	cols := ""
	for i, c := range index.Columns {
		if i > 0 {
			cols += ", "
		}
		cols += pgx.Identifier{c.Name}.Sanitize()
	}
	return fmt.Sprintf("CREATE INDEX ON %s (%s)", pgx.Identifier{index.Table()}.Sanitize(), cols)
}
