package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/conduit-lang/indexadvisor/internal/advisor/advisorerr"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
)

// ActualRuntime is a DDLConnector that measures cost by executing queries
// and real indexes against a live database rather than asking the optimizer
// for an estimate. It is deliberately a separate driver (lib/pq) from the
// what-if connector's pgx pool: the two connectors are never open against
// the same database at the same time, and keeping them on independent
// driver stacks means a pgx-specific failure (e.g. a missing hypopg
// extension) can never be mistaken for a plain connectivity problem here.
type ActualRuntime struct {
	db *sql.DB
}

// NewActualRuntime opens dsn via lib/pq.
func NewActualRuntime(dsn string) (*ActualRuntime, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, advisorerr.ConnectorFailure("open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, advisorerr.ConnectorFailure("ping", err)
	}
	return &ActualRuntime{db: db}, nil
}

// Cost times query's execution and returns elapsed milliseconds as its cost.
func (a *ActualRuntime) Cost(ctx context.Context, query model.Query) (float64, error) {
	start := time.Now()
	var err error
	retryErr := WithRetry(ctx, DefaultRetryConfig(), func(ctx context.Context) error {
		rows, execErr := a.db.QueryContext(ctx, query.Text)
		if execErr != nil {
			err = execErr
			return execErr
		}
		defer rows.Close()
		for rows.Next() {
		}
		return rows.Err()
	})
	if retryErr != nil {
		return 0, advisorerr.ConnectorFailure("execute query: "+query.ID, err)
	}
	return float64(time.Since(start).Milliseconds()), nil
}

// Plan executes and times the query through Cost and returns a single-node
// plan carrying the measured cost; actual-runtime estimation doesn't need
// the operator tree, only whether the query ran at all.
func (a *ActualRuntime) Plan(ctx context.Context, query model.Query) (Plan, error) {
	cost, err := a.Cost(ctx, query)
	if err != nil {
		return Plan{}, err
	}
	return Plan{NodeType: "ActualRuntime", TotalCost: cost}, nil
}

// SimulateIndex creates a real index via CreateIndex and measures its size
// from pg_relation_size; there is no hypothetical mode here, the index is
// physically built.
func (a *ActualRuntime) SimulateIndex(ctx context.Context, index model.Index) (int64, string, error) {
	name := realIndexName(index)
	if err := a.createNamedIndex(ctx, name, index); err != nil {
		return 0, "", err
	}

	var sizeBytes int64
	err := a.db.QueryRowContext(ctx, `select pg_relation_size($1)`, name).Scan(&sizeBytes)
	if err != nil {
		return 0, "", advisorerr.ConnectorFailure("pg_relation_size: "+name, err)
	}
	return sizeBytes, name, nil
}

// DropSimulatedIndex drops the real index created by SimulateIndex.
func (a *ActualRuntime) DropSimulatedIndex(ctx context.Context, handle string) error {
	_, err := a.db.ExecContext(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", quoteIdent(handle)))
	if err != nil {
		return advisorerr.ConnectorFailure("drop index: "+handle, err)
	}
	return nil
}

// CreateIndex implements DDLConnector, building a real index under the same
// realIndexName-derived name SimulateIndex uses.
func (a *ActualRuntime) CreateIndex(ctx context.Context, index model.Index) error {
	return a.createNamedIndex(ctx, realIndexName(index), index)
}

// DropIndex implements DDLConnector.
func (a *ActualRuntime) DropIndex(ctx context.Context, index model.Index) error {
	return a.DropSimulatedIndex(ctx, realIndexName(index))
}

// ExecQuery implements DDLConnector, running query for its side effects
// rather than timing it.
func (a *ActualRuntime) ExecQuery(ctx context.Context, query model.Query) error {
	_, err := a.db.ExecContext(ctx, query.Text)
	if err != nil {
		return advisorerr.ConnectorFailure("exec query: "+query.ID, err)
	}
	return nil
}

// Close implements Connector.
func (a *ActualRuntime) Close(ctx context.Context) error {
	return a.db.Close()
}

func (a *ActualRuntime) createNamedIndex(ctx context.Context, name string, index model.Index) error {
	cols := ""
	for i, c := range index.Columns {
		if i > 0 {
			cols += ", "
		}
		cols += quoteIdent(c.Name)
	}
	ddl := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", quoteIdent(name), quoteIdent(index.Table()), cols)
	return WithRetry(ctx, DefaultRetryConfig(), func(ctx context.Context) error {
		_, err := a.db.ExecContext(ctx, ddl)
		if err != nil {
			return advisorerr.ConnectorFailure("create index: "+name, err)
		}
		return nil
	})
}

func realIndexName(index model.Index) string {
	name := "idxadv_" + index.Table()
	for _, c := range index.Columns {
		name += "_" + c.Name
	}
	return name
}

func quoteIdent(ident string) string {
	return `"` + ident + `"`
}
