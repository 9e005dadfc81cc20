package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/indexadvisor/internal/advisor/connector"
	"github.com/conduit-lang/indexadvisor/internal/advisor/costeval"
	"github.com/conduit-lang/indexadvisor/internal/advisor/extend"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
	"github.com/conduit-lang/indexadvisor/internal/cli/ui"
)

// NewDemoCommand creates the demo command
func NewDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run Extend against a seeded in-memory SQLite database",
		Long: `Run the recommendation algorithm against a small, built-in orders
workload backed by an in-memory SQLite database, so the algorithm can be
seen working with no Postgres instance and no configuration at all.`,
		Example: `  indexadvisor demo`,
		RunE:    runDemo,
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	conn, err := connector.NewSQLiteDemo(":memory:")
	if err != nil {
		return fmt.Errorf("open demo database: %w", err)
	}
	defer conn.Close(ctx)

	ddl, ok := connector.Connector(conn).(connector.DDLConnector)
	if !ok {
		return fmt.Errorf("demo connector does not implement DDLConnector")
	}

	customerID := model.NewColumn("orders", "customer_id")
	status := model.NewColumn("orders", "status")
	createdAt := model.NewColumn("orders", "created_at")

	seed := model.NewQuery("create_table", `CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`, nil, 0)
	if err := ddl.ExecQuery(ctx, seed); err != nil {
		return fmt.Errorf("seed demo schema: %w", err)
	}

	workload := model.NewWorkload(
		model.NewQuery("by_customer", "select * from orders where customer_id = ?", []model.Column{customerID}, 5),
		model.NewQuery("by_status", "select * from orders where status = ?", []model.Column{status}, 3),
		model.NewQuery("by_customer_and_created", "select * from orders where customer_id = ? and created_at > ?", []model.Column{customerID, createdAt}, 2),
	)

	store := costeval.NewMemoryCacheStore()
	eval := costeval.New(conn, store)

	var combination []string
	err = ui.WithSpinner(os.Stdout, "searching the demo workload for beneficial indexes", false, func() error {
		result, runErr := extend.Run(ctx, eval, workload, extend.Config{
			BudgetMB:      10,
			MaxIndexWidth: 2,
			Constraint:    extend.ConstraintStorage,
		})
		if runErr != nil {
			return runErr
		}
		for _, ix := range result {
			combination = append(combination, ix.String())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("demo run: %w", err)
	}

	section := ui.NewSection(os.Stdout, "Recommended indexes", false)
	if len(combination) == 0 {
		section.AddLine("(none)")
	}
	for _, ix := range combination {
		section.AddLine(ix)
	}
	section.Render()

	return eval.Complete(ctx)
}
