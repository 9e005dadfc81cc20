package commands

import (
	"context"
	"fmt"

	"github.com/conduit-lang/indexadvisor/internal/advisor/connector"
	"github.com/conduit-lang/indexadvisor/internal/advisor/estimator"
	"github.com/conduit-lang/indexadvisor/internal/cli/config"
)

// buildConnector constructs the Connector named by cfg["connector"]:
// "whatif" (the default, a real Postgres + hypopg what-if connector),
// "actual" (measures real query execution time against a live database), or
// "sqlite" (an in-process SQLite demo database requiring no external
// dependency at all). If estimator_mode is "learned", the result is wrapped
// in a LearnedMultiplierEstimator scaling every cost by estimator_multiplier.
func buildConnector(ctx context.Context, cfg config.Config) (connector.Connector, error) {
	name, _ := cfg["connector"].(string)
	dsn, _ := cfg["dsn"].(string)

	var base connector.Connector
	var err error

	switch name {
	case "", "whatif":
		if dsn == "" {
			return nil, fmt.Errorf("connector %q requires a dsn", name)
		}
		base, err = connector.NewPostgres(ctx, dsn)
	case "actual":
		if dsn == "" {
			return nil, fmt.Errorf("connector %q requires a dsn", name)
		}
		base, err = connector.NewActualRuntime(dsn)
	case "sqlite":
		path := dsn
		if path == "" {
			path = ":memory:"
		}
		base, err = connector.NewSQLiteDemo(path)
	default:
		return nil, fmt.Errorf("unknown connector %q", name)
	}
	if err != nil {
		return nil, err
	}

	mode, _ := cfg["estimator_mode"].(string)
	if mode == "" {
		mode = string(estimator.ModeWhatIf)
	}
	if estimator.Mode(mode) != estimator.ModeLearned {
		return base, nil
	}

	multiplier, _ := cfg["estimator_multiplier"].(float64)
	if multiplier == 0 {
		multiplier = 1.0
	}
	return estimator.New(estimator.ModeLearned, base, estimator.ConstantMultiplier(multiplier))
}
