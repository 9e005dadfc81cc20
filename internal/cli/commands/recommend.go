package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/indexadvisor/internal/advisor/costeval"
	"github.com/conduit-lang/indexadvisor/internal/advisor/extend"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
	"github.com/conduit-lang/indexadvisor/internal/advisor/telemetry"
	"github.com/conduit-lang/indexadvisor/internal/cli/config"
	"github.com/conduit-lang/indexadvisor/internal/cli/ui"
)

var (
	recommendWorkloadPath string
	recommendWorkloadDir  string
)

// NewRecommendCommand creates the recommend command
func NewRecommendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend indexes for a workload",
		Long: `Run the Extend algorithm against a workload definition and print the
recommended index combination.

indexadvisor.yml (or the ADVISOR_ environment) supplies the connector, dsn,
and search parameters; --workload points at the JSON file describing the
queries to optimize for, or --workload-dir merges every .json workload file
found under a directory into one combined workload.`,
		Example: `  indexadvisor recommend --workload orders.json
  indexadvisor recommend --workload-dir ./workloads`,
		RunE: runRecommend,
	}

	cmd.Flags().StringVar(&recommendWorkloadPath, "workload", "", "Path to a workload JSON file")
	cmd.Flags().StringVar(&recommendWorkloadDir, "workload-dir", "", "Directory of workload JSON files to merge")
	cmd.MarkFlagsOneRequired("workload", "workload-dir")
	cmd.MarkFlagsMutuallyExclusive("workload", "workload-dir")

	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		if unknown, ok := err.(config.ConfigUnknownKey); ok {
			suggestions := ui.FindSimilar(unknown.Key, config.KnownKeys(), nil)
			fmt.Fprint(os.Stderr, ui.UnknownConfigKeyError(unknown.Key, suggestions, false))
		}
		return fmt.Errorf("load config: %w", err)
	}

	var workload model.Workload
	if recommendWorkloadDir != "" {
		workload, err = loadWorkloadDir(recommendWorkloadDir)
	} else {
		workload, err = loadWorkloadFile(recommendWorkloadPath)
	}
	if err != nil {
		return err
	}

	level, _ := cfg["log_level"].(string)
	logger, runID, err := telemetry.NewRunLogger(level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	conn, err := buildConnector(ctx, cfg)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.ConnectorError(err.Error(), false))
		return fmt.Errorf("build connector: %w", err)
	}
	defer conn.Close(ctx)

	store, err := buildCacheStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build cache: %w", err)
	}
	eval := costeval.New(conn, store)

	var combination []string
	err = ui.WithSpinner(os.Stdout, "searching for beneficial indexes", false, func() error {
		result, runErr := extend.Run(ctx, eval, workload, cfg.ToExtendConfig())
		if runErr != nil {
			return runErr
		}
		for _, ix := range result {
			combination = append(combination, ix.String())
		}
		return nil
	})
	if err != nil {
		telemetry.LogRunError(logger, err)
		fmt.Fprint(os.Stderr, ui.RecommendationError(err.Error(), fmt.Sprintf("run %s stopped before a combination was chosen", runID), false))
		return fmt.Errorf("recommend run %s: %w", runID, err)
	}

	section := ui.NewSection(os.Stdout, "Recommended indexes", false)
	if len(combination) == 0 {
		section.AddLine("(none - the workload's current plan already clears the improvement gate)")
	}
	for _, ix := range combination {
		section.AddLine(ix)
	}
	section.Render()

	kv := ui.NewKeyValueTable(os.Stdout, false)
	kv.AddRow("run_id", runID)
	kv.AddRow("cost_requests", fmt.Sprintf("%d", eval.CostRequests()))
	kv.AddRow("cache_hits", fmt.Sprintf("%d", eval.CacheHits()))
	kv.Render()

	return eval.Complete(ctx)
}
