package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
	"github.com/conduit-lang/indexadvisor/internal/utils"
)

// workloadFile is the on-disk JSON shape a workload definition is loaded
// from: a flat list of queries, each naming the table and columns it
// filters on. This mirrors the wire shape POST /recommend accepts, so a
// file captured from one can be replayed through the other.
type workloadFile struct {
	Queries []struct {
		ID        string   `json:"id"`
		Text      string   `json:"text"`
		Table     string   `json:"table"`
		Columns   []string `json:"columns"`
		Frequency float64  `json:"frequency"`
	} `json:"queries"`
}

// loadWorkloadFile reads a workload definition from a JSON file.
func loadWorkloadFile(path string) (model.Workload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Workload{}, fmt.Errorf("read workload file: %w", err)
	}

	var wf workloadFile
	if err := json.Unmarshal(raw, &wf); err != nil {
		return model.Workload{}, fmt.Errorf("parse workload file: %w", err)
	}

	queries := make([]model.Query, 0, len(wf.Queries))
	for _, q := range wf.Queries {
		cols := make([]model.Column, 0, len(q.Columns))
		for _, name := range q.Columns {
			cols = append(cols, model.NewColumn(q.Table, name))
		}
		frequency := q.Frequency
		if frequency == 0 {
			frequency = 1
		}
		queries = append(queries, model.NewQuery(q.ID, q.Text, cols, frequency))
	}

	return model.NewWorkload(queries...), nil
}

// loadWorkloadDir reads every workload definition file under dir and merges
// their queries into a single workload, so a team that splits queries across
// one file per application route can still run one recommend pass over all
// of them.
func loadWorkloadDir(dir string) (model.Workload, error) {
	paths, err := utils.FindWorkloadFiles(dir)
	if err != nil {
		return model.Workload{}, fmt.Errorf("find workload files: %w", err)
	}
	if len(paths) == 0 {
		return model.Workload{}, fmt.Errorf("no .json workload files found under %s", dir)
	}

	var queries []model.Query
	for _, path := range paths {
		wl, err := loadWorkloadFile(path)
		if err != nil {
			return model.Workload{}, fmt.Errorf("%s: %w", path, err)
		}
		queries = append(queries, wl.Queries...)
	}

	return model.NewWorkload(queries...), nil
}
