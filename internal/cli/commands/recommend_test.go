package commands

import (
	"testing"
)

func TestNewRecommendCommand(t *testing.T) {
	cmd := NewRecommendCommand()

	if cmd.Use != "recommend" {
		t.Errorf("expected Use to be 'recommend', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Flags().Lookup("workload") == nil {
		t.Error("expected --workload flag to be registered")
	}

	if cmd.Flags().Lookup("workload-dir") == nil {
		t.Error("expected --workload-dir flag to be registered")
	}
}

func TestRunRecommend_MissingWorkloadFile(t *testing.T) {
	recommendWorkloadPath = "/nonexistent/workload.json"
	defer func() { recommendWorkloadPath = "" }()

	cmd := NewRecommendCommand()
	err := runRecommend(cmd, []string{})

	if err == nil {
		t.Error("expected error for missing workload file, got nil")
	}
}

func TestRunRecommend_MissingWorkloadDir(t *testing.T) {
	recommendWorkloadDir = "/nonexistent/workload-dir"
	defer func() { recommendWorkloadDir = "" }()

	cmd := NewRecommendCommand()
	err := runRecommend(cmd, []string{})

	if err == nil {
		t.Error("expected error for missing workload dir, got nil")
	}
}
