package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conduit-lang/indexadvisor/internal/advisor/extend"
)

func withTempWd(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	return tmpDir
}

func TestLoadDefaults(t *testing.T) {
	withTempWd(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg["max_index_width"] != 4 {
		t.Errorf("expected default max_index_width 4, got %v", cfg["max_index_width"])
	}
	if cfg["min_cost_improvement"] != 1.003 {
		t.Errorf("expected default min_cost_improvement 1.003, got %v", cfg["min_cost_improvement"])
	}
	if cfg["constraint"] != "storage" {
		t.Errorf("expected default constraint 'storage', got %v", cfg["constraint"])
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	withTempWd(t)

	configContent := `
budget_mb: 500
constraint: number
max_indexes: 5
`
	if err := os.WriteFile("indexadvisor.yml", []byte(configContent), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg["budget_mb"] != int64(500) {
		t.Errorf("expected budget_mb 500, got %v (%T)", cfg["budget_mb"], cfg["budget_mb"])
	}
	if cfg["constraint"] != "number" {
		t.Errorf("expected constraint 'number', got %v", cfg["constraint"])
	}
	if cfg["max_indexes"] != 5 {
		t.Errorf("expected max_indexes 5, got %v", cfg["max_indexes"])
	}

	// Keys left unset still fall back to DefaultParameters.
	if cfg["score_func"] != "benefit_per_sto" {
		t.Errorf("expected default score_func, got %v", cfg["score_func"])
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	withTempWd(t)

	if err := os.WriteFile("indexadvisor.yml", []byte("not_a_real_key: 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("expected ConfigUnknownKey error")
	}
	if !IsUnknownKey(err) {
		t.Errorf("expected IsUnknownKey(err) to be true, got err = %v", err)
	}
}

func TestLoadRejectsUnknownEnvKey(t *testing.T) {
	withTempWd(t)

	os.Setenv("ADVISOR_NOT_A_REAL_KEY", "1")
	defer os.Unsetenv("ADVISOR_NOT_A_REAL_KEY")

	_, err := Load()
	if err == nil {
		t.Fatal("expected ConfigUnknownKey error from environment override")
	}
	if !IsUnknownKey(err) {
		t.Errorf("expected IsUnknownKey(err) to be true, got err = %v", err)
	}
}

func TestKnownKeysSorted(t *testing.T) {
	keys := KnownKeys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("KnownKeys() not sorted: %v", keys)
		}
	}
	found := false
	for _, k := range keys {
		if k == "budget_mb" {
			found = true
		}
	}
	if !found {
		t.Error("expected KnownKeys() to include budget_mb")
	}
}

func TestInProject(t *testing.T) {
	withTempWd(t)

	if InProject() {
		t.Error("expected InProject to return false in non-project directory")
	}

	os.WriteFile("indexadvisor.yml", []byte(""), 0644)

	if !InProject() {
		t.Error("expected InProject to return true in project directory")
	}
}

func TestGetProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	os.WriteFile(filepath.Join(tmpDir, "indexadvisor.yml"), []byte(""), 0644)

	subDir := filepath.Join(tmpDir, "src", "deep", "nested")
	os.MkdirAll(subDir, 0755)
	os.Chdir(subDir)

	root, err := GetProjectRoot()
	if err != nil {
		t.Fatalf("expected to find project root, got error: %v", err)
	}

	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedTmpDir, _ := filepath.EvalSymlinks(tmpDir)

	if resolvedRoot != resolvedTmpDir {
		t.Errorf("expected project root to be %s, got %s", resolvedTmpDir, resolvedRoot)
	}
}

func TestGetProjectRootNotInProject(t *testing.T) {
	withTempWd(t)

	_, err := GetProjectRoot()
	if err == nil {
		t.Error("expected error when not in a project, got nil")
	}
}

func TestToExtendConfig(t *testing.T) {
	withTempWd(t)
	os.WriteFile("indexadvisor.yml", []byte("budget_mb: 200\nconstraint: number\nmax_indexes: 3\n"), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ec := cfg.ToExtendConfig()
	if ec.BudgetMB != 200 {
		t.Errorf("expected BudgetMB 200, got %d", ec.BudgetMB)
	}
	if ec.MaxIndexes != 3 {
		t.Errorf("expected MaxIndexes 3, got %d", ec.MaxIndexes)
	}
	if ec.Constraint != extend.ConstraintNumber {
		t.Errorf("expected ConstraintNumber, got %v", ec.Constraint)
	}
}

func TestToExtendConfigScoreFunc(t *testing.T) {
	withTempWd(t)
	os.WriteFile("indexadvisor.yml", []byte("score_func: cost_pure\n"), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ec := cfg.ToExtendConfig()
	if ec.ScoreFunc(1, 2, 100) != extend.CostPure(1, 2, 100) {
		t.Errorf("expected ScoreFunc to resolve to extend.CostPure")
	}
}

func TestConfigString(t *testing.T) {
	cfg := Config{"b": 2, "a": 1}
	out := cfg.String()
	if out != "a = 1\nb = 2\n" {
		t.Errorf("expected sorted key=value output, got %q", out)
	}
}
