package commands

import (
	"os"
	"testing"
)

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	if cmd.Use != "serve" {
		t.Errorf("expected Use to be 'serve', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.RunE == nil {
		t.Fatal("serve command RunE function is nil")
	}
}

func TestRunServe_RequiresAuthSecret(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	os.Unsetenv("ADVISOR_AUTH_SECRET")
	os.Setenv("ADVISOR_CONNECTOR", "sqlite")
	defer os.Unsetenv("ADVISOR_CONNECTOR")

	cmd := NewServeCommand()
	err := runServe(cmd, []string{})

	if err == nil {
		t.Error("expected error when auth_secret is not configured, got nil")
	}
}
