package commands

import (
	"context"
	"testing"

	"github.com/conduit-lang/indexadvisor/internal/cli/config"
)

func TestBuildConnectorSQLite(t *testing.T) {
	conn, err := buildConnector(context.Background(), config.Config{
		"connector": "sqlite",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close(context.Background())
}

func TestBuildConnectorSQLiteLearned(t *testing.T) {
	conn, err := buildConnector(context.Background(), config.Config{
		"connector":            "sqlite",
		"estimator_mode":       "learned",
		"estimator_multiplier": 1.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close(context.Background())
}

func TestBuildConnectorWhatifRequiresDSN(t *testing.T) {
	_, err := buildConnector(context.Background(), config.Config{
		"connector": "whatif",
	})
	if err == nil {
		t.Fatal("expected error when dsn is missing")
	}
}

func TestBuildConnectorUnknown(t *testing.T) {
	_, err := buildConnector(context.Background(), config.Config{
		"connector": "bogus",
	})
	if err == nil {
		t.Fatal("expected error for unknown connector")
	}
}
