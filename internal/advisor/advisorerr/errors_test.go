package advisorerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredicatesMatchWrappedErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"config invalid", ConfigInvalid("budget_mb", nil), IsConfigInvalid},
		{"connector failure", ConnectorFailure("dial", errors.New("refused")), IsConnectorFailure},
		{"size unknown", SizeUnknown("orders(customer_id)"), IsSizeUnknown},
		{"internal", Internal("extend", errors.New("nil oracle")), IsInternal},
		{"evaluator sealed", fmt.Errorf("run 7: %w", ErrEvaluatorSealed), IsEvaluatorSealed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.predicate(tt.err) {
				t.Errorf("predicate did not match error %q", tt.err)
			}
		})
	}
}

func TestPredicatesRejectUnrelatedErrors(t *testing.T) {
	other := errors.New("some other failure")

	predicates := map[string]func(error) bool{
		"config invalid":   IsConfigInvalid,
		"evaluator sealed":  IsEvaluatorSealed,
		"connector failure": IsConnectorFailure,
		"size unknown":      IsSizeUnknown,
		"internal":          IsInternal,
	}

	for name, predicate := range predicates {
		t.Run(name, func(t *testing.T) {
			if predicate(other) {
				t.Errorf("%s predicate unexpectedly matched an unrelated error", name)
			}
		})
	}
}

func TestConfigInvalidWithoutUnderlyingError(t *testing.T) {
	err := ConfigInvalid("unknown key: foo", nil)
	if !IsConfigInvalid(err) {
		t.Error("expected IsConfigInvalid to match")
	}
	if got := err.Error(); got == "" {
		t.Error("expected non-empty error message")
	}
}
