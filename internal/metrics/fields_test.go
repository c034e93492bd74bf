package metrics

import (
	"errors"
	"testing"
)

func TestMetricFieldKeysAreStable(t *testing.T) {
	if AttrMethod == "" || AttrPath == "" || AttrStatus == "" || AttrKind == "" || AttrPresenter == "" {
		t.Fatalf("expected metric attribute keys to be non-empty")
	}
}

func TestOutcomeLabel(t *testing.T) {
	if outcome(nil) != "ok" {
		t.Fatalf("expected ok outcome for nil error")
	}
	if outcome(errors.New("boom")) != "error" {
		t.Fatalf("expected error outcome")
	}
}
