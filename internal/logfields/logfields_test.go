package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Point", KeyPoint, "temp.zone1", Point("temp.zone1")},
		{"CycleID", KeyCycleID, "c1", CycleID("c1")},
		{"SourceID", KeySourceID, "line1", SourceID("line1")},
		{"Subject", KeySubject, "pointwatch.points.a", Subject("pointwatch.points.a")},
		{"Backend", KeyBackend, "sqlite", Backend("sqlite")},
		{"Path", KeyPath, "/tmp/points.yaml", Path("/tmp/points.yaml")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	a := Error(errors.New("boom"))
	if a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("unexpected error attr: %v", a)
	}
	if Error(nil).Value.String() != "" {
		t.Fatal("nil error should render empty value")
	}
}
