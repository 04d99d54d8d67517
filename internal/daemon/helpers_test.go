package daemon

import (
	"context"
	"testing"
)

// staticSource returns the same point names on every call.
type staticSource struct {
	names []string
}

func (s staticSource) ListPointNames(_ context.Context, _ string) ([]string, error) {
	return append([]string(nil), s.names...), nil
}

func testSource(t *testing.T) staticSource {
	t.Helper()
	return staticSource{names: []string{"temp.室内", "pressure.inlet"}}
}
