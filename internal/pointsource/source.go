// Package pointsource resolves the set of monitored point names for a source id.
//
// Two backends exist: a YAML file (development, small sites) and a SQLite
// database (shared configuration store). Both return an ordered, normalized,
// de-duplicated name list.
package pointsource

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Source enumerates the point names to monitor for a given source id.
type Source interface {
	ListPointNames(ctx context.Context, sourceID string) ([]string, error)
}

// normalizeNames NFC-normalizes, trims, and de-duplicates names while
// preserving first-seen order. Registry membership must not split on Unicode
// representation of the same name.
func normalizeNames(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		name := norm.NFC.String(strings.TrimSpace(r))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
