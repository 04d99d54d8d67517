package poller

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/errors"
)

// degradedFailureDivisor encodes the disconnection heuristic: a cycle is
// degraded when strictly more than half of the monitored points fail to
// read. Kept fixed; a candidate tunable, not a configured one.
const degradedFailureDivisor = 2

// cycleDegraded classifies a cycle from its failure tally.
func cycleDegraded(failed, total int) bool {
	return total > 0 && failed*degradedFailureDivisor > total
}

// supervisor owns driver liveness for the engine. One reconnect attempt per
// cycle at most; the outer poll cadence is the retry rate limit.
type supervisor struct {
	driver driver.Driver
}

// ensureConnected checks liveness and attempts a single reconnect when the
// driver reports down. A returned error means the cycle must abort early.
func (s *supervisor) ensureConnected(ctx context.Context) error {
	if s.driver.IsLive(ctx) {
		return nil
	}

	slog.Warn("Driver not live, attempting reconnect")
	if err := s.driver.Connect(ctx); err != nil {
		return errors.WrapConnection(err, "driver reconnect failed")
	}
	if !s.driver.IsLive(ctx) {
		return errors.ConnectionError("driver still not live after reconnect")
	}

	slog.Info("Driver reconnected")
	return nil
}
