package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pointwatch/internal/broadcast"
	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
)

// detector compares successful reads to stored state and hands change events
// to the broadcast publisher. Publish failures are logged and absorbed; they
// never touch point state or abort the cycle.
type detector struct {
	store     *StateStore
	publisher broadcast.Publisher
	metrics   *Collector
	now       func() time.Time
}

// process handles one successful read of a point.
func (d *detector) process(ctx context.Context, cycleID, name string, value driver.Value) {
	st, ok := d.store.Get(name)
	if !ok {
		// Removed by reconciliation while the read was in flight.
		return
	}

	// A point never read before is always considered changed.
	if st.HasValue && driver.Equal(st.LastValue, value) {
		d.store.ResetErrors(name)
		return
	}

	now := d.now()
	if !d.store.ApplyChange(name, value, now) {
		return
	}

	event := broadcast.ChangeEvent{
		ID:        uuid.NewString(),
		PointName: name,
		Value:     value,
		Timestamp: now,
		CycleID:   cycleID,
	}

	start := time.Now()
	if err := d.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Change event publish failed",
			logfields.Point(name),
			logfields.CycleID(cycleID),
			logfields.Error(err))
		return
	}
	if d.metrics != nil {
		d.metrics.RecordPublishDuration(time.Since(start))
	}

	slog.Debug("Change event published",
		logfields.Point(name),
		logfields.CycleID(cycleID))
}
