package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
)

// fanOut issues one concurrent read per monitored point and joins before the
// cycle completes. Each read is isolated: a failing point increments its own
// error counter and the cycle tally, nothing else.
type fanOut struct {
	driver        driver.Driver
	store         *StateStore
	detector      *detector
	concurrency   int // 0 = unbounded
	warnThreshold uint
}

// run executes one read batch and returns the number of failed reads.
func (f *fanOut) run(ctx context.Context, cycleID string, names []string) int {
	if len(names) == 0 {
		return 0
	}

	var sem chan struct{}
	if f.concurrency > 0 {
		sem = make(chan struct{}, f.concurrency)
	}

	var failed atomic.Int64
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer func() {
				// A panicking read must not take down the whole engine; it
				// counts as a failed read for this cycle.
				if r := recover(); r != nil {
					failed.Add(1)
					f.store.RecordFailure(name)
					slog.Error("Panic in point read",
						logfields.Point(name),
						slog.Any("panic", r))
				}
			}()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if ctx.Err() != nil {
				// Cancellation mid-batch: wind down without touching state.
				return
			}

			value, err := f.driver.ReadPoint(ctx, name)
			if err != nil {
				failed.Add(1)
				count := f.store.RecordFailure(name)
				if count == f.warnThreshold {
					slog.Warn("Point failing repeatedly",
						logfields.Point(name),
						logfields.ErrorCount(uint64(count)),
						logfields.Error(err))
				} else {
					slog.Debug("Point read failed",
						logfields.Point(name),
						logfields.ErrorCount(uint64(count)),
						logfields.Error(err))
				}
				return
			}

			f.detector.process(ctx, cycleID, name, value)
		}(name)
	}
	wg.Wait()

	return int(failed.Load())
}
