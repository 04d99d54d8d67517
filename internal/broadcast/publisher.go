package broadcast

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pointwatch/internal/logfields"
)

// Publisher delivers change events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// RuntimeInfoSink receives driver runtime metadata.
type RuntimeInfoSink interface {
	UpdateDriverRuntimeInfo(ctx context.Context, info DriverRuntimeInfo) error
}

// LogPublisher logs change events instead of publishing them. Used when no
// broadcast transport is configured and in development.
type LogPublisher struct{}

// Publish implements Publisher.
func (LogPublisher) Publish(_ context.Context, event ChangeEvent) error {
	slog.Info("Point changed",
		logfields.Point(event.PointName),
		slog.Any("value", event.Value),
		logfields.CycleID(event.CycleID))
	return nil
}

// UpdateDriverRuntimeInfo implements RuntimeInfoSink.
func (LogPublisher) UpdateDriverRuntimeInfo(_ context.Context, info DriverRuntimeInfo) error {
	slog.Debug("Driver runtime info",
		slog.String("runtime_version", info.RuntimeVersion),
		slog.String("protocol_version", info.ProtocolVersion),
		slog.Bool("connected", info.Connected),
		slog.Bool("simulated", info.Simulated),
		logfields.DurationMS(info.CycleTimeMS))
	return nil
}
