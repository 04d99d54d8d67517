package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPoint       = "point"
	KeyCycleID     = "cycle_id"
	KeySourceID    = "source_id"
	KeySubject     = "subject"
	KeyDurationMS  = "duration_ms"
	KeyErrorCount  = "error_count"
	KeyPointCount  = "point_count"
	KeyFailedReads = "failed_reads"
	KeyBackend     = "backend"
	KeyPath        = "path"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Point(name string) slog.Attr     { return slog.String(KeyPoint, name) }
func CycleID(id string) slog.Attr     { return slog.String(KeyCycleID, id) }
func SourceID(id string) slog.Attr    { return slog.String(KeySourceID, id) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func ErrorCount(n uint64) slog.Attr   { return slog.Uint64(KeyErrorCount, n) }
func PointCount(n int) slog.Attr      { return slog.Int(KeyPointCount, n) }
func FailedReads(n int) slog.Attr     { return slog.Int(KeyFailedReads, n) }
func Backend(b string) slog.Attr      { return slog.String(KeyBackend, b) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
