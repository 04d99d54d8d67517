package events

import "time"

// ReconcileRequested asks the engine to refresh the monitored point set
// ahead of its slow timer, typically because the point file changed on disk.
type ReconcileRequested struct {
	Reason string
	At     time.Time
}
